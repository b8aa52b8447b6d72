package archivetype

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"arsip-api/internal/apperr"
	"arsip-api/internal/identifier"
	"arsip-api/internal/logs"
)

type SchemaService struct {
	DB     *gorm.DB
	Tables TableManager
	Logs   *logs.LogService
}

// buildFields derives column names from labels and validates the whole field
// list before anything touches storage.
func buildFields(jenisID int64, inputs []FieldInput) ([]SchemaConfig, error) {
	if len(inputs) == 0 {
		return nil, apperr.Validationf("schema harus memiliki minimal satu field")
	}

	seen := map[string]string{}
	fields := make([]SchemaConfig, 0, len(inputs))
	for i, in := range inputs {
		col := identifier.DeriveColumnName(in.Label)
		if col == "" {
			return nil, apperr.Validationf("label field %q tidak menghasilkan nama kolom yang valid", in.Label)
		}
		if !identifier.IsSafeIdentifier(col) {
			return nil, apperr.Validationf("nama kolom %q tidak valid", col)
		}
		if prev, dup := seen[col]; dup {
			return nil, apperr.Validationf("label %q dan %q menghasilkan kolom yang sama (%s)", prev, in.Label, col)
		}
		seen[col] = in.Label

		switch in.Tipe {
		case TipeText, TipeNumber, TipeDate:
		default:
			return nil, apperr.Validationf("tipe field %q tidak dikenal", in.Tipe)
		}

		fields = append(fields, SchemaConfig{
			JenisID:      jenisID,
			Label:        strings.TrimSpace(in.Label),
			NamaKolom:    col,
			Tipe:         in.Tipe,
			Wajib:        in.Wajib,
			Urutan:       i + 1,
			TampilDiList: in.TampilDiList,
		})
	}
	return fields, nil
}

// Create registers a new archive type and provisions its physical table in
// one transaction: all three steps succeed or none do. A concurrent creator
// racing past the existence pre-check loses at CREATE TABLE and surfaces as a
// conflict, with its registry rows rolled back.
func (s *SchemaService) Create(input JenisInput, actorID int64) (*JenisArsip, error) {
	nama := strings.TrimSpace(input.Nama)
	kode := strings.TrimSpace(input.Kode)
	if nama == "" || kode == "" {
		return nil, apperr.Validationf("nama dan kode wajib diisi")
	}

	if identifier.Normalize(nama) == "" {
		return nil, apperr.Validationf("nama %q tidak menghasilkan nama tabel yang valid", nama)
	}
	tableName := identifier.DeriveTableName(nama)

	fields, err := buildFields(0, input.Fields)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.Model(&JenisArsip{}).
		Where("nama = ? OR kode = ?", nama, kode).
		Count(&count).Error; err != nil {
		return nil, apperr.Storage("check duplicate failed", err)
	}
	if count > 0 {
		return nil, apperr.Conflictf("jenis arsip dengan nama atau kode tersebut sudah ada")
	}

	if s.Tables.HasTable(s.DB, tableName) {
		return nil, apperr.Conflictf("tabel %s sudah ada", tableName)
	}

	jenis := JenisArsip{
		Nama:      nama,
		Kode:      kode,
		Deskripsi: input.Deskripsi,
		NamaTabel: tableName,
		Aktif:     true,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&jenis).Error; err != nil {
			if isAlreadyExists(err) {
				return apperr.Conflictf("jenis arsip dengan nama atau kode tersebut sudah ada")
			}
			return apperr.Storage("insert jenis failed", err)
		}

		for i := range fields {
			fields[i].JenisID = jenis.ID
		}
		if err := tx.Create(&fields).Error; err != nil {
			return apperr.Storage("insert schema failed", err)
		}

		if err := s.Tables.Provision(tx, tableName, fields); err != nil {
			return err
		}

		return s.Logs.Catat(tx, logs.LogAktivitas{
			UserID:    actorID,
			Aksi:      logs.AksiBuatJenis,
			Entitas:   tableName,
			EntitasID: jenis.ID,
			Detail:    fmt.Sprintf("Buat jenis arsip %q (%d field)", nama, len(fields)),
		})
	})
	if err != nil {
		return nil, err
	}
	return &jenis, nil
}

// Update rewrites the archive type's metadata and replaces its field list
// wholesale. The physical table is deliberately untouched; SyncColumns is the
// explicit structural follow-up.
func (s *SchemaService) Update(id int64, input JenisInput, actorID int64) (*JenisArsip, error) {
	jenis, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	nama := strings.TrimSpace(input.Nama)
	kode := strings.TrimSpace(input.Kode)
	if nama == "" || kode == "" {
		return nil, apperr.Validationf("nama dan kode wajib diisi")
	}

	fields, err := buildFields(id, input.Fields)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.Model(&JenisArsip{}).
		Where("(nama = ? OR kode = ?) AND id <> ?", nama, kode, id).
		Count(&count).Error; err != nil {
		return nil, apperr.Storage("check duplicate failed", err)
	}
	if count > 0 {
		return nil, apperr.Conflictf("jenis arsip dengan nama atau kode tersebut sudah ada")
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// nama_tabel stays what it was at creation time even if nama changes
		if err := tx.Model(&JenisArsip{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"nama":      nama,
				"kode":      kode,
				"deskripsi": input.Deskripsi,
			}).Error; err != nil {
			return apperr.Storage("update jenis failed", err)
		}

		if err := tx.Where("jenis_id = ?", id).Delete(&SchemaConfig{}).Error; err != nil {
			return apperr.Storage("delete schema failed", err)
		}
		if err := tx.Create(&fields).Error; err != nil {
			return apperr.Storage("insert schema failed", err)
		}

		return s.Logs.Catat(tx, logs.LogAktivitas{
			UserID:    actorID,
			Aksi:      logs.AksiUbahJenis,
			Entitas:   jenis.NamaTabel,
			EntitasID: id,
			Detail:    fmt.Sprintf("Ubah jenis arsip %q (%d field)", nama, len(fields)),
		})
	})
	if err != nil {
		return nil, err
	}

	jenis.Nama = nama
	jenis.Kode = kode
	jenis.Deskripsi = input.Deskripsi
	return jenis, nil
}

// SyncColumns adds a physical column for every field definition that has
// none yet, in one transaction. Orphan columns from removed fields stay.
func (s *SchemaService) SyncColumns(id int64, actorID int64) ([]string, error) {
	jenis, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	fields, err := s.GetSchema(id)
	if err != nil {
		return nil, err
	}

	existing, err := s.Tables.Columns(s.DB, jenis.NamaTabel)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[strings.ToLower(c)] = true
	}

	var missing []SchemaConfig
	for _, f := range fields {
		if !have[strings.ToLower(f.NamaKolom)] {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	added := make([]string, 0, len(missing))
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, f := range missing {
			if err := s.Tables.AddColumn(tx, jenis.NamaTabel, f); err != nil {
				return err
			}
			added = append(added, f.NamaKolom)
		}
		return s.Logs.Catat(tx, logs.LogAktivitas{
			UserID:    actorID,
			Aksi:      logs.AksiSyncKolom,
			Entitas:   jenis.NamaTabel,
			EntitasID: id,
			Detail:    fmt.Sprintf("Tambah kolom: %s", strings.Join(added, ", ")),
		})
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// Delete drops the physical table, the field definitions, the default values
// and the registry row in one transaction. There is no soft delete.
func (s *SchemaService) Delete(id int64, actorID int64) error {
	jenis, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Tables.Drop(tx, jenis.NamaTabel); err != nil {
			return err
		}
		if err := tx.Where("jenis_id = ?", id).Delete(&SchemaConfig{}).Error; err != nil {
			return apperr.Storage("delete schema failed", err)
		}
		if err := tx.Where("jenis_id = ?", id).Delete(&DefaultValue{}).Error; err != nil {
			return apperr.Storage("delete defaults failed", err)
		}
		if err := tx.Delete(&JenisArsip{}, id).Error; err != nil {
			return apperr.Storage("delete jenis failed", err)
		}

		return s.Logs.Catat(tx, logs.LogAktivitas{
			UserID:    actorID,
			Aksi:      logs.AksiHapusJenis,
			Entitas:   jenis.NamaTabel,
			EntitasID: id,
			Detail:    fmt.Sprintf("Hapus jenis arsip %q beserta tabelnya", jenis.Nama),
		})
	})
}

func (s *SchemaService) Get(id int64) (*JenisArsip, error) {
	var jenis JenisArsip
	if err := s.DB.First(&jenis, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("jenis arsip %d tidak ditemukan", id)
		}
		return nil, apperr.Storage("load jenis failed", err)
	}
	return &jenis, nil
}

// GetSchema returns the field definitions in display order.
func (s *SchemaService) GetSchema(id int64) ([]SchemaConfig, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	var fields []SchemaConfig
	if err := s.DB.Where("jenis_id = ?", id).Order("urutan ASC").Find(&fields).Error; err != nil {
		return nil, apperr.Storage("load schema failed", err)
	}
	return fields, nil
}

func (s *SchemaService) List() ([]JenisWithFieldCount, error) {
	var types []JenisArsip
	if err := s.DB.Order("nama ASC").Find(&types).Error; err != nil {
		return nil, apperr.Storage("load jenis failed", err)
	}

	out := make([]JenisWithFieldCount, 0, len(types))
	for _, j := range types {
		row := JenisWithFieldCount{JenisArsip: j}
		if err := s.DB.Model(&SchemaConfig{}).Where("jenis_id = ?", j.ID).Count(&row.JumlahField).Error; err != nil {
			return nil, apperr.Storage("count fields failed", err)
		}
		if s.Tables.HasTable(s.DB, j.NamaTabel) {
			if err := s.DB.Table(j.NamaTabel).Count(&row.JumlahArsip).Error; err != nil {
				return nil, apperr.Storage("count rows failed", err)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// SetDefaults replaces the import fallback values for one archive type. Keys
// must be columns of the current schema.
func (s *SchemaService) SetDefaults(id int64, values map[string]string, actorID int64) error {
	jenis, err := s.Get(id)
	if err != nil {
		return err
	}
	fields, err := s.GetSchema(id)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.NamaKolom] = true
	}
	for col := range values {
		if !identifier.IsSafeIdentifier(col) {
			return apperr.Validationf("nama kolom %q tidak valid", col)
		}
		if !known[col] {
			return apperr.Validationf("kolom %q tidak ada pada schema", col)
		}
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("jenis_id = ?", id).Delete(&DefaultValue{}).Error; err != nil {
			return apperr.Storage("delete defaults failed", err)
		}
		for _, f := range fields {
			v, ok := values[f.NamaKolom]
			if !ok {
				continue
			}
			if err := tx.Create(&DefaultValue{JenisID: id, NamaKolom: f.NamaKolom, Nilai: v}).Error; err != nil {
				return apperr.Storage("insert default failed", err)
			}
		}
		return s.Logs.Catat(tx, logs.LogAktivitas{
			UserID:    actorID,
			Aksi:      logs.AksiUbahDefault,
			Entitas:   jenis.NamaTabel,
			EntitasID: id,
			Detail:    fmt.Sprintf("Ubah default values (%d kolom)", len(values)),
		})
	})
}

// GetDefaults returns the fallback mapping applied during import.
func (s *SchemaService) GetDefaults(id int64) (map[string]string, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	var rows []DefaultValue
	if err := s.DB.Where("jenis_id = ?", id).Find(&rows).Error; err != nil {
		return nil, apperr.Storage("load defaults failed", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.NamaKolom] = r.Nilai
	}
	return out, nil
}
