package arsip

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iancoleman/orderedmap"
	"gorm.io/gorm"

	"arsip-api/internal/apperr"
	"arsip-api/internal/archivetype"
	"arsip-api/internal/identifier"
	"arsip-api/internal/logs"
)

// RowService is the generic engine behind bulk entry, batch edit, import and
// export against the per-type dynamic tables, plus the fixed arsip metadata
// flow. Every dynamic identifier passes identifier.IsSafeIdentifier right
// before SQL text is built; values are always parameter-bound.
type RowService struct {
	DB     *gorm.DB
	Schema *archivetype.SchemaService
	Tables archivetype.TableManager
	Logs   *logs.LogService
}

// target loads the archive type, its field list, and verifies the physical
// table still exists. Row operations against a deleted type fail here.
func (s *RowService) target(jenisID int64) (*archivetype.JenisArsip, []archivetype.SchemaConfig, error) {
	jenis, err := s.Schema.Get(jenisID)
	if err != nil {
		return nil, nil, err
	}
	fields, err := s.Schema.GetSchema(jenisID)
	if err != nil {
		return nil, nil, err
	}
	if !identifier.IsSafeIdentifier(jenis.NamaTabel) {
		return nil, nil, apperr.Validationf("nama tabel %q tidak valid", jenis.NamaTabel)
	}
	if !s.Tables.HasTable(s.DB, jenis.NamaTabel) {
		return nil, nil, apperr.NotFoundf("tabel %s tidak ditemukan", jenis.NamaTabel)
	}
	return jenis, fields, nil
}

// editableColumns is the whitelist for update operations: the schema's own
// columns plus the two fixed text columns staff may correct by hand.
func editableColumns(fields []archivetype.SchemaConfig) map[string]string {
	cols := map[string]string{
		"prefix":      archivetype.TipeText,
		"nomor_arsip": archivetype.TipeText,
	}
	for _, f := range fields {
		cols[f.NamaKolom] = f.Tipe
	}
	return cols
}

func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// coerceValue converts a JSON-decoded value into what the column stores.
// Number columns take integers; empty input becomes the column's zero value.
func coerceValue(tipe string, v interface{}) (interface{}, error) {
	if tipe == archivetype.TipeNumber {
		if isEmptyValue(v) {
			return int64(0), nil
		}
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("nilai %v bukan bilangan bulat", n)
			}
			return int64(n), nil
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case string:
			parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("nilai %q bukan angka", n)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("nilai %v bukan angka", v)
		}
	}
	if isEmptyValue(v) {
		return "", nil
	}
	return fmt.Sprint(v), nil
}

type insertPlan struct {
	values     []interface{}
	nomorArsip string
}

// InsertBatch inserts bulk-entry rows into the type's dynamic table.
// Data failures (required field empty, malformed number) are per-row: bad
// rows are reported in the result and skipped, the rest commit together with
// one audit entry each. A storage failure rolls the whole batch back.
func (s *RowService) InsertBatch(jenisID int64, rows []map[string]interface{}, actorID int64) (*BatchResult, error) {
	return s.insertBatch(jenisID, rows, actorID, logs.AksiInputArsip)
}

func (s *RowService) insertBatch(jenisID int64, rows []map[string]interface{}, actorID int64, aksi string) (*BatchResult, error) {
	jenis, fields, err := s.target(jenisID)
	if err != nil {
		return nil, err
	}
	defaults, err := s.Schema.GetDefaults(jenisID)
	if err != nil {
		return nil, err
	}

	cols := []string{"prefix", "nomor_arsip", "created_at", "created_by"}
	for _, f := range fields {
		if !identifier.IsSafeIdentifier(f.NamaKolom) {
			return nil, apperr.Validationf("nama kolom %q tidak valid", f.NamaKolom)
		}
		cols = append(cols, f.NamaKolom)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", jenis.NamaTabel, strings.Join(cols, ", "), placeholders)

	result := &BatchResult{Attempted: len(rows)}
	now := time.Now()

	var plans []insertPlan
	for i, row := range rows {
		nomor := ""
		if v, ok := row["nomor_arsip"]; ok && !isEmptyValue(v) {
			nomor = fmt.Sprint(v)
		}
		values := []interface{}{jenis.Kode, nomor, now, actorID}

		var rowErr *RowError
		for _, f := range fields {
			raw, ok := row[f.NamaKolom]
			if !ok || isEmptyValue(raw) {
				if d, has := defaults[f.NamaKolom]; has && strings.TrimSpace(d) != "" {
					raw = d
				} else {
					raw = nil
				}
			}
			if f.Wajib && isEmptyValue(raw) {
				rowErr = &RowError{Index: i, Message: fmt.Sprintf("field %q wajib diisi", f.Label)}
				break
			}
			val, err := coerceValue(f.Tipe, raw)
			if err != nil {
				rowErr = &RowError{Index: i, Message: fmt.Sprintf("field %q: %v", f.Label, err)}
				break
			}
			values = append(values, val)
		}
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		plans = append(plans, insertPlan{values: values, nomorArsip: nomor})
	}

	if len(plans) == 0 {
		return result, nil
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, p := range plans {
			var newID int64
			if err := tx.Raw(insertSQL+" RETURNING id", p.values...).Scan(&newID).Error; err != nil {
				return apperr.Storage("insert row failed", err)
			}
			entry := logs.LogAktivitas{
				UserID:    actorID,
				Aksi:      aksi,
				Entitas:   jenis.NamaTabel,
				EntitasID: newID,
				Detail:    fmt.Sprintf("Tambah arsip %s", p.nomorArsip),
			}
			if err := s.Logs.Catat(tx, entry); err != nil {
				return apperr.Storage("write audit failed", err)
			}
			result.Succeeded++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// buildSet validates an update map against the whitelist and returns the SET
// clause columns in deterministic order plus the bound values.
func buildSet(values map[string]interface{}, whitelist map[string]string) ([]string, []interface{}, error) {
	if len(values) == 0 {
		return nil, nil, apperr.Validationf("tidak ada kolom untuk diubah")
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	assigns := make([]string, 0, len(keys))
	bound := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		if !identifier.IsSafeIdentifier(k) {
			return nil, nil, apperr.Validationf("nama kolom %q tidak valid", k)
		}
		tipe, ok := whitelist[k]
		if !ok {
			return nil, nil, apperr.Validationf("kolom %q tidak ada pada schema", k)
		}
		val, err := coerceValue(tipe, values[k])
		if err != nil {
			return nil, nil, apperr.Validationf("kolom %q: %v", k, err)
		}
		assigns = append(assigns, k+" = ?")
		bound = append(bound, val)
	}
	return assigns, bound, nil
}

func (s *RowService) updateOne(tx *gorm.DB, jenis *archivetype.JenisArsip, whitelist map[string]string, rowID int64, values map[string]interface{}, actorID int64) error {
	assigns, bound, err := buildSet(values, whitelist)
	if err != nil {
		return err
	}

	updateSQL := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", jenis.NamaTabel, strings.Join(assigns, ", "))
	res := tx.Exec(updateSQL, append(bound, rowID)...)
	if res.Error != nil {
		return apperr.Storage("update row failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("baris %d tidak ditemukan di %s", rowID, jenis.NamaTabel)
	}

	return s.Logs.Catat(tx, logs.LogAktivitas{
		UserID:    actorID,
		Aksi:      logs.AksiUpdateArsip,
		Entitas:   jenis.NamaTabel,
		EntitasID: rowID,
		Detail:    fmt.Sprintf("Ubah %d kolom", len(assigns)),
	})
}

// UpdateRow applies one column/value map to a single row.
func (s *RowService) UpdateRow(jenisID, rowID int64, values map[string]interface{}, actorID int64) error {
	jenis, fields, err := s.target(jenisID)
	if err != nil {
		return err
	}
	whitelist := editableColumns(fields)

	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.updateOne(tx, jenis, whitelist, rowID, values, actorID)
	})
}

// BatchUpdateRows applies spreadsheet-style edits in one all-or-nothing
// transaction with one audit entry per row. Rows without an id are skipped.
func (s *RowService) BatchUpdateRows(jenisID int64, rows []map[string]interface{}, actorID int64) (int, error) {
	jenis, fields, err := s.target(jenisID)
	if err != nil {
		return 0, err
	}
	whitelist := editableColumns(fields)

	updated := 0
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			idVal, ok := row["id"]
			if !ok || isEmptyValue(idVal) {
				continue
			}
			rowID, err := toInt64(idVal)
			if err != nil {
				return apperr.Validationf("id baris %v tidak valid", idVal)
			}

			values := make(map[string]interface{}, len(row)-1)
			for k, v := range row {
				if k == "id" {
					continue
				}
				values[k] = v
			}
			if err := s.updateOne(tx, jenis, whitelist, rowID, values, actorID); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// BatchDeleteRows deletes the listed ids in one all-or-nothing transaction
// with one audit entry per id. A missing id aborts and rolls back everything.
func (s *RowService) BatchDeleteRows(jenisID int64, ids []int64, actorID int64) (int, error) {
	jenis, _, err := s.target(jenisID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, apperr.Validationf("tidak ada baris untuk dihapus")
	}

	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE id = ?", jenis.NamaTabel)

	deleted := 0
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			res := tx.Exec(deleteSQL, id)
			if res.Error != nil {
				return apperr.Storage("delete row failed", res.Error)
			}
			if res.RowsAffected == 0 {
				return apperr.NotFoundf("baris %d tidak ditemukan di %s", id, jenis.NamaTabel)
			}
			entry := logs.LogAktivitas{
				UserID:    actorID,
				Aksi:      logs.AksiHapusArsip,
				Entitas:   jenis.NamaTabel,
				EntitasID: id,
				Detail:    "Hapus baris",
			}
			if err := s.Logs.Catat(tx, entry); err != nil {
				return apperr.Storage("write audit failed", err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// BatchSetColumn writes one value into one column across the listed rows, in
// one all-or-nothing transaction with one audit entry per row.
func (s *RowService) BatchSetColumn(jenisID int64, ids []int64, kolom string, nilai interface{}, actorID int64) (int, error) {
	jenis, fields, err := s.target(jenisID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, apperr.Validationf("tidak ada baris untuk diubah")
	}
	if !identifier.IsSafeIdentifier(kolom) {
		return 0, apperr.Validationf("nama kolom %q tidak valid", kolom)
	}
	tipe, ok := editableColumns(fields)[kolom]
	if !ok {
		return 0, apperr.Validationf("kolom %q tidak ada pada schema", kolom)
	}
	val, err := coerceValue(tipe, nilai)
	if err != nil {
		return 0, apperr.Validationf("kolom %q: %v", kolom, err)
	}

	updateSQL := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", jenis.NamaTabel, kolom)

	updated := 0
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			res := tx.Exec(updateSQL, val, id)
			if res.Error != nil {
				return apperr.Storage("set column failed", res.Error)
			}
			if res.RowsAffected == 0 {
				return apperr.NotFoundf("baris %d tidak ditemukan di %s", id, jenis.NamaTabel)
			}
			entry := logs.LogAktivitas{
				UserID:    actorID,
				Aksi:      logs.AksiUpdateArsip,
				Entitas:   jenis.NamaTabel,
				EntitasID: id,
				Detail:    fmt.Sprintf("Set kolom %s", kolom),
			}
			if err := s.Logs.Catat(tx, entry); err != nil {
				return apperr.Storage("write audit failed", err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (s *RowService) tableRowsRaw(jenisID int64, ids []int64) (*archivetype.JenisArsip, []archivetype.SchemaConfig, []map[string]interface{}, error) {
	jenis, fields, err := s.target(jenisID)
	if err != nil {
		return nil, nil, nil, err
	}

	q := s.DB.Table(jenis.NamaTabel).Order("id ASC")
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	var rows []map[string]interface{}
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, nil, apperr.Storage("select rows failed", err)
	}
	return jenis, fields, rows, nil
}

// TableRows returns the full dynamic table ordered by id, each row as an
// ordered map: fixed columns first, then schema columns in display order.
func (s *RowService) TableRows(jenisID int64) ([]*orderedmap.OrderedMap, error) {
	_, fields, rows, err := s.tableRowsRaw(jenisID, nil)
	if err != nil {
		return nil, err
	}

	cols := append([]string{}, archivetype.FixedColumns...)
	for _, f := range fields {
		cols = append(cols, f.NamaKolom)
	}

	out := make([]*orderedmap.OrderedMap, 0, len(rows))
	for _, row := range rows {
		ordered := orderedmap.New()
		for _, col := range cols {
			if val, exists := row[col]; exists {
				ordered.Set(col, val)
			} else {
				ordered.Set(col, "")
			}
		}
		out = append(out, ordered)
	}
	return out, nil
}

// ListArsip pages through the fixed arsip metadata table joined to its type.
func (s *RowService) ListArsip(input ListArsipInput) ([]ArsipRow, int64, int, error) {
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.PageSize <= 0 || input.PageSize > 100 {
		input.PageSize = 20
	}

	base := s.DB.
		Table("arsip").
		Select("arsip.*, j.nama as nama_jenis").
		Joins("LEFT JOIN jenis_arsip j ON arsip.jenis_id = j.id")

	if search := strings.TrimSpace(input.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		base = base.Where("lower(arsip.judul) LIKE ? OR lower(arsip.nomor_arsip) LIKE ?", like, like)
	}
	if input.Tahun > 0 {
		base = base.Where("arsip.tahun = ?", input.Tahun)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, 0, apperr.Storage("count arsip failed", err)
	}
	totalPages := int(math.Ceil(float64(total) / float64(input.PageSize)))
	if totalPages == 0 {
		totalPages = 1
	}

	var rows []ArsipRow
	if err := base.
		Session(&gorm.Session{}).
		Order("arsip.created_at DESC").
		Limit(input.PageSize).
		Offset((input.Page - 1) * input.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, 0, 0, apperr.Storage("list arsip failed", err)
	}

	return rows, total, totalPages, nil
}

func (s *RowService) CreateArsip(input ArsipInput, actorID int64) (*Arsip, error) {
	if _, err := s.Schema.Get(input.JenisID); err != nil {
		return nil, err
	}

	record := Arsip{
		JenisID:    input.JenisID,
		NomorArsip: input.NomorArsip,
		Judul:      input.Judul,
		Tahun:      input.Tahun,
		Data:       input.Data,
		CreatedBy:  actorID,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return apperr.Storage("insert arsip failed", err)
		}
		return s.Logs.Catat(tx, logs.LogAktivitas{
			UserID:    actorID,
			Aksi:      logs.AksiInputArsip,
			Entitas:   "arsip",
			EntitasID: record.ID,
			Detail:    fmt.Sprintf("Input arsip %s", record.NomorArsip),
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RowService) UpdateArsip(id int64, input ArsipInput, actorID int64) (*Arsip, error) {
	var record Arsip
	if err := s.DB.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("arsip %d tidak ditemukan", id)
		}
		return nil, apperr.Storage("load arsip failed", err)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&record).Updates(map[string]interface{}{
			"nomor_arsip": input.NomorArsip,
			"judul":       input.Judul,
			"tahun":       input.Tahun,
			"data":        input.Data,
		}).Error; err != nil {
			return apperr.Storage("update arsip failed", err)
		}
		return s.Logs.Catat(tx, logs.LogAktivitas{
			UserID:    actorID,
			Aksi:      logs.AksiUpdateArsip,
			Entitas:   "arsip",
			EntitasID: id,
			Detail:    fmt.Sprintf("Ubah arsip %s", input.NomorArsip),
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RowService) DeleteArsip(id int64, actorID int64) error {
	var record Arsip
	if err := s.DB.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("arsip %d tidak ditemukan", id)
		}
		return apperr.Storage("load arsip failed", err)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&record).Error; err != nil {
			return apperr.Storage("delete arsip failed", err)
		}
		return s.Logs.Catat(tx, logs.LogAktivitas{
			UserID:    actorID,
			Aksi:      logs.AksiHapusArsip,
			Entitas:   "arsip",
			EntitasID: id,
			Detail:    fmt.Sprintf("Hapus arsip %s", record.NomorArsip),
		})
	})
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("bukan angka: %v", v)
	}
}
