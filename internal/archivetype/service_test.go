package archivetype

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"arsip-api/internal/apperr"
	"arsip-api/internal/logs"
)

var testDBSeq uint64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:arsip_schema_test_%d?mode=memory&cache=shared", id)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&JenisArsip{}, &SchemaConfig{}, &DefaultValue{}, &logs.LogAktivitas{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func breakDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	_ = sqlDB.Close()
}

func newService(db *gorm.DB) *SchemaService {
	return &SchemaService{DB: db, Logs: &logs.LogService{DB: db}}
}

func bantuanInput() JenisInput {
	return JenisInput{
		Nama: "Bantuan 2026",
		Kode: "BNT",
		Fields: []FieldInput{
			{Label: "NIK", Tipe: TipeNumber, Wajib: true},
			{Label: "Nama Penerima", Tipe: TipeText, Wajib: true, TampilDiList: true},
			{Label: "Tanggal Terima", Tipe: TipeDate},
		},
	}
}

func countLogs(t *testing.T, db *gorm.DB, aksi string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&logs.LogAktivitas{}).Where("aksi = ?", aksi).Count(&n).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	return n
}

func TestSchemaService_Create_ProvisionsTableAndSchema(t *testing.T) {
	db := newTestDB(t)
	s := newService(db)

	jenis, err := s.Create(bantuanInput(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if jenis.NamaTabel != "arsip_bantuan_2026" {
		t.Fatalf("nama tabel = %q, want arsip_bantuan_2026", jenis.NamaTabel)
	}
	if !jenis.Aktif {
		t.Fatalf("jenis should be active")
	}

	if !db.Migrator().HasTable("arsip_bantuan_2026") {
		t.Fatalf("physical table was not created")
	}

	fields, err := s.GetSchema(jenis.ID)
	if err != nil {
		t.Fatalf("GetSchema: %v", err)
	}
	wantCols := []string{"nik", "nama_penerima", "tanggal_terima"}
	if len(fields) != len(wantCols) {
		t.Fatalf("got %d fields, want %d", len(fields), len(wantCols))
	}
	for i, f := range fields {
		if f.NamaKolom != wantCols[i] {
			t.Errorf("field[%d] = %q, want %q", i, f.NamaKolom, wantCols[i])
		}
		if f.Urutan != i+1 {
			t.Errorf("field[%d] urutan = %d, want %d", i, f.Urutan, i+1)
		}
	}

	// the physical table has the fixed columns plus the schema columns
	cols, err := s.Tables.Columns(db, jenis.NamaTabel)
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	have := map[string]bool{}
	for _, c := range cols {
		have[strings.ToLower(c)] = true
	}
	for _, c := range append([]string{"id", "prefix", "nomor_arsip", "created_at", "created_by"}, wantCols...) {
		if !have[c] {
			t.Errorf("column %q missing from physical table", c)
		}
	}

	if n := countLogs(t, db, logs.AksiBuatJenis); n != 1 {
		t.Fatalf("audit entries = %d, want 1", n)
	}
}

func TestSchemaService_Create_Validation(t *testing.T) {
	db := newTestDB(t)
	s := newService(db)

	cases := []struct {
		name  string
		input JenisInput
	}{
		{"empty nama", JenisInput{Nama: "", Kode: "X", Fields: bantuanInput().Fields}},
		{"no fields", JenisInput{Nama: "Surat", Kode: "SRT"}},
		{"unknown tipe", JenisInput{Nama: "Surat", Kode: "SRT", Fields: []FieldInput{{Label: "A", Tipe: "blob"}}}},
		{"symbol-only label", JenisInput{Nama: "Surat", Kode: "SRT", Fields: []FieldInput{{Label: "!!!", Tipe: TipeText}}}},
		{"colliding labels", JenisInput{Nama: "Surat", Kode: "SRT", Fields: []FieldInput{
			{Label: "Nomor Surat", Tipe: TipeText},
			{Label: "nomor  surat", Tipe: TipeText},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Create(tc.input, 1); !apperr.IsKind(err, apperr.KindValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}

	// nothing may have been persisted by the failed attempts
	var n int64
	db.Model(&JenisArsip{}).Count(&n)
	if n != 0 {
		t.Fatalf("jenis rows = %d, want 0", n)
	}
}

func TestSchemaService_Create_DuplicateConflict(t *testing.T) {
	db := newTestDB(t)
	s := newService(db)

	if _, err := s.Create(bantuanInput(), 1); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := s.Create(bantuanInput(), 1)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestSchemaService_Create_ExistingTableLeavesNoPartialState(t *testing.T) {
	db := newTestDB(t)
	s := newService(db)

	// a stray table with the derived name already exists
	if err := db.Exec("CREATE TABLE arsip_bantuan_2026 (id INTEGER PRIMARY KEY)").Error; err != nil {
		t.Fatalf("create stray table: %v", err)
	}

	_, err := s.Create(bantuanInput(), 1)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	var jenisCount, fieldCount int64
	db.Model(&JenisArsip{}).Count(&jenisCount)
	db.Model(&SchemaConfig{}).Count(&fieldCount)
	if jenisCount != 0 || fieldCount != 0 {
		t.Fatalf("partial state: %d jenis, %d fields, want 0/0", jenisCount, fieldCount)
	}
	if n := countLogs(t, db, logs.AksiBuatJenis); n != 0 {
		t.Fatalf("audit entries = %d, want 0", n)
	}
}

func TestSchemaService_Update_ReplacesFieldsKeepsTableName(t *testing.T) {
	db := newTestDB(t)
	s := newService(db)

	jenis, err := s.Create(bantuanInput(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := s.Update(jenis.ID, JenisInput{
		Nama:      "Bantuan Sosial 2026",
		Kode:      "BSO",
		Deskripsi: "direvisi",
		Fields: []FieldInput{
			{Label: "NIK", Tipe: TipeNumber, Wajib: true},
			{Label: "Alamat", Tipe: TipeText},
		},
	}, 1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Nama != "Bantuan Sosial 2026" || updated.Kode != "BSO" {
		t.Fatalf("metadata not updated: %+v", updated)
	}
	if updated.NamaTabel != "arsip_bantuan_2026" {
		t.Fatalf("nama_tabel changed to %q, must stay arsip_bantuan_2026", updated.NamaTabel)
	}

	fields, err := s.GetSchema(jenis.ID)
	if err != nil {
		t.Fatalf("GetSchema: %v", err)
	}
	if len(fields) != 2 || fields[0].NamaKolom != "nik" || fields[1].NamaKolom != "alamat" {
		t.Fatalf("fields not replaced: %+v", fields)
	}
}

func TestSchemaService_Update_NotFoundAndDuplicate(t *testing.T) {
	db := newTestDB(t)
	s := newService(db)

	if _, err := s.Update(99, bantuanInput(), 1); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	a, err := s.Create(bantuanInput(), 1)
	if err != nil {
		t.Fatalf("Create a: %v", err)
	}
	other := bantuanInput()
	other.Nama = "Surat Masuk"
	other.Kode = "SM"
	if _, err := s.Create(other, 1); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	clash := bantuanInput()
	clash.Nama = "Surat Masuk"
	if _, err := s.Update(a.ID, clash, 1); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestSchemaService_SyncColumns(t *testing.T) {
	db := newTestDB(t)
	s := newService(db)

	jenis, err := s.Create(bantuanInput(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// nothing missing right after create
	added, err := s.SyncColumns(jenis.ID, 1)
	if err != nil {
		t.Fatalf("SyncColumns: %v", err)
	}
	if len(added) != 0 {
		t.Fatalf("added = %v, want none", added)
	}

	// a new field definition has no physical column until sync
	input := bantuanInput()
	input.Fields = append(input.Fields, FieldInput{Label: "Keterangan", Tipe: TipeText})
	if _, err := s.Update(jenis.ID, input, 1); err != nil {
		t.Fatalf("Update: %v", err)
	}

	added, err = s.SyncColumns(jenis.ID, 1)
	if err != nil {
		t.Fatalf("SyncColumns after update: %v", err)
	}
	if len(added) != 1 || added[0] != "keterangan" {
		t.Fatalf("added = %v, want [keterangan]", added)
	}

	cols, err := s.Tables.Columns(db, jenis.NamaTabel)
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	found := false
	for _, c := range cols {
		if strings.EqualFold(c, "keterangan") {
			found = true
		}
	}
	if !found {
		t.Fatalf("column keterangan missing after sync, cols = %v", cols)
	}
	if n := countLogs(t, db, logs.AksiSyncKolom); n != 1 {
		t.Fatalf("audit entries = %d, want 1", n)
	}
}

func TestSchemaService_Delete_DropsEverything(t *testing.T) {
	db := newTestDB(t)
	s := newService(db)

	jenis, err := s.Create(bantuanInput(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.SetDefaults(jenis.ID, map[string]string{"nik": "0"}, 1); err != nil {
		t.Fatalf("SetDefaults: %v", err)
	}

	if err := s.Delete(jenis.ID, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if db.Migrator().HasTable("arsip_bantuan_2026") {
		t.Fatalf("physical table still exists after delete")
	}
	var jenisCount, fieldCount, defaultCount int64
	db.Model(&JenisArsip{}).Count(&jenisCount)
	db.Model(&SchemaConfig{}).Count(&fieldCount)
	db.Model(&DefaultValue{}).Count(&defaultCount)
	if jenisCount != 0 || fieldCount != 0 || defaultCount != 0 {
		t.Fatalf("leftover rows: %d jenis, %d fields, %d defaults", jenisCount, fieldCount, defaultCount)
	}
	if n := countLogs(t, db, logs.AksiHapusJenis); n != 1 {
		t.Fatalf("audit entries = %d, want 1", n)
	}

	if err := s.Delete(jenis.ID, 1); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("second delete err = %v, want not found", err)
	}
}

func TestSchemaService_Defaults(t *testing.T) {
	db := newTestDB(t)
	s := newService(db)

	jenis, err := s.Create(bantuanInput(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.SetDefaults(jenis.ID, map[string]string{"tidak_ada": "x"}, 1); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("unknown column err = %v, want validation", err)
	}
	if err := s.SetDefaults(jenis.ID, map[string]string{"nik; DROP TABLE users": "x"}, 1); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("hostile column err = %v, want validation", err)
	}

	if err := s.SetDefaults(jenis.ID, map[string]string{"nik": "0", "tanggal_terima": "2026-01-01"}, 1); err != nil {
		t.Fatalf("SetDefaults: %v", err)
	}
	got, err := s.GetDefaults(jenis.ID)
	if err != nil {
		t.Fatalf("GetDefaults: %v", err)
	}
	if got["nik"] != "0" || got["tanggal_terima"] != "2026-01-01" {
		t.Fatalf("defaults = %v", got)
	}

	// replace wholesale
	if err := s.SetDefaults(jenis.ID, map[string]string{"nik": "1"}, 1); err != nil {
		t.Fatalf("SetDefaults replace: %v", err)
	}
	got, _ = s.GetDefaults(jenis.ID)
	if len(got) != 1 || got["nik"] != "1" {
		t.Fatalf("defaults after replace = %v", got)
	}

	// default-value edits get their own action, not the schema-edit one
	if n := countLogs(t, db, logs.AksiUbahDefault); n != 2 {
		t.Fatalf("AksiUbahDefault log count = %d, want 2", n)
	}
	if n := countLogs(t, db, logs.AksiUbahJenis); n != 0 {
		t.Fatalf("AksiUbahJenis log count = %d, want 0", n)
	}
}

func TestSchemaService_List(t *testing.T) {
	db := newTestDB(t)
	s := newService(db)

	a, err := s.Create(bantuanInput(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := db.Exec("INSERT INTO arsip_bantuan_2026 (prefix, nomor_arsip, created_at, created_by, nik, nama_penerima, tanggal_terima) VALUES ('BNT', '001', CURRENT_TIMESTAMP, 1, 1, 'Budi', '')").Error; err != nil {
		t.Fatalf("seed row: %v", err)
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d types, want 1", len(list))
	}
	if list[0].ID != a.ID || list[0].JumlahField != 3 || list[0].JumlahArsip != 1 {
		t.Fatalf("list row = %+v", list[0])
	}
}

func TestSchemaService_StorageErrors(t *testing.T) {
	db := newTestDB(t)
	s := newService(db)
	breakDB(t, db)

	if _, err := s.Create(bantuanInput(), 1); !apperr.IsKind(err, apperr.KindStorage) {
		t.Fatalf("Create err = %v, want storage", err)
	}
	if _, err := s.List(); !apperr.IsKind(err, apperr.KindStorage) {
		t.Fatalf("List err = %v, want storage", err)
	}
	if _, err := s.Get(1); !apperr.IsKind(err, apperr.KindStorage) {
		t.Fatalf("Get err = %v, want storage", err)
	}
}
