package dashboard

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"arsip-api/internal/apperr"
	"arsip-api/internal/archivetype"
	"arsip-api/internal/arsip"
	"arsip-api/internal/auth"
	"arsip-api/internal/logs"
)

var testDBSeq uint64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:arsip_dashboard_test_%d?mode=memory&cache=shared", id)

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

	if err := db.AutoMigrate(
		&auth.User{},
		&archivetype.JenisArsip{},
		&archivetype.SchemaConfig{},
		&archivetype.DefaultValue{},
		&arsip.Arsip{},
		&logs.LogAktivitas{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestDashboardService_GetSummary(t *testing.T) {
	db := newTestDB(t)

	logService := &logs.LogService{DB: db}
	schemaService := &archivetype.SchemaService{DB: db, Logs: logService}
	rowService := &arsip.RowService{DB: db, Schema: schemaService, Logs: logService}
	s := &DashboardService{DB: db}

	if err := db.Create(&auth.User{Nama: "Admin", Username: "admin", Password: "x", Role: auth.RoleAdmin}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	jenis, err := schemaService.Create(archivetype.JenisInput{
		Nama: "Bantuan 2026",
		Kode: "BNT",
		Fields: []archivetype.FieldInput{
			{Label: "NIK", Tipe: archivetype.TipeNumber, Wajib: true},
		},
	}, 1)
	if err != nil {
		t.Fatalf("create jenis: %v", err)
	}
	if _, err := rowService.InsertBatch(jenis.ID, []map[string]interface{}{
		{"nomor_arsip": "001", "nik": "1"},
		{"nomor_arsip": "002", "nik": "2"},
	}, 1); err != nil {
		t.Fatalf("seed rows: %v", err)
	}
	for _, tahun := range []int{2025, 2026, 2026} {
		if _, err := rowService.CreateArsip(arsip.ArsipInput{
			JenisID:    jenis.ID,
			NomorArsip: fmt.Sprintf("BNT-%d", tahun),
			Judul:      "Laporan",
			Tahun:      tahun,
		}, 1); err != nil {
			t.Fatalf("seed arsip: %v", err)
		}
	}

	sum, err := s.GetSummary()
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if sum.TotalJenis != 1 || sum.TotalUser != 1 || sum.TotalArsip != 3 || sum.TotalBarisDinamis != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(sum.PerJenis) != 1 || sum.PerJenis[0].JumlahBaris != 2 || sum.PerJenis[0].NamaTabel != "arsip_bantuan_2026" {
		t.Fatalf("per jenis = %+v", sum.PerJenis)
	}
	if len(sum.PerTahun) != 2 || sum.PerTahun[0].Tahun != 2026 || sum.PerTahun[0].Jumlah != 2 {
		t.Fatalf("per tahun = %+v", sum.PerTahun)
	}
	if len(sum.AktivitasTerbaru) == 0 {
		t.Fatalf("no recent activity")
	}
	if sum.AktivitasTerbaru[0].Nama != "Admin" {
		t.Fatalf("activity user name = %q", sum.AktivitasTerbaru[0].Nama)
	}
}

func TestDashboardService_GetSummary_MissingTableCountsZero(t *testing.T) {
	db := newTestDB(t)
	s := &DashboardService{DB: db}

	// a registry row whose physical table is gone
	if err := db.Create(&archivetype.JenisArsip{Nama: "Hilang", Kode: "HLG", NamaTabel: "arsip_hilang", Aktif: true}).Error; err != nil {
		t.Fatalf("seed jenis: %v", err)
	}

	sum, err := s.GetSummary()
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if len(sum.PerJenis) != 1 || sum.PerJenis[0].JumlahBaris != 0 {
		t.Fatalf("per jenis = %+v", sum.PerJenis)
	}
	if sum.TotalBarisDinamis != 0 {
		t.Fatalf("total dynamic rows = %d, want 0", sum.TotalBarisDinamis)
	}
}

func TestDashboardService_GetSummary_StorageError(t *testing.T) {
	db := newTestDB(t)
	s := &DashboardService{DB: db}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	_ = sqlDB.Close()

	if _, err := s.GetSummary(); !apperr.IsKind(err, apperr.KindStorage) {
		t.Fatalf("err = %v, want storage", err)
	}
}
