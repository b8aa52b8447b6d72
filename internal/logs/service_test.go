package logs

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq uint64

// UserForTest creates the "users" table GetLogs joins against.
type UserForTest struct {
	ID   int64  `gorm:"primaryKey;column:id"`
	Nama string `gorm:"column:nama"`
}

func (UserForTest) TableName() string { return "users" }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:arsip_logs_test_%d?mode=memory&cache=shared", id)

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

	if err := db.AutoMigrate(&LogAktivitas{}, &UserForTest{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedLogs(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Create(&UserForTest{ID: 1, Nama: "Admin Dinas"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := db.Create(&UserForTest{ID: 2, Nama: "Staf Arsip"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	now := time.Now()
	entries := []LogAktivitas{
		{UserID: 1, Aksi: AksiBuatJenis, Entitas: "arsip_bantuan_2026", EntitasID: 1, Detail: "Buat jenis arsip", CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: 2, Aksi: AksiInputArsip, Entitas: "arsip_bantuan_2026", EntitasID: 10, Detail: "Tambah arsip 001", CreatedAt: now.Add(-1 * time.Hour)},
		{UserID: 2, Aksi: AksiInputArsip, Entitas: "arsip_bantuan_2026", EntitasID: 11, Detail: "Tambah arsip 002", CreatedAt: now.Add(-30 * time.Minute)},
		{UserID: 1, Aksi: AksiLogin, Entitas: "users", Detail: "Login: admin", CreatedAt: now.AddDate(0, 0, -60)},
	}
	for i := range entries {
		if err := db.Create(&entries[i]).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}
}

func TestLogService_CatatRespectsTransaction(t *testing.T) {
	db := newTestDB(t)
	ls := &LogService{DB: db}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ls.Catat(tx, LogAktivitas{UserID: 1, Aksi: AksiBackup, Entitas: "database"}); err != nil {
			return err
		}
		return fmt.Errorf("force rollback")
	})
	if err == nil {
		t.Fatalf("transaction should have failed")
	}

	var n int64
	db.Model(&LogAktivitas{}).Count(&n)
	if n != 0 {
		t.Fatalf("rolled-back entry persisted, count = %d", n)
	}

	if err := ls.Log(LogAktivitas{UserID: 1, Aksi: AksiBackup, Entitas: "database"}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	db.Model(&LogAktivitas{}).Count(&n)
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestLogService_GetLogs_DefaultWindowAndOrder(t *testing.T) {
	db := newTestDB(t)
	ls := &LogService{DB: db}
	seedLogs(t, db)

	rows, aggs, total, pages, err := ls.GetLogs(LogFilterInput{})
	if err != nil {
		t.Fatalf("GetLogs: %v", err)
	}
	// the 60-day-old login falls outside the default 30-day window
	if total != 3 || pages != 1 || len(rows) != 3 {
		t.Fatalf("total = %d, pages = %d, rows = %d", total, pages, len(rows))
	}
	// newest first
	if rows[0].Detail != "Tambah arsip 002" {
		t.Fatalf("rows[0] = %+v", rows[0])
	}
	if rows[0].Nama != "Staf Arsip" {
		t.Fatalf("join did not resolve user name: %+v", rows[0])
	}

	foundInput := false
	for _, a := range aggs.ByAksi {
		if a.Label == AksiInputArsip && a.Count == 2 {
			foundInput = true
		}
	}
	if !foundInput {
		t.Fatalf("aggregates = %+v", aggs)
	}
}

func TestLogService_GetLogs_Filters(t *testing.T) {
	db := newTestDB(t)
	ls := &LogService{DB: db}
	seedLogs(t, db)

	aksi := AksiInputArsip
	rows, _, total, _, err := ls.GetLogs(LogFilterInput{Aksi: &aksi})
	if err != nil {
		t.Fatalf("GetLogs aksi: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("aksi filter: total = %d", total)
	}

	userID := int64(1)
	_, _, total, _, err = ls.GetLogs(LogFilterInput{UserID: &userID})
	if err != nil {
		t.Fatalf("GetLogs user: %v", err)
	}
	if total != 1 {
		t.Fatalf("user filter: total = %d, want 1 inside window", total)
	}

	// an explicit range overrides the default window
	start := time.Now().AddDate(0, 0, -90).Format("2006-01-02")
	end := time.Now().Format("2006-01-02")
	_, _, total, _, err = ls.GetLogs(LogFilterInput{StartDate: &start, EndDate: &end})
	if err != nil {
		t.Fatalf("GetLogs range: %v", err)
	}
	if total != 4 {
		t.Fatalf("range filter: total = %d, want 4", total)
	}

	search := "staf"
	_, _, total, _, err = ls.GetLogs(LogFilterInput{Search: &search})
	if err != nil {
		t.Fatalf("GetLogs search: %v", err)
	}
	if total != 2 {
		t.Fatalf("search by user name: total = %d, want 2", total)
	}

	bad := "31-12-2026"
	if _, _, _, _, err := ls.GetLogs(LogFilterInput{StartDate: &bad}); err == nil {
		t.Fatalf("malformed date should fail")
	}
}

func TestLogService_GetLogs_Pagination(t *testing.T) {
	db := newTestDB(t)
	ls := &LogService{DB: db}
	if err := db.Create(&UserForTest{ID: 1, Nama: "Admin"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	for i := 0; i < 25; i++ {
		entry := LogAktivitas{UserID: 1, Aksi: AksiInputArsip, Entitas: "arsip_x", EntitasID: int64(i)}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	rows, _, total, pages, err := ls.GetLogs(LogFilterInput{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("GetLogs: %v", err)
	}
	if total != 25 || pages != 3 || len(rows) != 10 {
		t.Fatalf("total = %d, pages = %d, rows = %d", total, pages, len(rows))
	}
}
