package logs

import "time"

// Audit actions recorded in log_aktivitas. The trail is append-only; nothing
// in the application updates or deletes rows here.
const (
	AksiLogin       = "LOGIN"
	AksiBuatJenis   = "CREATE_JENIS"
	AksiUbahJenis   = "UPDATE_JENIS"
	AksiHapusJenis  = "DELETE_JENIS"
	AksiSyncKolom   = "SYNC_KOLOM"
	AksiUbahDefault = "UPDATE_DEFAULT"
	AksiInputArsip  = "INPUT_ARSIP"
	AksiImportArsip = "IMPORT_ARSIP"
	AksiUpdateArsip = "UPDATE_ARSIP"
	AksiHapusArsip  = "DELETE_ARSIP"
	AksiExportArsip = "EXPORT_ARSIP"
	AksiBuatUser    = "CREATE_USER"
	AksiUbahUser    = "UPDATE_USER"
	AksiHapusUser   = "DELETE_USER"
	AksiBackup      = "BACKUP"
)

type LogAktivitas struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Aksi      string    `gorm:"size:50;not null" json:"aksi"`
	Entitas   string    `gorm:"size:100;not null" json:"entitas"`
	EntitasID int64     `json:"entitas_id"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (LogAktivitas) TableName() string { return "log_aktivitas" }

type LogFilterInput struct {
	UserID  *int64  `json:"user_id"`
	Aksi    *string `json:"aksi"`
	Entitas *string `json:"entitas"`

	StartDate *string `json:"start_date"` // "YYYY-MM-DD"
	EndDate   *string `json:"end_date"`

	Search   *string `json:"search"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

type AggItem struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type LogAggregates struct {
	ByAksi []AggItem `json:"by_aksi"`
	ByUser []AggItem `json:"by_user"`
}

type LogRow struct {
	LogAktivitas
	Nama string `json:"nama" gorm:"column:nama"`
}
