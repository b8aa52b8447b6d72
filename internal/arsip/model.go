package arsip

import (
	"time"

	"gorm.io/datatypes"
)

// Arsip is the fixed metadata table behind the simple (non dynamic-table)
// input and list flow. Free-form per-type values live in the Data blob;
// batch edit and import work on the per-type dynamic tables instead.
type Arsip struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	JenisID    int64          `gorm:"index;not null" json:"jenis_id"`
	NomorArsip string         `gorm:"size:100;not null" json:"nomor_arsip"`
	Judul      string         `gorm:"size:255;not null" json:"judul"`
	Tahun      int            `gorm:"index" json:"tahun"`
	Data       datatypes.JSON `json:"data"`
	CreatedBy  int64          `gorm:"not null" json:"created_by"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Arsip) TableName() string { return "arsip" }

type ArsipInput struct {
	JenisID    int64          `json:"jenis_id" binding:"required"`
	NomorArsip string         `json:"nomor_arsip" binding:"required"`
	Judul      string         `json:"judul" binding:"required"`
	Tahun      int            `json:"tahun"`
	Data       datatypes.JSON `json:"data"`
}

type ArsipRow struct {
	Arsip
	NamaJenis string `json:"nama_jenis" gorm:"column:nama_jenis"`
}

type ListArsipInput struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Tahun    int    `form:"tahun"`
}

// RowError reports one rejected row of a batch insert or import.
type RowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

type BatchResult struct {
	Attempted int        `json:"attempted"`
	Succeeded int        `json:"succeeded"`
	Errors    []RowError `json:"errors,omitempty"`
}

type BatchRowsInput struct {
	Rows []map[string]interface{} `json:"rows" binding:"required"`
}

type BatchDeleteInput struct {
	IDs []int64 `json:"ids" binding:"required"`
}

type SetColumnInput struct {
	IDs   []int64     `json:"ids" binding:"required"`
	Kolom string      `json:"kolom" binding:"required"`
	Nilai interface{} `json:"nilai"`
}
