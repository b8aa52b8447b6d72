package archivetype

import "time"

// Field types accepted in a schema definition. text and date are stored as
// TEXT columns, number as INTEGER.
const (
	TipeText   = "text"
	TipeNumber = "number"
	TipeDate   = "date"
)

type JenisArsip struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Nama      string    `gorm:"size:255;uniqueIndex;not null" json:"nama"`
	Kode      string    `gorm:"size:20;uniqueIndex;not null" json:"kode"`
	Deskripsi string    `gorm:"type:text" json:"deskripsi"`
	NamaTabel string    `gorm:"size:255;not null" json:"nama_tabel"`
	Aktif     bool      `gorm:"not null;default:true" json:"aktif"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (JenisArsip) TableName() string { return "jenis_arsip" }

type SchemaConfig struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	JenisID      int64  `gorm:"index;not null" json:"jenis_id"`
	Label        string `gorm:"size:255;not null" json:"label"`
	NamaKolom    string `gorm:"size:255;not null" json:"nama_kolom"`
	Tipe         string `gorm:"size:20;not null" json:"tipe"`
	Wajib        bool   `gorm:"not null;default:false" json:"wajib"`
	Urutan       int    `gorm:"not null" json:"urutan"`
	TampilDiList bool   `gorm:"not null;default:true" json:"tampil_di_list"`
}

func (SchemaConfig) TableName() string { return "schema_config" }

type DefaultValue struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	JenisID   int64  `gorm:"index;not null" json:"jenis_id"`
	NamaKolom string `gorm:"size:255;not null" json:"nama_kolom"`
	Nilai     string `gorm:"type:text" json:"nilai"`
}

func (DefaultValue) TableName() string { return "default_values" }

type FieldInput struct {
	Label        string `json:"label" binding:"required"`
	Tipe         string `json:"tipe" binding:"required"`
	Wajib        bool   `json:"wajib"`
	TampilDiList bool   `json:"tampil_di_list"`
}

type JenisInput struct {
	Nama      string       `json:"nama" binding:"required"`
	Kode      string       `json:"kode" binding:"required"`
	Deskripsi string       `json:"deskripsi"`
	Fields    []FieldInput `json:"fields" binding:"required"`
}

type JenisWithFieldCount struct {
	JenisArsip
	JumlahField int64 `json:"jumlah_field"`
	JumlahArsip int64 `json:"jumlah_arsip"`
}
