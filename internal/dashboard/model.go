package dashboard

import "time"

type JenisCount struct {
	JenisID     int64  `json:"jenis_id"`
	Nama        string `json:"nama"`
	NamaTabel   string `json:"nama_tabel"`
	JumlahBaris int64  `json:"jumlah_baris"`
}

type TahunCount struct {
	Tahun  int   `json:"tahun"`
	Jumlah int64 `json:"jumlah"`
}

type AktivitasRow struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Nama      string    `json:"nama"`
	Aksi      string    `json:"aksi"`
	Entitas   string    `json:"entitas"`
	EntitasID int64     `json:"entitas_id"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

type Summary struct {
	TotalJenis        int64          `json:"total_jenis"`
	TotalBarisDinamis int64          `json:"total_baris_dinamis"`
	TotalArsip        int64          `json:"total_arsip"`
	TotalUser         int64          `json:"total_user"`
	PerJenis          []JenisCount   `json:"per_jenis"`
	PerTahun          []TahunCount   `json:"per_tahun"`
	AktivitasTerbaru  []AktivitasRow `json:"aktivitas_terbaru"`
}
