package dashboard

import (
	"gorm.io/gorm"

	"arsip-api/internal/apperr"
	"arsip-api/internal/archivetype"
)

type DashboardService struct {
	DB     *gorm.DB
	Tables archivetype.TableManager
}

const recentActivityLimit = 10

// GetSummary collects the counters shown on the landing page. Row counts for
// dynamic tables are taken live so a table dropped outside the app simply
// reports zero instead of failing the whole page.
func (s *DashboardService) GetSummary() (*Summary, error) {
	out := &Summary{}

	if err := s.DB.Model(&archivetype.JenisArsip{}).Count(&out.TotalJenis).Error; err != nil {
		return nil, apperr.Storage("count jenis failed", err)
	}
	if err := s.DB.Table("users").Count(&out.TotalUser).Error; err != nil {
		return nil, apperr.Storage("count users failed", err)
	}
	if err := s.DB.Table("arsip").Count(&out.TotalArsip).Error; err != nil {
		return nil, apperr.Storage("count arsip failed", err)
	}

	var jenis []archivetype.JenisArsip
	if err := s.DB.Order("nama ASC").Find(&jenis).Error; err != nil {
		return nil, apperr.Storage("load jenis failed", err)
	}
	out.PerJenis = make([]JenisCount, 0, len(jenis))
	for _, j := range jenis {
		item := JenisCount{JenisID: j.ID, Nama: j.Nama, NamaTabel: j.NamaTabel}
		if s.Tables.HasTable(s.DB, j.NamaTabel) {
			if err := s.DB.Table(j.NamaTabel).Count(&item.JumlahBaris).Error; err != nil {
				return nil, apperr.Storage("count rows failed", err)
			}
		}
		out.TotalBarisDinamis += item.JumlahBaris
		out.PerJenis = append(out.PerJenis, item)
	}

	if err := s.DB.Table("arsip").
		Select("tahun, COUNT(*) AS jumlah").
		Group("tahun").
		Order("tahun DESC").
		Scan(&out.PerTahun).Error; err != nil {
		return nil, apperr.Storage("count per tahun failed", err)
	}

	if err := s.DB.Table("log_aktivitas l").
		Joins("LEFT JOIN users u ON u.id = l.user_id").
		Select("l.id, l.user_id, COALESCE(u.nama, '') AS nama, l.aksi, l.entitas, l.entitas_id, l.detail, l.created_at").
		Order("l.created_at DESC").
		Limit(recentActivityLimit).
		Scan(&out.AktivitasTerbaru).Error; err != nil {
		return nil, apperr.Storage("load aktivitas failed", err)
	}

	return out, nil
}
