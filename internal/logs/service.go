package logs

import (
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"arsip-api/internal/util"
)

type LogService struct {
	DB *gorm.DB
}

// Catat appends one audit entry using the caller's transaction handle, so
// the entry commits and rolls back together with the mutation it documents.
func (ls *LogService) Catat(tx *gorm.DB, entry LogAktivitas) error {
	entry.ID = 0
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return tx.Create(&entry).Error
}

// Log appends a standalone entry (login, backup) outside any transaction.
func (ls *LogService) Log(entry LogAktivitas) error {
	return ls.Catat(ls.DB, entry)
}

func (ls *LogService) GetLogs(input LogFilterInput) ([]LogRow, LogAggregates, int64, int, error) {
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.PageSize <= 0 || input.PageSize > 100 {
		input.PageSize = 20
	}

	base := ls.DB.
		Table("log_aktivitas").
		Select("log_aktivitas.*, u.nama as nama").
		Joins("LEFT JOIN users u ON log_aktivitas.user_id = u.id")

	// Default window: last 30 days
	if input.StartDate == nil && input.EndDate == nil {
		base = base.Where("log_aktivitas.created_at >= ?", time.Now().AddDate(0, 0, -30))
	}

	if input.UserID != nil {
		base = base.Where("log_aktivitas.user_id = ?", *input.UserID)
	}
	if input.Aksi != nil && strings.TrimSpace(*input.Aksi) != "" {
		base = base.Where("log_aktivitas.aksi = ?", strings.TrimSpace(*input.Aksi))
	}
	if input.Entitas != nil && strings.TrimSpace(*input.Entitas) != "" {
		base = base.Where("log_aktivitas.entitas = ?", strings.TrimSpace(*input.Entitas))
	}

	start, hasStart, endExclusive, hasEnd, err := util.ParseDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}
	if hasStart {
		base = base.Where("log_aktivitas.created_at >= ?", start)
	}
	if hasEnd {
		base = base.Where("log_aktivitas.created_at < ?", endExclusive)
	}

	if input.Search != nil && strings.TrimSpace(*input.Search) != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(*input.Search)) + "%"
		base = base.Where(
			`lower(log_aktivitas.aksi) LIKE ?
			 OR lower(log_aktivitas.entitas) LIKE ?
			 OR lower(log_aktivitas.detail) LIKE ?
			 OR lower(COALESCE(u.nama,'')) LIKE ?`,
			like, like, like, like,
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(input.PageSize)))
	if totalPages == 0 {
		totalPages = 1
	}

	var rows []LogRow
	if err := base.
		Session(&gorm.Session{}).
		Order("log_aktivitas.created_at DESC").
		Order("log_aktivitas.id DESC").
		Limit(input.PageSize).
		Offset((input.Page - 1) * input.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}

	aggs, err := ls.getAggregatesFromBase(base)
	if err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}

	return rows, aggs, total, totalPages, nil
}

func (ls *LogService) getAggregatesFromBase(base *gorm.DB) (LogAggregates, error) {
	aggs := LogAggregates{}
	limit := 12

	var byAksi []AggItem
	if err := base.Session(&gorm.Session{}).
		Select("log_aktivitas.aksi AS label, COUNT(*) AS count").
		Group("log_aktivitas.aksi").
		Order("count DESC").
		Limit(limit).
		Scan(&byAksi).Error; err != nil {
		return LogAggregates{}, err
	}
	aggs.ByAksi = byAksi

	var byUser []AggItem
	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(NULLIF(u.nama,''), 'Unknown') AS label, COUNT(*) AS count").
		Group("label").
		Order("count DESC").
		Limit(limit).
		Scan(&byUser).Error; err != nil {
		return LogAggregates{}, err
	}
	aggs.ByUser = byUser

	return aggs, nil
}
