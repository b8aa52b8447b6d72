package arsip

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"arsip-api/internal/apperr"
	"arsip-api/internal/logs"
	"arsip-api/internal/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export renders the dynamic table of one archive type as an XLSX workbook:
// "Prefix" and "Nomor Arsip" first, then one column per field label in
// display order, then the localized creation date. A non-empty ids list
// exports just that subset of rows.
func (s *RowService) Export(jenisID int64, ids []int64, actorID int64) (filename string, contentType string, out []byte, err error) {
	jenis, fields, rows, err := s.tableRowsRaw(jenisID, ids)
	if err != nil {
		return "", "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})

	sheet := safeSheetName(jenis.Nama)
	if sheet == "" {
		sheet = fmt.Sprintf("Jenis_%d", jenis.ID)
	}
	f.SetSheetName("Sheet1", sheet)

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return "", "", nil, apperr.Storage("create stream writer failed", err)
	}

	header := []interface{}{
		excelize.Cell{Value: "Prefix", StyleID: headerStyle},
		excelize.Cell{Value: "Nomor Arsip", StyleID: headerStyle},
	}
	for _, fd := range fields {
		header = append(header, excelize.Cell{Value: fd.Label, StyleID: headerStyle})
	}
	header = append(header, excelize.Cell{Value: "Tanggal Dibuat", StyleID: headerStyle})
	if err := sw.SetRow("A1", header); err != nil {
		return "", "", nil, apperr.Storage("write header failed", err)
	}

	rowNum := 2
	for _, row := range rows {
		values := []interface{}{
			cellString(row["prefix"]),
			cellString(row["nomor_arsip"]),
		}
		for _, fd := range fields {
			values = append(values, cellString(row[fd.NamaKolom]))
		}
		values = append(values, formatCreatedAt(row["created_at"]))

		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := sw.SetRow(cell, values); err != nil {
			return "", "", nil, apperr.Storage("write row failed", err)
		}
		rowNum++
	}

	if err := sw.Flush(); err != nil {
		return "", "", nil, apperr.Storage("flush sheet failed", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", "", nil, apperr.Storage("write workbook failed", err)
	}

	entry := logs.LogAktivitas{
		UserID:    actorID,
		Aksi:      logs.AksiExportArsip,
		Entitas:   jenis.NamaTabel,
		EntitasID: jenis.ID,
		Detail:    fmt.Sprintf("Export %d baris", len(rows)),
	}
	if err := s.Logs.Log(entry); err != nil {
		return "", "", nil, apperr.Storage("write audit failed", err)
	}

	name := fmt.Sprintf("%s.xlsx", jenis.NamaTabel)
	return name, xlsxContentType, buf.Bytes(), nil
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func formatCreatedAt(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		return util.FormatTanggal(t)
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return util.FormatTanggal(parsed)
			}
		}
		return t
	default:
		return cellString(v)
	}
}

func safeSheetName(name string) string {
	n := strings.TrimSpace(name)
	n = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_").Replace(n)
	if len(n) > 31 {
		n = n[:31]
	}
	return n
}
