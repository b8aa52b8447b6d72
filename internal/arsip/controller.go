package arsip

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"arsip-api/internal/apperr"
	"arsip-api/internal/middlewares"
	"arsip-api/internal/util"
)

type RowController struct {
	RowService RowServicePort
}

func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("arsip: %v", err)
	}
	c.JSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

func paramInt64(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (rc *RowController) ListArsip(c *gin.Context) {
	var input ListArsipInput
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, total, totalPages, err := rc.RowService.ListArsip(input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        rows,
		"total":       total,
		"total_pages": totalPages,
	})
}

func (rc *RowController) CreateArsip(c *gin.Context) {
	var input ArsipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := rc.RowService.CreateArsip(input, middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Arsip disimpan", "data": record})
}

func (rc *RowController) UpdateArsip(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	var input ArsipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := rc.RowService.UpdateArsip(id, input, middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Arsip diperbarui", "data": record})
}

func (rc *RowController) DeleteArsip(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	if err := rc.RowService.DeleteArsip(id, middlewares.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Arsip dihapus"})
}

func (rc *RowController) TableRows(c *gin.Context) {
	jenisID, ok := paramInt64(c, "jenisId")
	if !ok {
		return
	}

	rows, err := rc.RowService.TableRows(jenisID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (rc *RowController) InsertBatch(c *gin.Context) {
	jenisID, ok := paramInt64(c, "jenisId")
	if !ok {
		return
	}

	var input BatchRowsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := rc.RowService.InsertBatch(jenisID, input.Rows, middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Succeeded == 0 && len(result.Errors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Semua baris gagal disimpan",
			"result":  result,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d dari %d baris tersimpan", result.Succeeded, result.Attempted),
		"result":  result,
	})
}

func (rc *RowController) UpdateRow(c *gin.Context) {
	jenisID, ok := paramInt64(c, "jenisId")
	if !ok {
		return
	}
	rowID, ok := paramInt64(c, "rowId")
	if !ok {
		return
	}

	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := rc.RowService.UpdateRow(jenisID, rowID, values, middlewares.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Baris diperbarui"})
}

func (rc *RowController) BatchUpdate(c *gin.Context) {
	jenisID, ok := paramInt64(c, "jenisId")
	if !ok {
		return
	}

	var input BatchRowsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := rc.RowService.BatchUpdateRows(jenisID, input.Rows, middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d baris diperbarui", updated)})
}

func (rc *RowController) BatchDelete(c *gin.Context) {
	jenisID, ok := paramInt64(c, "jenisId")
	if !ok {
		return
	}

	var input BatchDeleteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := rc.RowService.BatchDeleteRows(jenisID, input.IDs, middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d baris dihapus", deleted)})
}

func (rc *RowController) SetColumn(c *gin.Context) {
	jenisID, ok := paramInt64(c, "jenisId")
	if !ok {
		return
	}

	var input SetColumnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := rc.RowService.BatchSetColumn(jenisID, input.IDs, input.Kolom, input.Nilai, middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d baris diperbarui", updated)})
}

// Import accepts a multipart form: "file" (csv/xlsx) and "mapping", a JSON
// object of column name -> file header.
func (rc *RowController) Import(c *gin.Context) {
	jenisID, ok := paramInt64(c, "jenisId")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file wajib diunggah"})
		return
	}

	var mapping map[string]string
	if raw := c.PostForm("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mapping bukan JSON yang valid"})
			return
		}
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	var headers []string
	var dataRows [][]string
	switch ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext {
	case ".csv":
		headers, dataRows, err = ParseCSVReader(f)
	case ".xlsx", ".xls":
		headers, dataRows, err = ParseExcelReader(f)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file type: %s", ext)})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := rc.RowService.Import(jenisID, headers, dataRows, mapping, middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Succeeded == 0 && len(result.Errors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Semua baris gagal diimpor",
			"result":  result,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d dari %d baris diimpor", result.Succeeded, result.Attempted),
		"result":  result,
	})
}

func (rc *RowController) Export(c *gin.Context) {
	jenisID, ok := paramInt64(c, "jenisId")
	if !ok {
		return
	}

	ids, err := util.ParseIDList(c.Query("ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ids"})
		return
	}

	filename, contentType, out, err := rc.RowService.Export(jenisID, ids, middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, out)
}
