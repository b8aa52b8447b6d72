package archivetype

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"arsip-api/internal/apperr"
	"arsip-api/internal/middlewares"
)

type SchemaController struct {
	SchemaService SchemaServicePort
}

func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("archivetype: %v", err)
	}
	c.JSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (sc *SchemaController) List(c *gin.Context) {
	types, err := sc.SchemaService.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": types})
}

func (sc *SchemaController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	jenis, err := sc.SchemaService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	fields, err := sc.SchemaService.GetSchema(id)
	if err != nil {
		respondError(c, err)
		return
	}
	defaults, err := sc.SchemaService.GetDefaults(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     jenis,
		"fields":   fields,
		"defaults": defaults,
	})
}

func (sc *SchemaController) Create(c *gin.Context) {
	var input JenisInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jenis, err := sc.SchemaService.Create(input, middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Jenis arsip dibuat", "data": jenis})
}

func (sc *SchemaController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input JenisInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jenis, err := sc.SchemaService.Update(id, input, middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Jenis arsip diperbarui", "data": jenis})
}

func (sc *SchemaController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := sc.SchemaService.Delete(id, middlewares.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Jenis arsip dihapus"})
}

func (sc *SchemaController) GetSchema(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	fields, err := sc.SchemaService.GetSchema(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": fields})
}

func (sc *SchemaController) SyncColumns(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	added, err := sc.SchemaService.SyncColumns(id, middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Kolom disinkronkan", "added": added})
}

func (sc *SchemaController) SetDefaults(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sc.SchemaService.SetDefaults(id, values, middlewares.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default values disimpan"})
}
