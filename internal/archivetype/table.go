package archivetype

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"arsip-api/internal/apperr"
	"arsip-api/internal/identifier"
)

// TableManager owns all DDL against the dynamically named per-type tables.
// Identifiers are validated immediately before being concatenated into SQL
// text; values never appear here at all.
type TableManager struct{}

// FixedColumns are present in every dynamic table, ahead of the schema's own
// columns.
var FixedColumns = []string{"id", "prefix", "nomor_arsip", "created_at", "created_by"}

func columnType(tipe string) (string, error) {
	switch tipe {
	case TipeText, TipeDate:
		return "TEXT NOT NULL DEFAULT ''", nil
	case TipeNumber:
		return "INTEGER NOT NULL DEFAULT 0", nil
	default:
		return "", apperr.Validationf("tipe field %q tidak dikenal", tipe)
	}
}

func pkClause(tx *gorm.DB) string {
	if tx.Dialector.Name() == "postgres" {
		return "id BIGSERIAL PRIMARY KEY"
	}
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}

// Provision creates the physical table plus its supporting indexes inside the
// caller's transaction.
func (TableManager) Provision(tx *gorm.DB, tableName string, fields []SchemaConfig) error {
	if !identifier.IsSafeIdentifier(tableName) {
		return apperr.Validationf("nama tabel %q tidak valid", tableName)
	}

	cols := []string{
		pkClause(tx),
		"prefix TEXT NOT NULL DEFAULT ''",
		"nomor_arsip TEXT NOT NULL DEFAULT ''",
		"created_at TIMESTAMP",
		"created_by INTEGER NOT NULL DEFAULT 0",
	}
	for _, f := range fields {
		if !identifier.IsSafeIdentifier(f.NamaKolom) {
			return apperr.Validationf("nama kolom %q tidak valid", f.NamaKolom)
		}
		ct, err := columnType(f.Tipe)
		if err != nil {
			return err
		}
		cols = append(cols, f.NamaKolom+" "+ct)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", tableName, strings.Join(cols, ", "))
	if err := tx.Exec(ddl).Error; err != nil {
		if isAlreadyExists(err) {
			return apperr.Conflictf("tabel %s sudah ada", tableName)
		}
		return apperr.Storage("create table failed", err)
	}

	for _, col := range []string{"prefix", "nomor_arsip"} {
		idx := fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s)", tableName, col, tableName, col)
		if err := tx.Exec(idx).Error; err != nil {
			return apperr.Storage("create index failed", err)
		}
	}
	return nil
}

// Drop removes the physical table. Idempotent; dropping a table that was
// never created is not an error.
func (TableManager) Drop(tx *gorm.DB, tableName string) error {
	if !identifier.IsSafeIdentifier(tableName) {
		return apperr.Validationf("nama tabel %q tidak valid", tableName)
	}
	if err := tx.Exec("DROP TABLE IF EXISTS " + tableName).Error; err != nil {
		return apperr.Storage("drop table failed", err)
	}
	return nil
}

// AddColumn adds one schema column to an existing table. Used by SyncColumns;
// columns are never dropped.
func (TableManager) AddColumn(tx *gorm.DB, tableName string, field SchemaConfig) error {
	if !identifier.IsSafeIdentifier(tableName) {
		return apperr.Validationf("nama tabel %q tidak valid", tableName)
	}
	if !identifier.IsSafeIdentifier(field.NamaKolom) {
		return apperr.Validationf("nama kolom %q tidak valid", field.NamaKolom)
	}
	ct, err := columnType(field.Tipe)
	if err != nil {
		return err
	}
	ddl := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tableName, field.NamaKolom, ct)
	if err := tx.Exec(ddl).Error; err != nil {
		return apperr.Storage("add column failed", err)
	}
	return nil
}

// Columns lists the physical column names of a dynamic table.
func (TableManager) Columns(tx *gorm.DB, tableName string) ([]string, error) {
	if !identifier.IsSafeIdentifier(tableName) {
		return nil, apperr.Validationf("nama tabel %q tidak valid", tableName)
	}
	types, err := tx.Migrator().ColumnTypes(tableName)
	if err != nil {
		return nil, apperr.Storage("inspect table failed", err)
	}
	cols := make([]string, 0, len(types))
	for _, ct := range types {
		cols = append(cols, ct.Name())
	}
	return cols, nil
}

// HasTable reports whether the physical table exists.
func (TableManager) HasTable(tx *gorm.DB, tableName string) bool {
	if !identifier.IsSafeIdentifier(tableName) {
		return false
	}
	return tx.Migrator().HasTable(tableName)
}

func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate")
}
