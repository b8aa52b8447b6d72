package arsip

import "github.com/iancoleman/orderedmap"

type RowServicePort interface {
	InsertBatch(jenisID int64, rows []map[string]interface{}, actorID int64) (*BatchResult, error)
	UpdateRow(jenisID, rowID int64, values map[string]interface{}, actorID int64) error
	BatchUpdateRows(jenisID int64, rows []map[string]interface{}, actorID int64) (int, error)
	BatchDeleteRows(jenisID int64, ids []int64, actorID int64) (int, error)
	BatchSetColumn(jenisID int64, ids []int64, kolom string, nilai interface{}, actorID int64) (int, error)
	TableRows(jenisID int64) ([]*orderedmap.OrderedMap, error)

	Import(jenisID int64, headers []string, dataRows [][]string, mapping map[string]string, actorID int64) (*BatchResult, error)
	Export(jenisID int64, ids []int64, actorID int64) (filename string, contentType string, out []byte, err error)

	ListArsip(input ListArsipInput) ([]ArsipRow, int64, int, error)
	CreateArsip(input ArsipInput, actorID int64) (*Arsip, error)
	UpdateArsip(id int64, input ArsipInput, actorID int64) (*Arsip, error)
	DeleteArsip(id int64, actorID int64) error
}
