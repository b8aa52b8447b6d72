package archivetype

type SchemaServicePort interface {
	Create(input JenisInput, actorID int64) (*JenisArsip, error)
	Update(id int64, input JenisInput, actorID int64) (*JenisArsip, error)
	Delete(id int64, actorID int64) error
	SyncColumns(id int64, actorID int64) ([]string, error)

	Get(id int64) (*JenisArsip, error)
	GetSchema(id int64) ([]SchemaConfig, error)
	List() ([]JenisWithFieldCount, error)

	SetDefaults(id int64, values map[string]string, actorID int64) error
	GetDefaults(id int64) (map[string]string, error)
}
