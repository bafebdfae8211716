package schema

// RefTable represents a name/slug lookup table such as 'core.category'
type RefTable struct {
	Table string
	ID    string
	Name  string
	Slug  string
}

// CoreCategory is the schema definition for core.category
var CoreCategory = RefTable{
	Table: "core.category",
	ID:    "id",
	Name:  "name",
	Slug:  "slug",
}

// CoreGenre is the schema definition for core.genre
var CoreGenre = RefTable{
	Table: "core.genre",
	ID:    "id",
	Name:  "name",
	Slug:  "slug",
}

func (t RefTable) Columns() []string {
	return []string{t.ID, t.Name, t.Slug}
}
