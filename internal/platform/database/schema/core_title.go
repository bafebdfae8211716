package schema

// CoreTitleTable represents the 'core.title' table
type CoreTitleTable struct {
	Table       string
	ID          string
	Name        string
	Year        string
	Description string
	CategoryID  string
	CreatedAt   string
}

// CoreTitle is the schema definition for core.title
var CoreTitle = CoreTitleTable{
	Table:       "core.title",
	ID:          "id",
	Name:        "name",
	Year:        "year",
	Description: "description",
	CategoryID:  "categoryid",
	CreatedAt:   "createdat",
}

func (t CoreTitleTable) Columns() []string {
	return []string{t.ID, t.Name, t.Year, t.Description, t.CategoryID, t.CreatedAt}
}

// CoreTitleGenreTable represents the 'core.titlegenre' join table
type CoreTitleGenreTable struct {
	Table   string
	TitleID string
	GenreID string
}

// CoreTitleGenre is the schema definition for core.titlegenre
var CoreTitleGenre = CoreTitleGenreTable{
	Table:   "core.titlegenre",
	TitleID: "titleid",
	GenreID: "genreid",
}
