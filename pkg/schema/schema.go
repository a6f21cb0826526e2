package schema

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"
)

// Column numbers are 1-based, row numbers are 1-based, as in the workbook UI.
const (
	DefaultHeaderRow      = 2
	DefaultListsHeaderRow = 1
	DefaultFirstDataRow   = 3

	// Column D carries the well name used by delete and move lookups. It is
	// not necessarily the column whose header reads "Well".
	DefaultIdentityColumn = 4

	DefaultGainColumn   = "I"
	DefaultGainFirstRow = 3
	DefaultGainLastRow  = 299
	DefaultGainCell     = "I1"
)

// Schema describes where things live in the well workbook.
type Schema struct {
	// Do not rename sheets here without renaming them in the workbook
	Sheets        []string `toml:"sheets"`
	DeletedSheet  string   `toml:"deleted_sheet"`
	ResolvedSheet string   `toml:"resolved_sheet"`
	ListsSheet    string   `toml:"lists_sheet"`

	HeaderRow      int `toml:"header_row"`
	ListsHeaderRow int `toml:"lists_header_row"`
	FirstDataRow   int `toml:"first_data_row"`
	IdentityColumn int `toml:"identity_column"`

	WellHeader     string `toml:"well_header"`
	CategoryHeader string `toml:"category_header"`
	CommentsHeader string `toml:"comments_header"`

	GainColumn   string `toml:"gain_column"`
	GainFirstRow int    `toml:"gain_first_row"`
	GainLastRow  int    `toml:"gain_last_row"`
	GainCell     string `toml:"gain_cell"`

	DropdownColumns []string `toml:"dropdown_columns"`
}

// Default returns the layout of the production workbook.
func Default() Schema {
	return Schema{
		Sheets:         []string{"BP-P", "FR-FZ", "GYL-ME", "LBTF", "PFC", "PSC"},
		DeletedSheet:   "DELETED",
		ResolvedSheet:  "RESOLVED",
		ListsSheet:     "Lists",
		HeaderRow:      DefaultHeaderRow,
		ListsHeaderRow: DefaultListsHeaderRow,
		FirstDataRow:   DefaultFirstDataRow,
		IdentityColumn: DefaultIdentityColumn,
		WellHeader:     "Well",
		CategoryHeader: "PE/RE",
		CommentsHeader: "Comments",
		GainColumn:     DefaultGainColumn,
		GainFirstRow:   DefaultGainFirstRow,
		GainLastRow:    DefaultGainLastRow,
		GainCell:       DefaultGainCell,
		DropdownColumns: []string{
			"Assessment Status",
			"Well Type",
			"Category",
			"PE/RE",
			"Well Analyst",
			"Current Responsibilities",
			"Servicing Status",
		},
	}
}

// Allowed reports whether sheet is one of the editable data sheets.
func (s Schema) Allowed(sheet string) bool {
	for _, name := range s.Sheets {
		if name == sheet {
			return true
		}
	}
	return false
}

// Validate checks the row and column offsets are usable.
func (s Schema) Validate() error {
	switch {
	case len(s.Sheets) == 0:
		return eris.New("schema: no data sheets configured")
	case s.HeaderRow < 1 || s.ListsHeaderRow < 1:
		return eris.New("schema: header rows start at 1")
	case s.FirstDataRow <= s.HeaderRow:
		return eris.Errorf("schema: first data row %d must follow header row %d", s.FirstDataRow, s.HeaderRow)
	case s.IdentityColumn < 1:
		return eris.Errorf("schema: invalid identity column %d", s.IdentityColumn)
	case s.GainFirstRow < 1 || s.GainFirstRow > s.GainLastRow:
		return eris.Errorf("schema: invalid gain window %d..%d", s.GainFirstRow, s.GainLastRow)
	case s.DeletedSheet == "" || s.ResolvedSheet == "" || s.ListsSheet == "":
		return eris.New("schema: archive and lists sheet names are required")
	}
	return nil
}

type file struct {
	Filename string
	Schema   Schema
}

// Write the current schema out to a toml file.
func (f *file) Save() error {
	b, err := toml.Marshal(f.Schema)
	if err != nil {
		return eris.Wrap(err, "schema: marshal")
	}
	return eris.Wrapf(os.WriteFile(f.Filename, b, 0644), "schema: write %s", f.Filename)
}

// Load the current schema from a toml file. Keys missing from the file keep
// their current values.
func (f *file) Load() error {
	b, err := os.ReadFile(f.Filename)
	if err != nil {
		return err
	}
	return eris.Wrapf(toml.Unmarshal(b, &f.Schema), "schema: parse %s", f.Filename)
}

// Load reads the schema from filename. An empty filename means the defaults.
// A missing file is created with the defaults so it can be edited later.
func Load(filename string) (Schema, error) {
	f := &file{
		Filename: filename,
		Schema:   Default(),
	}
	if filename == "" {
		return f.Schema, nil
	}
	if err := f.Load(); err != nil {
		if !os.IsNotExist(err) {
			return Schema{}, err
		}
		if err := f.Save(); err != nil {
			return Schema{}, err
		}
	}
	if err := f.Schema.Validate(); err != nil {
		return Schema{}, err
	}
	return f.Schema, nil
}
