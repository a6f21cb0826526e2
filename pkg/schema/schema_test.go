package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, 4, s.IdentityColumn)
	assert.Equal(t, 2, s.HeaderRow)
	assert.Equal(t, 3, s.FirstDataRow)
	assert.Len(t, s.DropdownColumns, 7)
}

func TestAllowed(t *testing.T) {
	s := Default()
	tests := []struct {
		sheet string
		want  bool
	}{
		{"BP-P", true},
		{"PSC", true},
		{"DELETED", false},
		{"RESOLVED", false},
		{"Lists", false},
		{"bp-p", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := s.Allowed(tt.sheet); got != tt.want {
			t.Errorf("Allowed(%q) = %v, want %v", tt.sheet, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Schema)
	}{
		{"no sheets", func(s *Schema) { s.Sheets = nil }},
		{"header row zero", func(s *Schema) { s.HeaderRow = 0 }},
		{"data before header", func(s *Schema) { s.FirstDataRow = 2 }},
		{"identity column zero", func(s *Schema) { s.IdentityColumn = 0 }},
		{"inverted gain window", func(s *Schema) { s.GainFirstRow = 300 }},
		{"no archive sheet", func(s *Schema) { s.DeletedSheet = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestLoadEmptyFilename(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.toml")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)

	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestLoadOverridesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.toml")
	content := `
sheets = ["North", "South"]
identity_column = 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, s.Sheets)
	assert.Equal(t, 2, s.IdentityColumn)
	// Untouched keys fall back to defaults
	assert.Equal(t, "RESOLVED", s.ResolvedSheet)
	assert.Equal(t, 299, s.GainLastRow)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.toml")
	require.NoError(t, os.WriteFile(path, []byte("header_row = 0\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.toml")
	require.NoError(t, os.WriteFile(path, []byte("sheets = [\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema: parse")
}
