package sheets

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
)

const dateLayout = "2006-01-02"

// grid is the raw text of one sheet plus enough access to the file to type
// individual cells on demand. Rows and columns are 1-based.
type grid struct {
	f     *excelize.File
	sheet string
	rows  [][]string
}

func readGrid(f *excelize.File, sheet string) (*grid, error) {
	if !sheetExists(f, sheet) {
		return nil, eris.Wrapf(ErrSheetNotFound, "sheets: worksheet %q", sheet)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, eris.Wrapf(err, "sheets: read rows of %q", sheet)
	}
	return &grid{f: f, sheet: sheet, rows: rows}, nil
}

// lastRow is the last row holding any value, 0 for an empty sheet.
func (g *grid) lastRow() int {
	return len(g.rows)
}

// width is the widest used row.
func (g *grid) width() int {
	w := 0
	for _, r := range g.rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

func (g *grid) row(r int) []string {
	if r < 1 || r > len(g.rows) {
		return nil
	}
	return g.rows[r-1]
}

func (g *grid) text(col, r int) string {
	row := g.row(r)
	if col < 1 || col > len(row) {
		return ""
	}
	return row[col-1]
}

// value returns the typed content of a cell: nil, string, float64, bool or
// time.Time.
func (g *grid) value(col, r int) (interface{}, error) {
	raw := g.text(col, r)
	if raw == "" {
		return nil, nil
	}
	ref := cellName(col, r)
	typ, err := g.f.GetCellType(g.sheet, ref)
	if err != nil {
		return nil, eris.Wrapf(err, "sheets: type of %s!%s", g.sheet, ref)
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return t, nil
		}
		return raw, nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		num, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw, nil
		}
		isDate, err := g.isDate(ref)
		if err != nil {
			return nil, err
		}
		if isDate {
			if t, err := excelize.ExcelDateToTime(num, false); err == nil {
				return t, nil
			}
		}
		return num, nil
	default:
		return raw, nil
	}
}

// number coerces a cell to a float. Anything that is not a plain number,
// including dates, counts as zero.
func (g *grid) number(col, r int) (float64, error) {
	raw := strings.TrimSpace(g.text(col, r))
	if raw == "" {
		return 0, nil
	}
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, nil
	}
	isDate, err := g.isDate(cellName(col, r))
	if err != nil {
		return 0, err
	}
	if isDate {
		return 0, nil
	}
	return num, nil
}

func (g *grid) isDate(ref string) (bool, error) {
	styleID, err := g.f.GetCellStyle(g.sheet, ref)
	if err != nil {
		return false, eris.Wrapf(err, "sheets: style of %s!%s", g.sheet, ref)
	}
	if styleID == 0 {
		return false, nil
	}
	style, err := g.f.GetStyle(styleID)
	if err != nil {
		return false, eris.Wrapf(err, "sheets: style %d", styleID)
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt), nil
	}
	return isBuiltinDateFormat(style.NumFmt), nil
}

func isBuiltinDateFormat(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// isDateFormat reports whether a custom number format renders a date or time.
func isDateFormat(format string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range format {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(strings.ToLower(b.String()), "general", "")
	return strings.ContainsAny(cleaned, "ymdhs")
}

func parseISODate(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func cellName(col, r int) string {
	name, err := excelize.CoordinatesToCellName(col, r)
	if err != nil {
		// Callers only pass coordinates >= 1.
		panic(err)
	}
	return name
}

// indexOf returns the 0-based position of name in headers, or -1.
func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

// columnNames labels every column of a table the way a dataframe reader does:
// trimmed header text, "Unnamed: N" for blank headers, ".N" suffixes for
// repeated names.
func columnNames(header []string, width int) []string {
	if len(header) > width {
		width = len(header)
	}
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}

// normalize prepares category text for comparison.
func normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// render converts a typed cell to its JSON form.
func render(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(dateLayout)
	default:
		return x
	}
}

// toCell converts a decoded JSON value to something excelize can store.
func toCell(v interface{}) interface{} {
	switch x := v.(type) {
	case nil, string, float64, bool:
		return x
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// textOf renders a decoded JSON value the way it would read back from a cell.
func textOf(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		s, _ := toCell(x).(string)
		return s
	}
}
