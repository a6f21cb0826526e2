package sheets

import (
	"context"
	"sort"
	"strings"

	"welltracker/pkg/journal"

	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// CategoryValues returns the distinct non-empty values of the category
// column of sheet, sorted.
func (c *Client) CategoryValues(ctx context.Context, sheet string) ([]string, error) {
	if !c.schema.Allowed(sheet) {
		return nil, ErrInvalidSheet
	}

	values := []string{}
	err := c.view(func(f *excelize.File) error {
		g, err := readGrid(f, sheet)
		if err != nil {
			return err
		}
		col := indexOf(g.row(c.schema.HeaderRow), c.schema.CategoryHeader)
		if col < 0 {
			return eris.Wrapf(ErrMissingColumn, "sheets: %q in %q", c.schema.CategoryHeader, sheet)
		}

		seen := map[string]bool{}
		for r := c.schema.HeaderRow + 1; r <= g.lastRow(); r++ {
			v := g.text(col+1, r)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(values)
	return values, nil
}

// TotalGain coerces every cell of the gain window to a number, writes the
// coerced values back, stores their sum in the gain cell and returns it.
func (c *Client) TotalGain(ctx context.Context, sheet string) (float64, error) {
	col, err := excelize.ColumnNameToNumber(c.schema.GainColumn)
	if err != nil {
		return 0, eris.Wrapf(err, "sheets: gain column %q", c.schema.GainColumn)
	}

	var total float64
	entry := journal.Entry{Op: journal.OpTotal, Sheet: sheet}
	err = c.update(ctx, entry, func(f *excelize.File) error {
		g, err := readGrid(f, sheet)
		if err != nil {
			return err
		}

		total = 0
		for r := c.schema.GainFirstRow; r <= c.schema.GainLastRow; r++ {
			v, err := g.number(col, r)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cellName(col, r), v); err != nil {
				return eris.Wrapf(err, "sheets: write %s!%s", sheet, cellName(col, r))
			}
			total += v
		}
		if err := f.SetCellValue(sheet, c.schema.GainCell, total); err != nil {
			return eris.Wrapf(err, "sheets: write %s!%s", sheet, c.schema.GainCell)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{"sheet": sheet, "total": total}).Info("Updated total gain")
	return total, nil
}

// Wells returns every row of sheet whose category matches category after
// trimming and case folding. Unlike the mutating calls this accepts any sheet
// present in the workbook.
func (c *Client) Wells(ctx context.Context, sheet, category string) ([]Record, error) {
	var records []Record
	err := c.view(func(f *excelize.File) error {
		if !sheetExists(f, sheet) {
			return eris.Wrapf(ErrInvalidSheet, "sheets: worksheet %q", sheet)
		}
		g, err := readGrid(f, sheet)
		if err != nil {
			return err
		}

		names := columnNames(g.row(c.schema.HeaderRow), g.width())
		col := indexOf(names, c.schema.CategoryHeader)
		if col < 0 {
			return eris.Wrapf(ErrMissingColumn, "sheets: %q in %q", c.schema.CategoryHeader, sheet)
		}

		want := normalize(category)
		for r := c.schema.HeaderRow + 1; r <= g.lastRow(); r++ {
			got := g.text(col+1, r)
			if got == "" || normalize(got) != want {
				continue
			}
			rec := make(Record, len(names))
			for i, name := range names {
				v, err := g.value(i+1, r)
				if err != nil {
					return err
				}
				rec[name] = render(v)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, eris.Wrapf(ErrNotFound, "sheets: no %q rows in %q", category, sheet)
	}

	log.WithFields(log.Fields{"sheet": sheet, "category": category, "count": len(records)}).Debug("Filtered wells")
	return records, nil
}

// SaveWell overwrites the row whose Well cell matches rec's Well value, or
// appends rec after the last used row when there is no match. The scan starts
// at the header row.
func (c *Client) SaveWell(ctx context.Context, sheet string, rec Record) error {
	if !c.schema.Allowed(sheet) {
		return ErrInvalidSheet
	}
	if len(rec) == 0 {
		return ErrNoData
	}

	name := strings.TrimSpace(textOf(rec[c.schema.WellHeader]))
	entry := journal.Entry{Op: journal.OpSave, Sheet: sheet, Well: name}
	return c.update(ctx, entry, func(f *excelize.File) error {
		g, err := readGrid(f, sheet)
		if err != nil {
			return err
		}
		headers := g.row(c.schema.HeaderRow)
		col := indexOf(headers, c.schema.WellHeader)
		if col < 0 {
			return eris.Wrapf(ErrMissingColumn, "sheets: %q in %q", c.schema.WellHeader, sheet)
		}

		target := 0
		if name != "" {
			for r := c.schema.HeaderRow; r <= g.lastRow(); r++ {
				if strings.TrimSpace(g.text(col+1, r)) == name {
					target = r
					break
				}
			}
		}

		if target == 0 {
			target = g.lastRow() + 1
			log.WithFields(log.Fields{"sheet": sheet, "well": name, "row": target}).Info("Appending well")
		} else {
			log.WithFields(log.Fields{"sheet": sheet, "well": name, "row": target}).Info("Updating well")
		}
		return writeRecord(f, sheet, target, headers, rec)
	})
}

// AddWell writes rec into the first free row of sheet.
func (c *Client) AddWell(ctx context.Context, sheet string, rec Record) error {
	if !c.schema.Allowed(sheet) {
		return ErrInvalidSheet
	}
	if len(rec) == 0 {
		return ErrNoData
	}

	name := strings.TrimSpace(textOf(rec[c.schema.WellHeader]))
	entry := journal.Entry{Op: journal.OpAdd, Sheet: sheet, Well: name}
	return c.update(ctx, entry, func(f *excelize.File) error {
		g, err := readGrid(f, sheet)
		if err != nil {
			return err
		}
		target := c.freeRow(g)
		if target == 0 {
			return eris.Wrapf(ErrNoEmptyRow, "sheets: %q", sheet)
		}

		log.WithFields(log.Fields{"sheet": sheet, "well": name, "row": target}).Info("Adding well")
		return writeRecord(f, sheet, target, g.row(c.schema.HeaderRow), rec)
	})
}

// DeleteWell removes the first row whose identity cell matches name. Rows
// below it move up by one.
func (c *Client) DeleteWell(ctx context.Context, sheet, name string) error {
	entry := journal.Entry{Op: journal.OpDelete, Sheet: sheet, Well: strings.TrimSpace(name)}
	return c.update(ctx, entry, func(f *excelize.File) error {
		g, err := readGrid(f, sheet)
		if err != nil {
			return err
		}
		target := c.locate(g, c.schema.HeaderRow, name)
		if target == 0 {
			return eris.Wrapf(ErrNotFound, "sheets: %q in %q", name, sheet)
		}
		if err := f.RemoveRow(sheet, target); err != nil {
			return eris.Wrapf(err, "sheets: remove row %d of %q", target, sheet)
		}

		log.WithFields(log.Fields{"sheet": sheet, "well": name, "row": target}).Info("Deleted well")
		return nil
	})
}

// MoveWell cuts the row matching name out of sheet and writes it into the
// first free row of archive. Values are copied column for column, so the two
// sheets must share a layout.
func (c *Client) MoveWell(ctx context.Context, sheet, name, archive string) error {
	if !c.schema.Allowed(sheet) {
		return ErrInvalidSheet
	}
	if archive != c.schema.DeletedSheet && archive != c.schema.ResolvedSheet {
		return eris.Wrapf(ErrInvalidArchive, "sheets: %q", archive)
	}

	entry := journal.Entry{Op: journal.OpMove, Sheet: sheet, Well: strings.TrimSpace(name), Target: archive}
	return c.update(ctx, entry, func(f *excelize.File) error {
		src, err := readGrid(f, sheet)
		if err != nil {
			return err
		}
		dst, err := readGrid(f, archive)
		if err != nil {
			return err
		}

		from := c.locate(src, c.schema.FirstDataRow, name)
		if from == 0 {
			return eris.Wrapf(ErrNotFound, "sheets: %q in %q", name, sheet)
		}
		values := make([]interface{}, src.width())
		for i := range values {
			if values[i], err = src.value(i+1, from); err != nil {
				return err
			}
		}

		to := c.freeRow(dst)
		if to == 0 {
			return eris.Wrapf(ErrNoEmptyRow, "sheets: %q", archive)
		}
		if err := f.RemoveRow(sheet, from); err != nil {
			return eris.Wrapf(err, "sheets: remove row %d of %q", from, sheet)
		}
		for i, v := range values {
			ref := cellName(i+1, to)
			if err := f.SetCellValue(archive, ref, v); err != nil {
				return eris.Wrapf(err, "sheets: write %s!%s", archive, ref)
			}
		}

		log.WithFields(log.Fields{
			"sheet":   sheet,
			"well":    name,
			"archive": archive,
			"from":    from,
			"to":      to,
		}).Info("Moved well")
		return nil
	})
}

// DropdownOptions returns, for every configured dropdown column, the distinct
// trimmed values listed under it in the lists sheet. Columns missing from the
// lists sheet map to an empty list.
func (c *Client) DropdownOptions(ctx context.Context, sheet string) (map[string][]string, error) {
	if !c.schema.Allowed(sheet) {
		return nil, ErrInvalidSheet
	}

	options := make(map[string][]string, len(c.schema.DropdownColumns))
	err := c.view(func(f *excelize.File) error {
		g, err := readGrid(f, c.schema.ListsSheet)
		if err != nil {
			return err
		}
		headers := g.row(c.schema.ListsHeaderRow)

		for _, name := range c.schema.DropdownColumns {
			values := []string{}
			if col := indexOf(headers, name); col >= 0 {
				seen := map[string]bool{}
				for r := c.schema.ListsHeaderRow + 1; r <= g.lastRow(); r++ {
					v := strings.TrimSpace(g.text(col+1, r))
					if v == "" || seen[v] {
						continue
					}
					seen[v] = true
					values = append(values, v)
				}
				sort.Strings(values)
			}
			options[name] = values
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return options, nil
}

// History returns the comments recorded against name in the resolved sheet,
// in row order. Rows with a blank Well cell belong to no well.
func (c *Client) History(ctx context.Context, name string) ([]string, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	comments := []string{}
	err := c.view(func(f *excelize.File) error {
		g, err := readGrid(f, c.schema.ResolvedSheet)
		if err != nil {
			return err
		}
		headers := g.row(c.schema.HeaderRow)
		wellCol := indexOf(headers, c.schema.WellHeader)
		commentCol := indexOf(headers, c.schema.CommentsHeader)
		if wellCol < 0 || commentCol < 0 {
			return eris.Wrapf(ErrMissingColumn, "sheets: %q or %q in %q",
				c.schema.WellHeader, c.schema.CommentsHeader, c.schema.ResolvedSheet)
		}

		want := strings.TrimSpace(name)
		for r := c.schema.FirstDataRow; r <= g.lastRow(); r++ {
			well, comment := strings.TrimSpace(g.text(wellCol+1, r)), g.text(commentCol+1, r)
			if well == "" || comment == "" || well != want {
				continue
			}
			comments = append(comments, strings.TrimSpace(comment))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// locate finds the first row at or after start whose identity cell is set and
// matches name after trimming. It returns 0 when there is none.
func (c *Client) locate(g *grid, start int, name string) int {
	want := strings.TrimSpace(name)
	for r := start; r <= g.lastRow(); r++ {
		v := g.text(int(c.identity), r)
		if v == "" {
			continue
		}
		if strings.TrimSpace(v) == want {
			return r
		}
	}
	return 0
}

// freeRow finds the first data row whose slot column is empty, looking one
// row past the last used row. It returns 0 when the sheet has no such row.
func (c *Client) freeRow(g *grid) int {
	for r := c.schema.FirstDataRow; r <= g.lastRow()+1; r++ {
		if g.text(int(ColumnSlot), r) == "" {
			return r
		}
	}
	return 0
}

// writeRecord writes rec into row following the header order. Header columns
// missing from rec are written empty; keys of rec that are not headers are
// ignored.
func writeRecord(f *excelize.File, sheet string, row int, headers []string, rec Record) error {
	for i, h := range headers {
		var v interface{} = ""
		if h != "" {
			if got, ok := rec[h]; ok {
				v = toCell(got)
			}
		}
		ref := cellName(i+1, row)
		if err := f.SetCellValue(sheet, ref, v); err != nil {
			return eris.Wrapf(err, "sheets: write %s!%s", sheet, ref)
		}
	}
	return nil
}
