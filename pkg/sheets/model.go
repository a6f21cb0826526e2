package sheets

import (
	"context"
	"errors"

	"welltracker/pkg/journal"
)

// Record is one well row keyed by header name.
type Record map[string]interface{}

// Recorder receives an entry after every saved mutation.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

type colIdx int

const (
	// ColumnSlot is checked for emptiness when looking for a free row to
	// append into.
	ColumnSlot colIdx = 1
)

var (
	ErrInvalidSheet   = errors.New("invalid sheet name")
	ErrSheetNotFound  = errors.New("worksheet does not exist")
	ErrMissingColumn  = errors.New("missing column")
	ErrNotFound       = errors.New("well not found")
	ErrNoEmptyRow     = errors.New("no empty row found")
	ErrNoData         = errors.New("no well data provided")
	ErrNameRequired   = errors.New("well name is required")
	ErrInvalidArchive = errors.New("invalid archive sheet")
)
