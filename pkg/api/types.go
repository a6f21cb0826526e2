package api

import (
	"context"
	"encoding/json"

	"welltracker/pkg/sheets"

	"github.com/rotisserie/eris"
)

// WellStore is the spreadsheet record service behind the routes.
type WellStore interface {
	Sheets() []string
	CategoryValues(ctx context.Context, sheet string) ([]string, error)
	TotalGain(ctx context.Context, sheet string) (float64, error)
	Wells(ctx context.Context, sheet, category string) ([]sheets.Record, error)
	SaveWell(ctx context.Context, sheet string, rec sheets.Record) error
	AddWell(ctx context.Context, sheet string, rec sheets.Record) error
	DeleteWell(ctx context.Context, sheet, name string) error
	MoveWell(ctx context.Context, sheet, name, archive string) error
	DropdownOptions(ctx context.Context, sheet string) (map[string][]string, error)
	History(ctx context.Context, name string) ([]string, error)
}

// wellRequest is the union of every route's JSON body. "Well" and "well" are
// distinct keys: save routes read the former, add_well the latter.
type wellRequest struct {
	Sheet    string        `json:"sheet"`
	PeRe     string        `json:"pe_re"`
	WellName *string       `json:"well_name"`
	Well     sheets.Record `json:"Well"`
	NewWell  sheets.Record `json:"well"`
}

// UnmarshalJSON matches keys exactly. The default decoder falls back to a
// case-insensitive match, which would let "SHEET" or "WELL" stand in for
// "sheet" and "well".
func (r *wellRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := map[string]interface{}{
		"sheet":     &r.Sheet,
		"pe_re":     &r.PeRe,
		"well_name": &r.WellName,
		"Well":      &r.Well,
		"well":      &r.NewWell,
	}
	for key, dst := range fields {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return eris.Wrapf(err, "api: field %q", key)
		}
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type totalGainResponse struct {
	TotalGain float64 `json:"total_gain"`
}

type historyResponse struct {
	Comments []string `json:"comments"`
}

type indexResponse struct {
	Sheets []string `json:"sheets"`
}

type healthResponse struct {
	Status string `json:"status"`
}
