package api

import (
	"context"

	"welltracker/pkg/sheets"
)

type mockWellStore struct {
	SheetsFunc          func() []string
	CategoryValuesFunc  func(ctx context.Context, sheet string) ([]string, error)
	TotalGainFunc       func(ctx context.Context, sheet string) (float64, error)
	WellsFunc           func(ctx context.Context, sheet, category string) ([]sheets.Record, error)
	SaveWellFunc        func(ctx context.Context, sheet string, rec sheets.Record) error
	AddWellFunc         func(ctx context.Context, sheet string, rec sheets.Record) error
	DeleteWellFunc      func(ctx context.Context, sheet, name string) error
	MoveWellFunc        func(ctx context.Context, sheet, name, archive string) error
	DropdownOptionsFunc func(ctx context.Context, sheet string) (map[string][]string, error)
	HistoryFunc         func(ctx context.Context, name string) ([]string, error)
}

func (m *mockWellStore) Sheets() []string {
	return m.SheetsFunc()
}
func (m *mockWellStore) CategoryValues(ctx context.Context, sheet string) ([]string, error) {
	return m.CategoryValuesFunc(ctx, sheet)
}
func (m *mockWellStore) TotalGain(ctx context.Context, sheet string) (float64, error) {
	return m.TotalGainFunc(ctx, sheet)
}
func (m *mockWellStore) Wells(ctx context.Context, sheet, category string) ([]sheets.Record, error) {
	return m.WellsFunc(ctx, sheet, category)
}
func (m *mockWellStore) SaveWell(ctx context.Context, sheet string, rec sheets.Record) error {
	return m.SaveWellFunc(ctx, sheet, rec)
}
func (m *mockWellStore) AddWell(ctx context.Context, sheet string, rec sheets.Record) error {
	return m.AddWellFunc(ctx, sheet, rec)
}
func (m *mockWellStore) DeleteWell(ctx context.Context, sheet, name string) error {
	return m.DeleteWellFunc(ctx, sheet, name)
}
func (m *mockWellStore) MoveWell(ctx context.Context, sheet, name, archive string) error {
	return m.MoveWellFunc(ctx, sheet, name, archive)
}
func (m *mockWellStore) DropdownOptions(ctx context.Context, sheet string) (map[string][]string, error) {
	return m.DropdownOptionsFunc(ctx, sheet)
}
func (m *mockWellStore) History(ctx context.Context, name string) ([]string, error) {
	return m.HistoryFunc(ctx, name)
}
