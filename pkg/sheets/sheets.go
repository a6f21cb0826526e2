package sheets

import (
	"context"
	"time"

	"welltracker/pkg/journal"
	"welltracker/pkg/lock"
	"welltracker/pkg/schema"

	"github.com/natefinch/atomic"
	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Client reads and writes well rows in one workbook file. The workbook is
// opened fresh for every call; nothing is cached between calls.
type Client struct {
	path        string
	schema      schema.Schema
	identity    colIdx
	lock        *lock.Lock
	lockTimeout time.Duration
	recorder    Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithLockTimeout bounds how long a mutation waits for the workbook lock.
func WithLockTimeout(d time.Duration) Option {
	return func(c *Client) { c.lockTimeout = d }
}

// WithRecorder journals every saved mutation to r.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

func NewClient(path string, s schema.Schema, opts ...Option) *Client {
	c := &Client{
		path:        path,
		schema:      s,
		identity:    colIdx(s.IdentityColumn),
		lock:        lock.Named(path),
		lockTimeout: lock.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path is the workbook file the client works on.
func (c *Client) Path() string {
	return c.path
}

// Sheets returns the editable data sheets.
func (c *Client) Sheets() []string {
	return append([]string(nil), c.schema.Sheets...)
}

func (c *Client) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return nil, eris.Wrapf(err, "sheets: open %s", c.path)
	}
	return f, nil
}

// view runs fn against a freshly opened workbook and discards it.
func (c *Client) view(fn func(f *excelize.File) error) error {
	f, err := c.open()
	if err != nil {
		return err
	}
	defer f.Close()

	return fn(f)
}

// update runs fn under the workbook lock and saves the workbook if fn
// succeeds. The save replaces the file atomically, so a failed call leaves
// the previous file untouched.
func (c *Client) update(ctx context.Context, entry journal.Entry, fn func(f *excelize.File) error) error {
	release, err := c.lock.Acquire(ctx, c.lockTimeout)
	if err != nil {
		return eris.Wrap(err, "sheets: acquire workbook lock")
	}
	defer release()

	f, err := c.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return err
	}
	if err := c.save(f); err != nil {
		return err
	}

	c.record(ctx, entry)
	return nil
}

func (c *Client) save(f *excelize.File) error {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return eris.Wrap(err, "sheets: serialise workbook")
	}
	if err := atomic.WriteFile(c.path, buf); err != nil {
		return eris.Wrapf(err, "sheets: save %s", c.path)
	}
	return nil
}

func (c *Client) record(ctx context.Context, e journal.Entry) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, e); err != nil {
		log.WithError(err).WithField("op", e.Op).Warn("Failed to journal mutation")
	}
}

func sheetExists(f *excelize.File, sheet string) bool {
	idx, err := f.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}
