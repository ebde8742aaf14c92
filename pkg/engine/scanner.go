package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/metrics"
	"github.com/bisegni/invscan/pkg/query"
)

// DefaultChunkSize is the number of source rows decoded per window
const DefaultChunkSize = 200

// ErrSourceUnreadable wraps every open or decode failure. A scan that returns
// it produced no page.
var ErrSourceUnreadable = errors.New("source unreadable")

// Phase is the state of one scan call
type Phase int

const (
	Scanning Phase = iota
	LimitReached
	Exhausted
)

func (p Phase) String() string {
	switch p {
	case LimitReached:
		return "limit_reached"
	case Exhausted:
		return "exhausted"
	default:
		return "scanning"
	}
}

// ScanState is the progress of a scan, threaded through one window at a time
type ScanState struct {
	// StartRow is the first row of the next window to load.
	StartRow int
	// RowIndex is the last source row examined.
	RowIndex int
	Matched  []database.Record
	Count    int
	Phase    Phase
}

// Option configures a Scanner
type Option func(*Scanner)

// WithChunkSize sets the window size. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithLogger sets the logger used for window level debug output
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scanner filters a table window by window and returns one page per call.
// A Scanner holds no per-scan state and may be shared.
type Scanner struct {
	chunkSize int
	logger    *slog.Logger
}

func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		chunkSize: DefaultChunkSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChunkSize returns the configured window size
func (s *Scanner) ChunkSize() int {
	return s.chunkSize
}

// Scan returns the matches of c starting at c.StartRow(), at most
// c.EffectiveLimit() of them, and the cursor to resume from.
func (s *Scanner) Scan(table database.Table, c query.Criteria) (*Page, error) {
	started := time.Now()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(started).Seconds())
	}()

	total, err := table.TotalRows()
	if err != nil {
		metrics.ScansTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, table.Name(), err)
	}

	pred := query.Compile(c)
	limit := c.EffectiveLimit()
	state := ScanState{StartRow: c.StartRow()}

	for state.Phase == Scanning {
		if state.StartRow > total {
			state.Phase = Exhausted
			break
		}
		state, err = s.step(table, state, pred, limit)
		if err != nil {
			metrics.ScansTotal.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, table.Name(), err)
		}
	}

	metrics.ScansTotal.WithLabelValues(state.Phase.String()).Inc()
	metrics.RowsMatched.Add(float64(state.Count))
	s.logger.Debug("scan finished",
		"table", table.Name(),
		"phase", state.Phase.String(),
		"matched", state.Count,
		"rowIndex", state.RowIndex,
		"startrow", state.StartRow)

	return &Page{
		Records: state.Matched,
		Cursor:  Cursor{RowIndex: state.RowIndex, StartRow: state.StartRow},
		Phase:   state.Phase,
	}, nil
}

// step scans the window beginning at state.StartRow. It either moves to the
// next window or stops in LimitReached on the first match past the limit.
// That match is not kept; StartRow is moved onto it so that a later call
// with offset = StartRow returns it first.
func (s *Scanner) step(table database.Table, state ScanState, pred query.Predicate, limit int) (ScanState, error) {
	it, err := table.Window(state.StartRow, s.chunkSize)
	if err != nil {
		return state, err
	}
	defer it.Close()

	metrics.WindowsLoaded.Inc()
	s.logger.Debug("window loaded", "table", table.Name(), "start", state.StartRow, "size", s.chunkSize)

	examined := 0
	defer func() { metrics.RowsExamined.Add(float64(examined)) }()

	for it.Next() {
		row := it.Row()
		state.RowIndex = row.Index
		examined++

		if row.Empty() || !pred.Match(row.Record) {
			continue
		}
		if state.Count >= limit {
			state.Phase = LimitReached
			state.StartRow = row.Index
			return state, nil
		}
		state.Matched = append(state.Matched, row.Record)
		state.Count++
	}
	if err := it.Error(); err != nil {
		return state, err
	}

	state.StartRow += s.chunkSize
	return state, nil
}

// Walk calls fn with successive pages of c, following each cursor, until the
// source is exhausted or fn returns an error.
func (s *Scanner) Walk(table database.Table, c query.Criteria, fn func(*Page) error) error {
	for {
		page, err := s.Scan(table, c)
		if err != nil {
			return err
		}
		if err := fn(page); err != nil {
			return err
		}
		if page.Done() {
			return nil
		}
		c.Offset = page.Cursor.StartRow
	}
}

// ScanAll concatenates every page of c. The returned cursor is the one of the
// last page.
func (s *Scanner) ScanAll(table database.Table, c query.Criteria) (*Page, error) {
	all := &Page{}
	err := s.Walk(table, c, func(p *Page) error {
		all.Records = append(all.Records, p.Records...)
		all.Cursor = p.Cursor
		all.Phase = p.Phase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}
