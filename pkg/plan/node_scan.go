package plan

import (
	"fmt"

	"github.com/bisegni/invscan/pkg/database"
)

// WindowScanNode reads a table window by window from Start to the last row
type WindowScanNode struct {
	Table     database.Table
	Start     int
	ChunkSize int
}

func (n *WindowScanNode) Execute() (database.RowIterator, error) {
	total, err := n.Table.TotalRows()
	if err != nil {
		return nil, err
	}
	start := n.Start
	if start < database.FirstDataRow {
		start = database.FirstDataRow
	}
	size := n.ChunkSize
	if size < 1 {
		size = 1
	}
	return &windowScanIterator{table: n.Table, next: start, size: size, total: total}, nil
}

func (n *WindowScanNode) Children() []Node {
	return nil
}

func (n *WindowScanNode) Explain() string {
	return fmt.Sprintf("WindowScan(table: %s, start: %d, chunk: %d)", n.Table.Name(), n.Start, n.ChunkSize)
}

// windowScanIterator chains the windows of a table, opening the next one only
// when the current one is drained.
type windowScanIterator struct {
	table   database.Table
	current database.RowIterator
	next    int
	size    int
	total   int
	err     error
}

func (it *windowScanIterator) Next() bool {
	for {
		if it.err != nil {
			return false
		}
		if it.current != nil {
			if it.current.Next() {
				return true
			}
			if err := it.current.Error(); err != nil {
				it.err = err
				return false
			}
			it.current.Close()
			it.current = nil
		}
		if it.next > it.total {
			return false
		}
		w, err := it.table.Window(it.next, it.size)
		if err != nil {
			it.err = err
			return false
		}
		it.current = w
		it.next += it.size
	}
}

func (it *windowScanIterator) Row() database.Row {
	return it.current.Row()
}

func (it *windowScanIterator) Error() error {
	return it.err
}

func (it *windowScanIterator) Close() error {
	if it.current != nil {
		return it.current.Close()
	}
	return nil
}
