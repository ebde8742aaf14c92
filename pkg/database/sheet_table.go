package database

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bisegni/invscan/pkg/parser"
)

// SheetTable adapts a spreadsheet or delimited text file to the Table interface.
// Every call to Window reopens the file, so no reader state outlives a window.
type SheetTable struct {
	filename string
	name     string
	spooled  bool
}

// NewSheetTable creates a table over filename
func NewSheetTable(filename string) *SheetTable {
	base := filepath.Base(filename)
	return &SheetTable{
		filename: filename,
		name:     strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// OpenSheetTable resolves a command line argument to a table.
// "-" or an empty name reads stdin, which is spooled to a temporary file
// that Close removes.
func OpenSheetTable(filename string, stdin io.Reader) (*SheetTable, error) {
	if filename != "" && filename != "-" {
		if _, err := os.Stat(filename); err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		return NewSheetTable(filename), nil
	}

	path, err := parser.Spool(stdin)
	if err != nil {
		return nil, err
	}
	return &SheetTable{filename: path, name: "stdin", spooled: true}, nil
}

func (t *SheetTable) Name() string {
	return t.name
}

// Path returns the file backing the table
func (t *SheetTable) Path() string {
	return t.filename
}

func (t *SheetTable) TotalRows() (int, error) {
	p, err := parser.NewParser(t.filename)
	if err != nil {
		return 0, err
	}
	defer p.Close()
	return p.CountRows()
}

func (t *SheetTable) Window(start, size int) (RowIterator, error) {
	if start < 1 {
		start = 1
	}
	p, err := parser.NewParser(t.filename)
	if err != nil {
		return nil, err
	}
	if err := p.Skip(start - 1); err != nil {
		p.Close()
		return nil, err
	}
	return &windowIterator{parser: p, end: start + size}, nil
}

// Close removes the spooled copy of stdin, if any
func (t *SheetTable) Close() error {
	if t.spooled {
		return os.Remove(t.filename)
	}
	return nil
}

type windowIterator struct {
	parser  *parser.Parser
	end     int
	current Row
	err     error
}

func (it *windowIterator) Next() bool {
	if it.err != nil || it.parser.Row()+1 >= it.end {
		return false
	}
	cells, err := it.parser.Read()
	if err != nil {
		if err != io.EOF {
			it.err = err
		}
		return false
	}
	it.current = Row{Index: it.parser.Row(), Record: DecodeCells(cells)}
	return true
}

func (it *windowIterator) Row() Row {
	return it.current
}

func (it *windowIterator) Error() error {
	return it.err
}

func (it *windowIterator) Close() error {
	return it.parser.Close()
}
