package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format identifies the on-disk layout of an inventory file
type Format int

const (
	FormatCSV Format = iota
	FormatTSV
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatTSV:
		return "TSV"
	case FormatXLSX:
		return "XLSX"
	default:
		return "CSV"
	}
}

// ErrUnsupportedFormat is returned for files that are neither a workbook nor delimited text
var ErrUnsupportedFormat = errors.New("unsupported inventory format")

var zipMagic = []byte("PK\x03\x04")

// Parser reads raw cell rows from a spreadsheet or delimited text file, one
// row at a time. It never holds more than the current row in memory.
// Blank lines of delimited text come back as empty rows, the way a workbook
// reports missing rows, so row numbers follow the lines of the file.
type Parser struct {
	file   *os.File
	format Format

	// Workbook state
	book *excelize.File
	rows *excelize.Rows

	// Delimited text state
	csv         *csv.Reader
	pending     []string
	pendingLine int
	lastLine    int

	row int
}

// NewParser opens filename for sequential row reading.
// The format is taken from the extension and, when the extension is unknown,
// sniffed from the first bytes of the file.
func NewParser(filename string) (*Parser, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	p := &Parser{format: format}

	if format == FormatXLSX {
		book, err := excelize.OpenFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		sheet := book.GetSheetName(book.GetActiveSheetIndex())
		rows, err := book.Rows(sheet)
		if err != nil {
			book.Close()
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		p.book = book
		p.rows = rows
		return p, nil
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	p.file = file

	br := bufio.NewReader(file)
	// Excel exports often start with a byte order mark
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}
	p.csv = csv.NewReader(br)
	p.csv.FieldsPerRecord = -1
	p.csv.LazyQuotes = true
	if format == FormatTSV {
		p.csv.Comma = '\t'
	}
	return p, nil
}

// DetectFormat resolves the format of filename
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	head := make([]byte, len(zipMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to sniff %s: %w", filename, err)
	}
	if n == len(zipMagic) && bytes.Equal(head, zipMagic) {
		return FormatXLSX, nil
	}
	if bytes.IndexByte(head[:n], 0) >= 0 {
		return 0, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
	return FormatCSV, nil
}

// Format returns the detected format
func (p *Parser) Format() Format {
	return p.format
}

// Row returns the 1-based index of the row last returned by Read or Skip
func (p *Parser) Row() int {
	return p.row
}

// Read returns the cells of the next row. It returns io.EOF after the last row.
func (p *Parser) Read() ([]string, error) {
	if p.rows != nil {
		if !p.rows.Next() {
			if err := p.rows.Error(); err != nil {
				return nil, fmt.Errorf("failed to read row %d: %w", p.row+1, err)
			}
			return nil, io.EOF
		}
		p.row++
		cells, err := p.rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", p.row, err)
		}
		return cells, nil
	}

	if p.pending == nil {
		cells, err := p.csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to parse row %d: %w", p.row+1, err)
		}
		line, _ := p.csv.FieldPos(0)
		p.pending, p.pendingLine = cells, line
	}

	p.row++
	if p.pendingLine > p.lastLine+1 {
		p.lastLine++
		return []string{}, nil
	}
	cells := p.pending
	p.pending = nil
	p.lastLine = p.pendingLine + embeddedLines(cells)
	return cells, nil
}

// embeddedLines counts the line breaks inside quoted fields
func embeddedLines(cells []string) int {
	n := 0
	for _, c := range cells {
		n += strings.Count(c, "\n")
	}
	return n
}

// Skip advances past n rows without decoding workbook cells.
// Reaching the end of the file early is not an error.
func (p *Parser) Skip(n int) error {
	for i := 0; i < n; i++ {
		if p.rows != nil {
			if !p.rows.Next() {
				return p.rows.Error()
			}
			p.row++
			continue
		}
		if _, err := p.Read(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
	return nil
}

// CountRows consumes the remaining rows and returns the index of the last one
func (p *Parser) CountRows() (int, error) {
	for {
		before := p.row
		if err := p.Skip(1); err != nil {
			return 0, err
		}
		if p.row == before {
			return p.row, nil
		}
	}
}

// Close releases the underlying file
func (p *Parser) Close() error {
	var errs []error
	if p.rows != nil {
		errs = append(errs, p.rows.Close())
	}
	if p.book != nil {
		errs = append(errs, p.book.Close())
	}
	if p.file != nil {
		errs = append(errs, p.file.Close())
	}
	return errors.Join(errs...)
}

// Spool copies r into a temporary file so that it can be reopened once per
// window. The returned path carries an extension matching the sniffed format.
// The caller removes the file.
func Spool(r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	ext := ".csv"
	if head, err := br.Peek(len(zipMagic)); err == nil && bytes.Equal(head, zipMagic) {
		ext = ".xlsx"
	}

	tmp, err := os.CreateTemp("", "invscan-stdin-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, br); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to spool input: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
