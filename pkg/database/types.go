package database

import "errors"

// Columns lists the recognized source columns, A through E, in order.
// Anything to the right of Price is never decoded.
var Columns = []string{"Model", "RAM", "HDD", "Location", "Price"}

// FirstDataRow is the first source row after the header
const FirstDataRow = 2

// ErrTableNotFound is returned by the catalog for unknown names
var ErrTableNotFound = errors.New("table not found")

// Record is one inventory row as displayed in the source: quantity, capacity
// and disk type are still combined in HDD.
type Record struct {
	Model    string
	RAM      string
	HDD      string
	Location string
	Price    string
}

// Fields returns the record values in column order
func (r Record) Fields() []string {
	return []string{r.Model, r.RAM, r.HDD, r.Location, r.Price}
}

// OrderedMap returns the wire form of the record. Keys follow column order and
// stop at the first absent field.
func (r Record) OrderedMap() OrderedMap {
	om := make(OrderedMap, 0, len(Columns))
	for i, v := range r.Fields() {
		if v == "" {
			break
		}
		om = append(om, KeyVal{Key: Columns[i], Val: v})
	}
	return om
}

// RecordFromMap is the inverse of OrderedMap
func RecordFromMap(om OrderedMap) Record {
	var fields [5]string
	for i, col := range Columns {
		if v, ok := om.Get(col); ok {
			if s, ok := v.(string); ok {
				fields[i] = s
			}
		}
	}
	return Record{Model: fields[0], RAM: fields[1], HDD: fields[2], Location: fields[3], Price: fields[4]}
}

// DecodeCells builds a record from raw cells. Decoding stops at the first
// empty cell: that field and every later one are absent.
func DecodeCells(cells []string) Record {
	var fields [5]string
	for i := 0; i < len(fields) && i < len(cells); i++ {
		if cells[i] == "" {
			break
		}
		fields[i] = cells[i]
	}
	return Record{Model: fields[0], RAM: fields[1], HDD: fields[2], Location: fields[3], Price: fields[4]}
}

// Row is one source row inside a window
type Row struct {
	// Index is the 1-based row number in the source, header included.
	Index  int
	Record Record
}

// Empty reports whether the row carries no record (empty Model cell)
func (r Row) Empty() bool {
	return r.Record.Model == ""
}

// RowIterator allows iterating over the rows of one window.
type RowIterator interface {
	// Next advances the iterator. Returns false if no more rows or error.
	Next() bool
	// Row returns the current row.
	Row() Row
	// Error returns any error that occurred during iteration.
	Error() error
	// Close releases resources.
	Close() error
}

// Table represents an inventory source that can be scanned window by window.
type Table interface {
	// Name identifies the table in logs and plans.
	Name() string
	// TotalRows returns the number of source rows, header included.
	TotalRows() (int, error)
	// Window returns an iterator over rows [start, start+size).
	Window(start, size int) (RowIterator, error)
}
