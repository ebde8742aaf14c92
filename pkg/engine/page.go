package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/bisegni/invscan/pkg/database"
)

// Cursor is where a scan stopped. Passing StartRow back as the next offset
// continues the scan.
type Cursor struct {
	RowIndex int
	StartRow int
}

// Page is the result of one scan call
type Page struct {
	Records []database.Record
	Cursor  Cursor
	// Phase is not part of the wire format.
	Phase Phase
}

// Done reports whether following the cursor can yield more matches
func (p *Page) Done() bool {
	return p.Phase != LimitReached
}

// Elements returns the wire elements: one object per record followed by the
// {"rowIndex": n} and {"startrow": n} trailers.
func (p *Page) Elements() []database.OrderedMap {
	out := make([]database.OrderedMap, 0, len(p.Records)+2)
	for _, r := range p.Records {
		out = append(out, r.OrderedMap())
	}
	return append(out,
		database.OrderedMap{{Key: "rowIndex", Val: p.Cursor.RowIndex}},
		database.OrderedMap{{Key: "startrow", Val: p.Cursor.StartRow}},
	)
}

// MarshalJSON implements the json.Marshaler interface
func (p *Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Elements())
}

// ParsePage reads the wire format back into a page
func ParsePage(data []byte) (*Page, error) {
	var elems []database.OrderedMap
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	if len(elems) < 2 {
		return nil, fmt.Errorf("page has %d elements, want at least the two cursor trailers", len(elems))
	}

	n := len(elems)
	rowIndex, err := trailer(elems[n-2], "rowIndex")
	if err != nil {
		return nil, err
	}
	startRow, err := trailer(elems[n-1], "startrow")
	if err != nil {
		return nil, err
	}

	page := &Page{Cursor: Cursor{RowIndex: rowIndex, StartRow: startRow}}
	for _, om := range elems[:n-2] {
		page.Records = append(page.Records, database.RecordFromMap(om))
	}
	return page, nil
}

func trailer(om database.OrderedMap, key string) (int, error) {
	v, ok := om.Get(key)
	if !ok || len(om) != 1 {
		return 0, fmt.Errorf("expected {%q: n} trailer, got %s", key, om)
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("trailer %q is not a number", key)
	}
	n, err := strconv.Atoi(num.String())
	if err != nil {
		return 0, fmt.Errorf("trailer %q: %w", key, err)
	}
	return n, nil
}

// WriteJSON writes the page as a single JSON array
func WriteJSON(w io.Writer, p *Page, pretty bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(p.Elements())
}

// WriteJSONL writes one wire element per line
func WriteJSONL(w io.Writer, p *Page) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for _, elem := range p.Elements() {
		if err := encoder.Encode(elem); err != nil {
			return err
		}
	}
	return nil
}
