package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/engine"
)

// writePage writes a page in the wire format, as one array or one element per line
func writePage(w io.Writer, page *engine.Page, format string, pretty bool) error {
	switch strings.ToLower(format) {
	case "", "json":
		return engine.WriteJSON(w, page, pretty)
	case "jsonl":
		return engine.WriteJSONL(w, page)
	default:
		return fmt.Errorf("unsupported output format %q (json or jsonl)", format)
	}
}

// writeRecords writes bare records without cursor trailers
func writeRecords(w io.Writer, records []database.OrderedMap, format string, pretty bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	switch strings.ToLower(format) {
	case "jsonl":
		for _, r := range records {
			if err := encoder.Encode(r); err != nil {
				return err
			}
		}
		return nil
	case "", "json":
		if pretty {
			encoder.SetIndent("", "  ")
		}
		if records == nil {
			records = []database.OrderedMap{}
		}
		return encoder.Encode(records)
	default:
		return fmt.Errorf("unsupported output format %q (json or jsonl)", format)
	}
}
