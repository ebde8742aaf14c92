package query

import (
	"fmt"
	"strings"

	"github.com/bisegni/invscan/pkg/database"
)

// DefaultLimit is the page size used when a request does not set one
const DefaultLimit = 30

// Criteria is a caller supplied filter. Empty strings mean "no constraint".
type Criteria struct {
	// Storage is an exact capacity token ("4TB") or a range "min-max" ("1TB-4TB").
	Storage string
	// RAM is one value or a comma separated set ("16GB,32GB,64GB").
	RAM string
	// HDisk is the disk type token (SAS, SATA, SATA2, SSD).
	HDisk string
	// Location must equal the Location cell exactly.
	Location string

	// Limit caps the number of records per page; <= 0 selects DefaultLimit.
	Limit int
	// Offset is the row at which to begin or resume; <= 1 selects the first data row.
	Offset int
}

// EffectiveLimit returns the page size to apply
func (c Criteria) EffectiveLimit() int {
	if c.Limit <= 0 {
		return DefaultLimit
	}
	return c.Limit
}

// StartRow returns the source row where scanning begins. The header row is
// never part of a scan.
func (c Criteria) StartRow() int {
	if c.Offset < database.FirstDataRow {
		return database.FirstDataRow
	}
	return c.Offset
}

// Empty reports whether no field criterion is set
func (c Criteria) Empty() bool {
	return c.Storage == "" && c.RAM == "" && c.HDisk == "" && c.Location == ""
}

func (c Criteria) String() string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", k, v))
		}
	}
	add("storage", c.Storage)
	add("ram", c.RAM)
	add("hdisk", c.HDisk)
	add("location", c.Location)
	parts = append(parts, fmt.Sprintf("limit=%d", c.EffectiveLimit()), fmt.Sprintf("offset=%d", c.StartRow()))
	return strings.Join(parts, " ")
}
