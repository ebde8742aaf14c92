package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// storagePattern splits an HDD cell such as "4x480GBSSD" into the
	// multiplicand list, the unit and the disk type.
	storagePattern = regexp.MustCompile(`^(\d+.*?)(GB|TB)(.*)`)
	boundPattern   = regexp.MustCompile(`^(\d+)(GB|TB)`)
	ramPattern     = regexp.MustCompile(`^(\d+GB)`)
)

const gbPerTB = 1024

// Capacity is the structured form of an HDD cell
type Capacity struct {
	Multiplicands []float64
	// Size is the product of the multiplicands, in Unit.
	Size float64
	Unit string
	// Type is whatever follows the unit, e.g. "SATA2".
	Type string
}

// ParseCapacity extracts the capacity from a raw HDD cell.
// It returns false when the cell has no GB/TB unit or a multiplicand is not a number.
func ParseCapacity(hdd string) (Capacity, bool) {
	m := storagePattern.FindStringSubmatch(hdd)
	if m == nil {
		return Capacity{}, false
	}

	c := Capacity{Size: 1, Unit: m[2], Type: m[3]}
	for _, part := range strings.Split(m[1], "x") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Capacity{}, false
		}
		c.Multiplicands = append(c.Multiplicands, v)
		c.Size *= v
	}
	return c, true
}

// Token renders the capacity as "<number><unit>", e.g. "8TB"
func (c Capacity) Token() string {
	return formatNumber(c.Size) + c.Unit
}

// GB returns the capacity converted to gigabytes
func (c Capacity) GB() float64 {
	return toGB(c.Size, c.Unit)
}

// parseBound reads a range bound such as "500GB" as gigabytes
func parseBound(s string) (float64, bool) {
	m := boundPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return toGB(n, m[2]), true
}

// RAMToken extracts the leading "<n>GB" of a RAM cell, ignoring the memory type
func RAMToken(ram string) (string, bool) {
	m := ramPattern.FindStringSubmatch(ram)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DiskType returns the text after the unit of an HDD cell, e.g. "SATA2"
func DiskType(hdd string) (string, bool) {
	m := storagePattern.FindStringSubmatch(hdd)
	if m == nil {
		return "", false
	}
	return m[3], true
}

func toGB(n float64, unit string) float64 {
	if unit == "TB" {
		return n * gbPerTB
	}
	return n
}

// formatNumber prints integral values without a fraction and trims float noise
// from products like 3x1.2.
func formatNumber(v float64) string {
	v = math.Round(v*1e6) / 1e6
	return strconv.FormatFloat(v, 'f', -1, 64)
}
