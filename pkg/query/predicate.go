package query

import (
	"fmt"
	"strings"

	"github.com/bisegni/invscan/pkg/database"
)

// Predicate decides whether a record passes a filter
type Predicate interface {
	Match(r database.Record) bool
	String() string
}

// MatchStorage evaluates a storage criterion against a raw HDD cell.
// An exact criterion compares "<capacity><unit>" literally, so "4000GB" never
// equals "4TB". A "min-max" criterion compares in GB with both bounds inclusive;
// an empty side such as "100GB-" leaves that end open.
func MatchStorage(hdd, criterion string) bool {
	if criterion == "" {
		return true
	}
	c, ok := ParseCapacity(hdd)
	if !ok {
		return false
	}

	minVal, maxVal, isRange := strings.Cut(criterion, "-")
	if !isRange {
		return c.Token() == criterion
	}

	// An empty side leaves that end of the range open.
	gb := c.GB()
	if strings.TrimSpace(minVal) != "" {
		lo, ok := parseBound(minVal)
		if !ok || gb < lo {
			return false
		}
	}
	if strings.TrimSpace(maxVal) != "" {
		hi, ok := parseBound(maxVal)
		if !ok || gb > hi {
			return false
		}
	}
	return true
}

// MatchDisk compares the disk type that trails the capacity in an HDD cell
func MatchDisk(hdd, criterion string) bool {
	if criterion == "" {
		return true
	}
	t, ok := DiskType(hdd)
	return ok && t == criterion
}

// MatchRAM compares the leading "<n>GB" token of a RAM cell against one value
// or a comma separated set of values.
func MatchRAM(ram, criterion string) bool {
	if criterion == "" {
		return true
	}
	token, ok := RAMToken(ram)
	if !ok {
		return false
	}
	for _, want := range strings.Split(criterion, ",") {
		if strings.TrimSpace(want) == token {
			return true
		}
	}
	return false
}

// MatchLocation is a case-sensitive full string comparison
func MatchLocation(location, criterion string) bool {
	return criterion == "" || location == criterion
}

// FieldPredicate applies one match function to one column
type FieldPredicate struct {
	Column    string
	Criterion string
	field     func(database.Record) string
	match     func(field, criterion string) bool
}

func (p *FieldPredicate) Match(r database.Record) bool {
	return p.match(p.field(r), p.Criterion)
}

func (p *FieldPredicate) String() string {
	return fmt.Sprintf("%s=%q", p.Column, p.Criterion)
}

// AllOf accepts a record only if every predicate does. Evaluation stops at the
// first rejection.
type AllOf []Predicate

func (a AllOf) Match(r database.Record) bool {
	for _, p := range a {
		if !p.Match(r) {
			return false
		}
	}
	return true
}

func (a AllOf) String() string {
	if len(a) == 0 {
		return "true"
	}
	parts := make([]string, len(a))
	for i, p := range a {
		parts[i] = p.String()
	}
	return strings.Join(parts, " AND ")
}

// Compile turns criteria into a predicate. Active criteria are checked in
// column order: RAM, storage, disk type, location.
func Compile(c Criteria) AllOf {
	var preds AllOf
	if c.RAM != "" {
		preds = append(preds, &FieldPredicate{
			Column: "ram", Criterion: c.RAM,
			field: func(r database.Record) string { return r.RAM },
			match: MatchRAM,
		})
	}
	if c.Storage != "" {
		preds = append(preds, &FieldPredicate{
			Column: "storage", Criterion: c.Storage,
			field: func(r database.Record) string { return r.HDD },
			match: MatchStorage,
		})
	}
	if c.HDisk != "" {
		preds = append(preds, &FieldPredicate{
			Column: "hdisk", Criterion: c.HDisk,
			field: func(r database.Record) string { return r.HDD },
			match: MatchDisk,
		})
	}
	if c.Location != "" {
		preds = append(preds, &FieldPredicate{
			Column: "location", Criterion: c.Location,
			field: func(r database.Record) string { return r.Location },
			match: MatchLocation,
		})
	}
	return preds
}
