package plan

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/query"
)

// GroupKeys lists the columns AggregateNode can group by
var GroupKeys = []string{"location", "ram", "hdisk", "storage", "model"}

// Group is one aggregated bucket. Price figures only cover rows whose price
// parses as a number.
type Group struct {
	Key      string
	Count    int
	MinPrice float64
	MaxPrice float64
	AvgPrice float64
}

// AggregateNode counts the rows of Input per group and summarizes their price.
// It is the root of a plan and has no row output of its own.
type AggregateNode struct {
	Input   Node
	GroupBy string
}

func (n *AggregateNode) Children() []Node {
	return []Node{n.Input}
}

func (n *AggregateNode) Explain() string {
	group := n.GroupBy
	if group == "" {
		group = "global"
	}
	return fmt.Sprintf("Aggregate(group: %s, fields: [count, min(price), max(price), avg(price)])", group)
}

// Run drains Input and returns the groups, largest first
func (n *AggregateNode) Run() ([]Group, error) {
	keyFn, err := groupKey(n.GroupBy)
	if err != nil {
		return nil, err
	}

	it, err := n.Input.Execute()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	states := make(map[string]*groupState)
	for it.Next() {
		r := it.Row().Record
		key := keyFn(r)
		s, ok := states[key]
		if !ok {
			s = &groupState{}
			states[key] = s
		}
		s.add(r)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(states))
	for key, s := range states {
		groups = append(groups, s.finalize(key))
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups, nil
}

func groupKey(name string) (func(database.Record) string, error) {
	orUnknown := func(s string, ok bool) string {
		if !ok || s == "" {
			return "unknown"
		}
		return s
	}
	switch strings.ToLower(name) {
	case "", "global":
		return func(database.Record) string { return "all" }, nil
	case "location":
		return func(r database.Record) string { return orUnknown(r.Location, true) }, nil
	case "model":
		return func(r database.Record) string { return r.Model }, nil
	case "ram":
		return func(r database.Record) string { return orUnknown(query.RAMToken(r.RAM)) }, nil
	case "hdisk", "disk":
		return func(r database.Record) string { return orUnknown(query.DiskType(r.HDD)) }, nil
	case "storage":
		return func(r database.Record) string {
			c, ok := query.ParseCapacity(r.HDD)
			if !ok {
				return "unknown"
			}
			return c.Token()
		}, nil
	default:
		return nil, fmt.Errorf("cannot group by %q, expected one of %s", name, strings.Join(GroupKeys, ", "))
	}
}

type groupState struct {
	count int
	min   minAggregator
	max   maxAggregator
	avg   avgAggregator
}

func (s *groupState) add(r database.Record) {
	s.count++
	if price, ok := ParsePrice(r.Price); ok {
		s.min.Add(price)
		s.max.Add(price)
		s.avg.Add(price)
	}
}

func (s *groupState) finalize(key string) Group {
	return Group{
		Key:      key,
		Count:    s.count,
		MinPrice: s.min.Result(),
		MaxPrice: s.max.Result(),
		AvgPrice: s.avg.Result(),
	}
}

// ParsePrice reads a price cell such as "€49.99" or "$1,049.00", ignoring
// any currency symbol.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// Aggregators

type maxAggregator struct {
	val float64
	set bool
}

func (a *maxAggregator) Add(v float64) {
	if !a.set || v > a.val {
		a.val = v
		a.set = true
	}
}

func (a *maxAggregator) Result() float64 {
	return a.val
}

type minAggregator struct {
	val float64
	set bool
}

func (a *minAggregator) Add(v float64) {
	if !a.set || v < a.val {
		a.val = v
		a.set = true
	}
}

func (a *minAggregator) Result() float64 {
	return a.val
}

type avgAggregator struct {
	sum   float64
	count int
}

func (a *avgAggregator) Add(v float64) {
	a.sum += v
	a.count++
}

func (a *avgAggregator) Result() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}
