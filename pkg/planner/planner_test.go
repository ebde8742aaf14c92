package planner_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/engine"
	"github.com/bisegni/invscan/pkg/logger"
	"github.com/bisegni/invscan/pkg/plan"
	"github.com/bisegni/invscan/pkg/planner"
	"github.com/bisegni/invscan/pkg/query"
)

// Mock Table
type MockTable struct {
	rows    [][]string // rows[0] is the header
	windows int
	err     error
}

func (m *MockTable) Name() string { return "mock" }

func (m *MockTable) TotalRows() (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.rows), nil
}

func (m *MockTable) Window(start, size int) (database.RowIterator, error) {
	m.windows++
	return &MockIterator{rows: m.rows, next: start, end: start + size}, nil
}

type MockIterator struct {
	rows    [][]string
	next    int
	end     int
	current database.Row
}

func (it *MockIterator) Next() bool {
	if it.next >= it.end || it.next > len(it.rows) {
		return false
	}
	it.current = database.Row{Index: it.next, Record: database.DecodeCells(it.rows[it.next-1])}
	it.next++
	return true
}
func (it *MockIterator) Row() database.Row { return it.current }
func (it *MockIterator) Error() error      { return nil }
func (it *MockIterator) Close() error      { return nil }

func inventory() *MockTable {
	return &MockTable{rows: [][]string{
		{"Model", "RAM", "HDD", "Location", "Price"},
		{"Dell R210Intel Xeon X3440", "16GBDDR3", "2x2TBSATA2", "AmsterdamAMS-01", "€49.99"},
		{"HP DL180G62x Intel Xeon E5620", "32GBDDR3", "8x2TBSATA2", "AmsterdamAMS-01", "€119.00"},
		{},
		{"RH2288v32x Intel Xeon E5-2650V4", "128GBDDR4", "4x480GBSSD", "AmsterdamAMS-01", "€227.99"},
		{"Dell R210-IIIntel Xeon E3-1230v2", "16GBDDR3", "2x2TBSATA2", "FrankfurtABC-01", "€72.99"},
		{"Dell R730XD2x Intel Xeon E5-2667v4", "128GBDDR4", "2x120GBSSD", "SingaporeSIN-01", "€364.99"},
		{"HP DL120G7Intel G850", "4GBDDR3", "4x1TBSATA2", "AmsterdamAMS-01", "€39.99"},
	}}
}

func drain(t *testing.T, n plan.Node) []string {
	t.Helper()
	iter, err := n.Execute()
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	defer iter.Close()

	var models []string
	for iter.Next() {
		models = append(models, iter.Row().Record.Model)
	}
	if err := iter.Error(); err != nil {
		t.Fatalf("Iteration failed: %v", err)
	}
	return models
}

func TestCreatePlan(t *testing.T) {
	tests := []struct {
		name     string
		criteria query.Criteria
		chunk    int
		expected []string
	}{
		{
			name:     "No criteria drops empty rows",
			criteria: query.Criteria{},
			chunk:    3,
			expected: []string{
				"Dell R210Intel Xeon X3440",
				"HP DL180G62x Intel Xeon E5620",
				"RH2288v32x Intel Xeon E5-2650V4",
				"Dell R210-IIIntel Xeon E3-1230v2",
				"Dell R730XD2x Intel Xeon E5-2667v4",
				"HP DL120G7Intel G850",
			},
		},
		{
			name:     "Limit",
			criteria: query.Criteria{Limit: 2},
			chunk:    1,
			expected: []string{"Dell R210Intel Xeon X3440", "HP DL180G62x Intel Xeon E5620"},
		},
		{
			name:     "Filter",
			criteria: query.Criteria{HDisk: "SSD"},
			chunk:    200,
			expected: []string{"RH2288v32x Intel Xeon E5-2650V4", "Dell R730XD2x Intel Xeon E5-2667v4"},
		},
		{
			name:     "Offset",
			criteria: query.Criteria{Storage: "4TB", Offset: 3},
			chunk:    2,
			expected: []string{"Dell R210-IIIntel Xeon E3-1230v2", "HP DL120G7Intel G850"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := planner.CreatePlan(tt.criteria, inventory(), tt.chunk)
			results := drain(t, p)

			if strings.Join(results, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("Expected %v, got %v", tt.expected, results)
			}
		})
	}
}

func TestWindowScanOpensWindowsLazily(t *testing.T) {
	table := inventory()
	p := planner.CreatePlan(query.Criteria{Limit: 1}, table, 2)
	drain(t, p)
	if table.windows != 1 {
		t.Errorf("Expected 1 window, got %d", table.windows)
	}

	table = inventory()
	drain(t, planner.CreateFullPlan(query.Criteria{}, table, 2))
	if table.windows != 4 {
		t.Errorf("Expected 4 windows, got %d", table.windows)
	}
}

func TestExplain(t *testing.T) {
	p := planner.CreatePlan(query.Criteria{RAM: "64GB", HDisk: "SSD", Limit: 5}, inventory(), 200)

	expected := "└─ Limit(count: 5)\n" +
		"   └─ Filter(predicate: ram=\"64GB\" AND hdisk=\"SSD\")\n" +
		"      └─ WindowScan(table: mock, start: 2, chunk: 200)\n"
	if got := plan.FormatPlan(p); got != expected {
		t.Errorf("Unexpected plan:\n%s\nwant:\n%s", got, expected)
	}

	agg := planner.CreateAggregate(query.Criteria{}, inventory(), 200, "ram")
	if !strings.HasPrefix(plan.FormatPlan(agg), "└─ Aggregate(group: ram,") {
		t.Errorf("Unexpected aggregate plan:\n%s", plan.FormatPlan(agg))
	}
	if !strings.Contains(plan.FormatPlan(agg), "Filter(predicate: true)") {
		t.Errorf("Expected empty filter in plan:\n%s", plan.FormatPlan(agg))
	}
}

func TestAggregate(t *testing.T) {
	groups, err := planner.CreateAggregate(query.Criteria{}, inventory(), 2, "location").Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups, got %v", groups)
	}
	ams := groups[0]
	if ams.Key != "AmsterdamAMS-01" || ams.Count != 4 {
		t.Errorf("Unexpected first group %+v", ams)
	}
	if ams.MinPrice != 39.99 || ams.MaxPrice != 227.99 {
		t.Errorf("Unexpected price range %+v", ams)
	}
	if groups[1].Key != "FrankfurtABC-01" || groups[2].Key != "SingaporeSIN-01" {
		t.Errorf("Expected ties sorted by key, got %v", groups)
	}

	groups, err = planner.CreateAggregate(query.Criteria{Location: "AmsterdamAMS-01"}, inventory(), 200, "storage").Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	counts := map[string]int{}
	for _, g := range groups {
		counts[g.Key] = g.Count
	}
	want := map[string]int{"4TB": 2, "16TB": 1, "1920GB": 1}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("Expected %d rows with %s, got %d (%v)", v, k, counts[k], groups)
		}
	}

	groups, err = planner.CreateAggregate(query.Criteria{}, inventory(), 200, "").Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Key != "all" || groups[0].Count != 6 {
		t.Errorf("Unexpected global group %v", groups)
	}

	if _, err := planner.CreateAggregate(query.Criteria{}, inventory(), 200, "price").Run(); err == nil {
		t.Error("Expected error for unknown group key")
	}
}

func TestPlanMatchesScanner(t *testing.T) {
	criteria := []query.Criteria{
		{},
		{Limit: 2},
		{Limit: 1, Offset: 4},
		{HDisk: "SSD", Limit: 1},
		{Storage: "1TB-", Location: "AmsterdamAMS-01"},
		{RAM: "16GB,128GB", Limit: 3},
		{Location: "Nowhere"},
	}
	for _, c := range criteria {
		for _, chunk := range []int{1, 3, 200} {
			scanner := engine.NewScanner(engine.WithChunkSize(chunk), engine.WithLogger(logger.Discard()))
			page, err := scanner.Scan(inventory(), c)
			if err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			var want []string
			for _, r := range page.Records {
				want = append(want, r.Model)
			}

			got := drain(t, planner.CreatePlan(c, inventory(), chunk))
			if strings.Join(got, "|") != strings.Join(want, "|") {
				t.Errorf("%+v chunk %d: plan returned %v, scanner %v", c, chunk, got, want)
			}
		}
	}
}

func TestExecuteError(t *testing.T) {
	table := &MockTable{err: errors.New("boom")}
	if _, err := planner.CreatePlan(query.Criteria{}, table, 10).Execute(); err == nil {
		t.Error("Expected error from TotalRows")
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"€49.99", 49.99, true},
		{"$1,049.00", 1049, true},
		{"120", 120, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := plan.ParsePrice(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
