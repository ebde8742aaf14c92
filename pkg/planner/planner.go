package planner

import (
	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/plan"
	"github.com/bisegni/invscan/pkg/query"
)

// CreatePlan converts criteria into the plan of one page:
// a window scan from the start row, the compiled filter and the page limit.
// Executing it yields the records engine.Scanner.Scan returns for c.
func CreatePlan(c query.Criteria, table database.Table, chunkSize int) plan.Node {
	return &plan.LimitNode{
		Input: createFilter(c, table, chunkSize),
		Limit: c.EffectiveLimit(),
	}
}

// CreateFullPlan is CreatePlan without the page limit, for passes over every
// matching row.
func CreateFullPlan(c query.Criteria, table database.Table, chunkSize int) plan.Node {
	return createFilter(c, table, chunkSize)
}

// CreateAggregate groups every matching row by groupBy
func CreateAggregate(c query.Criteria, table database.Table, chunkSize int, groupBy string) *plan.AggregateNode {
	return &plan.AggregateNode{
		Input:   CreateFullPlan(c, table, chunkSize),
		GroupBy: groupBy,
	}
}

func createFilter(c query.Criteria, table database.Table, chunkSize int) plan.Node {
	// 1. Resolve input
	var currentNode plan.Node = &plan.WindowScanNode{
		Table:     table,
		Start:     c.StartRow(),
		ChunkSize: chunkSize,
	}

	// 2. Apply criteria. Empty rows are dropped even without any criterion.
	currentNode = &plan.FilterNode{
		Input:     currentNode,
		Predicate: query.Compile(c),
	}
	return currentNode
}
