package plan

import (
	"github.com/bisegni/invscan/pkg/database"
)

// Explainer is anything FormatPlan can render
type Explainer interface {
	Children() []Node
	Explain() string
}

// Node represents an execution node in the scan plan
type Node interface {
	Explainer
	Execute() (database.RowIterator, error)
}
