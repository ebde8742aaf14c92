package plan

import (
	"fmt"

	"github.com/bisegni/invscan/pkg/database"
)

// LimitNode stops after Limit rows. It yields the records of one page but no
// resume cursor; paging goes through engine.Scanner.
type LimitNode struct {
	Input Node
	Limit int
}

func (n *LimitNode) Execute() (database.RowIterator, error) {
	inputIter, err := n.Input.Execute()
	if err != nil {
		return nil, err
	}
	return &limitIterator{source: inputIter, remaining: n.Limit}, nil
}

func (n *LimitNode) Children() []Node {
	return []Node{n.Input}
}

func (n *LimitNode) Explain() string {
	return fmt.Sprintf("Limit(count: %d)", n.Limit)
}

type limitIterator struct {
	source    database.RowIterator
	remaining int
}

func (it *limitIterator) Next() bool {
	if it.remaining <= 0 {
		return false
	}
	if !it.source.Next() {
		return false
	}
	it.remaining--
	return true
}

func (it *limitIterator) Row() database.Row {
	return it.source.Row()
}

func (it *limitIterator) Error() error {
	return it.source.Error()
}

func (it *limitIterator) Close() error {
	return it.source.Close()
}
