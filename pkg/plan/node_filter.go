package plan

import (
	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/query"
)

// FilterNode drops empty rows and rows the predicate rejects
type FilterNode struct {
	Input     Node
	Predicate query.Predicate
}

func (n *FilterNode) Execute() (database.RowIterator, error) {
	inputIter, err := n.Input.Execute()
	if err != nil {
		return nil, err
	}
	return &filterIterator{source: inputIter, predicate: n.Predicate}, nil
}

func (n *FilterNode) Children() []Node {
	return []Node{n.Input}
}

func (n *FilterNode) Explain() string {
	return "Filter(predicate: " + n.Predicate.String() + ")"
}

type filterIterator struct {
	source    database.RowIterator
	predicate query.Predicate
}

func (it *filterIterator) Next() bool {
	for it.source.Next() {
		row := it.source.Row()
		if row.Empty() {
			continue
		}
		if it.predicate.Match(row.Record) {
			return true
		}
	}
	return false
}

func (it *filterIterator) Row() database.Row {
	return it.source.Row()
}

func (it *filterIterator) Error() error {
	return it.source.Error()
}

func (it *filterIterator) Close() error {
	return it.source.Close()
}
