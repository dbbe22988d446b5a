package domain

import (
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

// ParentLookup returns parents of the Data.
type ParentLookup func(DataKey) ([]DataKey, error)

// CheckLineage verifies that adding edges child -> parents keeps the lineage graph acyclic.
//
// It returns CyclicLineage error when a parent is the child itself or depends on the child.
// Errors from parentsOf are returned as they are.
func CheckLineage(child DataKey, parents []DataKey, parentsOf ParentLookup) error {
	for _, p := range parents {
		if p == child {
			return domerr.CyclicLineage{Child: child.String(), Parent: p.String()}
		}
	}

	visited := map[DataKey]struct{}{}
	for _, p := range parents {
		queue := []DataKey{p}
		for len(queue) != 0 {
			head := queue[0]
			queue = queue[1:]
			if _, ok := visited[head]; ok {
				continue
			}
			visited[head] = struct{}{}

			ancestors, err := parentsOf(head)
			if err != nil {
				return err
			}
			for _, a := range ancestors {
				if a == child {
					return domerr.CyclicLineage{Child: child.String(), Parent: p.String()}
				}
				queue = append(queue, a)
			}
		}
	}
	return nil
}
