package groups

import "github.com/opst/dmcatalog/pkg/domain"

type Group struct {
	Name           string   `json:"partitionKeyGroupName"`
	ExpectedValues []string `json:"expectedPartitionValues"`
}

func ComposeGroup(g domain.PartitionKeyGroup) Group {
	values := g.ExpectedValues
	if values == nil {
		values = []string{}
	}
	return Group{Name: g.Name, ExpectedValues: values}
}

// ExpectedValues is a request body to add or remove expected partition values.
type ExpectedValues struct {
	Values []string `json:"expectedPartitionValues"`
}
