package queries

import (
	"errors"

	"mediagraph/domain/core/valueobjects"
)

// GetGraphQuery fetches one graph with its content
type GetGraphQuery struct {
	GraphID valueobjects.GraphID
}

// Validate validates the query
func (q GetGraphQuery) Validate() error {
	if q.GraphID.IsZero() {
		return errors.New("graph id is required")
	}
	return nil
}

// ListGraphsQuery lists every graph in creation order
type ListGraphsQuery struct{}

// Validate validates the query
func (q ListGraphsQuery) Validate() error {
	return nil
}
