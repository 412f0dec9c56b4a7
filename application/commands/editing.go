package commands

import (
	"fmt"
	"math"

	"mediagraph/domain/core/validators"
	"mediagraph/domain/core/valueobjects"
)

// AddMediaNodeCommand adds a media card at a sampled position.
// A command with every field blank is accepted and ignored.
type AddMediaNodeCommand struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	ImageURL string `json:"imageUrl"`
}

func (c AddMediaNodeCommand) Validate() error { return nil }

// IsEmpty reports whether the command carries no content
func (c AddMediaNodeCommand) IsEmpty() bool {
	return c.Title == "" && c.Link == "" && c.ImageURL == ""
}

// AddZoneNodeCommand adds a zone. Radius is free text, read like an
// integer prefix; anything unusable falls back to the default radius.
type AddZoneNodeCommand struct {
	Name   string `json:"name"`
	Radius string `json:"radius"`
}

func (c AddZoneNodeCommand) Validate() error { return nil }

// IsEmpty reports whether the command carries no content
func (c AddZoneNodeCommand) IsEmpty() bool {
	return c.Name == "" && c.Radius == ""
}

// MoveNodeCommand records the end of a drag
type MoveNodeCommand struct {
	ID       valueobjects.NodeID   `json:"id"`
	Position valueobjects.Position `json:"position"`
}

func (c MoveNodeCommand) Validate() error {
	if c.ID.IsZero() {
		return fmt.Errorf("node id is required")
	}
	if math.IsNaN(c.Position.X) || math.IsNaN(c.Position.Y) ||
		math.IsInf(c.Position.X, 0) || math.IsInf(c.Position.Y, 0) {
		return fmt.Errorf("position must be finite")
	}
	return nil
}

// ConnectCommand proposes an edge between two nodes
type ConnectCommand struct {
	validators.Connection
}

func (c ConnectCommand) Validate() error {
	if c.Source.IsZero() || c.Target.IsZero() {
		return fmt.Errorf("source and target are required")
	}
	return nil
}

// RemoveNodeCommand deletes a node and every edge touching it
type RemoveNodeCommand struct {
	ID valueobjects.NodeID `json:"id"`
}

func (c RemoveNodeCommand) Validate() error {
	if c.ID.IsZero() {
		return fmt.Errorf("node id is required")
	}
	return nil
}

// RemoveEdgeCommand deletes one edge
type RemoveEdgeCommand struct {
	ID valueobjects.EdgeID `json:"id"`
}

func (c RemoveEdgeCommand) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("edge id is required")
	}
	return nil
}

// SelectNodeCommand marks a node as selected
type SelectNodeCommand struct {
	ID valueobjects.NodeID `json:"id"`
}

func (c SelectNodeCommand) Validate() error {
	if c.ID.IsZero() {
		return fmt.Errorf("node id is required")
	}
	return nil
}

// ClearSelectionCommand drops the current selection
type ClearSelectionCommand struct{}

func (c ClearSelectionCommand) Validate() error { return nil }
