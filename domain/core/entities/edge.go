package entities

import (
	"mediagraph/domain/core/valueobjects"
)

// Edge is a directed connection between two nodes of the same document
type Edge struct {
	id           valueobjects.EdgeID
	source       valueobjects.NodeID
	target       valueobjects.NodeID
	sourceHandle *valueobjects.HandleRef
	targetHandle *valueobjects.HandleRef
	fresh        bool
}

// NewEdge creates an edge with the directional id derived from its endpoints
func NewEdge(source, target valueobjects.NodeID) Edge {
	return Edge{
		id:     valueobjects.DeriveEdgeID(source, target),
		source: source,
		target: target,
	}
}

// ReconstructEdge recreates an edge from stored data, keeping the stored id
func ReconstructEdge(id valueobjects.EdgeID, source, target valueobjects.NodeID) Edge {
	return Edge{id: id, source: source, target: target}
}

// ID returns the edge identifier
func (e Edge) ID() valueobjects.EdgeID {
	return e.id
}

// Source returns the originating node
func (e Edge) Source() valueobjects.NodeID {
	return e.source
}

// Target returns the receiving node
func (e Edge) Target() valueobjects.NodeID {
	return e.target
}

// SourceHandle returns the anchor used at the source, if recorded
func (e Edge) SourceHandle() (valueobjects.HandleRef, bool) {
	if e.sourceHandle == nil {
		return valueobjects.HandleRef{}, false
	}
	return *e.sourceHandle, true
}

// TargetHandle returns the anchor used at the target, if recorded
func (e Edge) TargetHandle() (valueobjects.HandleRef, bool) {
	if e.targetHandle == nil {
		return valueobjects.HandleRef{}, false
	}
	return *e.targetHandle, true
}

// IsFresh reports whether the edge was drawn during the current session
func (e Edge) IsFresh() bool {
	return e.fresh
}

// WithHandles returns a copy carrying the given anchor references
func (e Edge) WithHandles(source, target *valueobjects.HandleRef) Edge {
	if source != nil {
		h := *source
		e.sourceHandle = &h
	}
	if target != nil {
		h := *target
		e.targetHandle = &h
	}
	return e
}

// AsFresh returns a copy marked as drawn during this session
func (e Edge) AsFresh() Edge {
	e.fresh = true
	return e
}

// References reports whether either endpoint is the given node
func (e Edge) References(id valueobjects.NodeID) bool {
	return e.source == id || e.target == id
}
