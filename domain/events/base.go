package events

import (
	"time"

	"mediagraph/domain/core/valueobjects"
)

// Event types published by the graph store
const (
	TypeGraphCreated = "graph.created"
	TypeGraphSaved   = "graph.saved"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// GraphCreated is raised when a new, empty graph is stored
type GraphCreated struct {
	BaseEvent
	GraphID valueobjects.GraphID `json:"graph_id"`
	Name    string               `json:"name"`
}

// NewGraphCreated creates a GraphCreated event
func NewGraphCreated(graphID valueobjects.GraphID, name string, timestamp time.Time) GraphCreated {
	return GraphCreated{
		BaseEvent: BaseEvent{
			AggregateID: graphID.String(),
			EventType:   TypeGraphCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		GraphID: graphID,
		Name:    name,
	}
}

// GraphSaved is raised when a graph's content has been replaced
type GraphSaved struct {
	BaseEvent
	GraphID   valueobjects.GraphID `json:"graph_id"`
	NodeCount int                  `json:"node_count"`
	EdgeCount int                  `json:"edge_count"`
}

// NewGraphSaved creates a GraphSaved event
func NewGraphSaved(graphID valueobjects.GraphID, nodeCount, edgeCount int, timestamp time.Time) GraphSaved {
	return GraphSaved{
		BaseEvent: BaseEvent{
			AggregateID: graphID.String(),
			EventType:   TypeGraphSaved,
			Timestamp:   timestamp,
			Version:     1,
		},
		GraphID:   graphID,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}
}
