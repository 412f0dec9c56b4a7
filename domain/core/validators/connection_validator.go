package validators

import (
	"mediagraph/domain/config"
	"mediagraph/domain/core/aggregates"
	"mediagraph/domain/core/entities"
	"mediagraph/domain/core/valueobjects"
)

// Connection is a proposed edge produced by a connect gesture
type Connection struct {
	Source       valueobjects.NodeID
	SourceHandle *valueobjects.HandleRef
	Target       valueobjects.NodeID
	TargetHandle *valueobjects.HandleRef
}

// Outcome describes what the validator decided for a connection
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeRejected  Outcome = "rejected"
)

// ConnectionResult carries the next document and the decision taken.
// Doc is the input document unless Outcome is OutcomeCreated.
type ConnectionResult struct {
	Doc     *aggregates.Document
	EdgeID  valueobjects.EdgeID
	Outcome Outcome
	Reason  string
}

// ConnectionValidator decides whether a proposed connection becomes an edge
type ConnectionValidator struct {
	allowSelfLoops bool
}

// NewConnectionValidator creates a validator with the default policy
func NewConnectionValidator() *ConnectionValidator {
	return NewConnectionValidatorWithConfig(config.DefaultDomainConfig())
}

// NewConnectionValidatorWithConfig creates a validator honoring the given policy
func NewConnectionValidatorWithConfig(cfg *config.DomainConfig) *ConnectionValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ConnectionValidator{allowSelfLoops: cfg.AllowSelfConnections}
}

// Connect validates the proposal against doc and inserts the edge when accepted.
//
// At most one edge may go from a source to a target, whatever its id. The new
// edge id is source + "-" + target, so the reverse direction is a distinct edge.
func (v *ConnectionValidator) Connect(doc *aggregates.Document, conn Connection) ConnectionResult {
	id := valueobjects.DeriveEdgeID(conn.Source, conn.Target)
	reject := func(reason string) ConnectionResult {
		return ConnectionResult{Doc: doc, EdgeID: id, Outcome: OutcomeRejected, Reason: reason}
	}

	if conn.Source.IsZero() || conn.Target.IsZero() {
		return reject("missing endpoint")
	}
	if conn.Source == conn.Target && !v.allowSelfLoops {
		return reject("self connections are disabled")
	}

	source, ok := doc.Node(conn.Source)
	if !ok {
		return reject("unknown source node")
	}
	target, ok := doc.Node(conn.Target)
	if !ok {
		return reject("unknown target node")
	}
	if !source.IsConnectable() || !target.IsConnectable() {
		return reject("zones cannot be connected")
	}
	if conn.SourceHandle != nil && !conn.SourceHandle.CanSource() {
		return reject("source handle does not accept outgoing connections")
	}
	if conn.TargetHandle != nil && !conn.TargetHandle.CanTarget() {
		return reject("target handle does not accept incoming connections")
	}

	if existing, ok := doc.EdgeBetween(conn.Source, conn.Target); ok {
		return ConnectionResult{Doc: doc, EdgeID: existing, Outcome: OutcomeDuplicate}
	}
	// Ids are plain concatenations, so "a-b"+"c" and "a"+"b-c" share one id.
	if doc.HasEdge(id) {
		return ConnectionResult{Doc: doc, EdgeID: id, Outcome: OutcomeDuplicate, Reason: "edge id already used by another pair"}
	}

	edge := entities.NewEdge(conn.Source, conn.Target).
		WithHandles(conn.SourceHandle, conn.TargetHandle).
		AsFresh()

	return ConnectionResult{Doc: doc.InsertEdge(edge), EdgeID: id, Outcome: OutcomeCreated}
}
