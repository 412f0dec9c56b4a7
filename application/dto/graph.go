// Package dto holds the wire shapes exchanged with the graph store.
package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"mediagraph/domain/core/aggregates"
	"mediagraph/domain/core/entities"
	"mediagraph/domain/core/valueobjects"
)

// Kinds accepted on the wire. "resizable" is how older stored graphs tag media cards.
const (
	KindMedia       = string(entities.KindMedia)
	KindZone        = string(entities.KindZone)
	legacyKindMedia = "resizable"
)

// Number decodes a JSON number, a numeric string or null.
// Anything unparsable decodes as zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// ID is a graph identifier on the wire. Older stores use integer keys, so
// a JSON number decodes to its decimal text.
type ID string

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// NodeData is the flat payload bag of a node. Media cards use title, link and
// imageUrl; zones use name and radius.
type NodeData struct {
	Title          string `json:"title,omitempty"`
	Link           string `json:"link,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`
	LegacyImageURL string `json:"image_url,omitempty"`
	Name           string `json:"name,omitempty"`
	Radius         Number `json:"radius,omitempty"`
}

// Node is the persisted form of a node
type Node struct {
	ID         string                `json:"id" validate:"required"`
	Kind       string                `json:"kind,omitempty" validate:"omitempty,oneof=media zone resizable"`
	LegacyType string                `json:"type,omitempty" validate:"omitempty,oneof=media zone resizable"`
	Data       NodeData              `json:"data"`
	Position   valueobjects.Position `json:"position"`
	StackHint  int                   `json:"stackHint"`
}

// ResolvedKind maps legacy tags onto the current kinds. Unknown tags resolve to "".
func (n Node) ResolvedKind() string {
	kind := n.Kind
	if kind == "" {
		kind = n.LegacyType
	}
	switch kind {
	case KindMedia, legacyKindMedia:
		return KindMedia
	case KindZone:
		return KindZone
	default:
		return ""
	}
}

// Edge is the persisted form of an edge. Handles and styling are never stored.
type Edge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// GraphSummary identifies a stored graph
type GraphSummary struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// GraphDocument is a stored graph with its content
type GraphDocument struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// CreateGraphRequest is the body of POST /graph/create
type CreateGraphRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateGraphResponse is returned after a graph is created
type CreateGraphResponse = GraphSummary

// ReplaceGraphRequest is the body of PUT /graph/{id}
type ReplaceGraphRequest struct {
	Nodes []Node `json:"nodes" validate:"dive"`
	Edges []Edge `json:"edges" validate:"dive"`
}

// ReplaceGraphResponse acknowledges a replace
type ReplaceGraphResponse struct {
	ID        ID     `json:"id"`
	UpdatedAt string `json:"updatedAt"`
}

// NodeFromDomain converts a domain node to its persisted form
func NodeFromDomain(n entities.Node) Node {
	out := Node{
		ID:        n.ID().String(),
		Kind:      string(n.Kind()),
		Position:  n.Position(),
		StackHint: n.Z(),
	}
	if m, ok := n.Media(); ok {
		out.Data = NodeData{Title: m.Title, Link: m.Link, ImageURL: m.ImageURL}
	}
	if z, ok := n.Zone(); ok {
		out.Data = NodeData{Name: z.Name, Radius: Number(z.Radius)}
	}
	return out
}

// ToDomain converts a persisted node. ok is false when the node has no id or
// an unknown kind. Stacking order is derived from the kind.
func (n Node) ToDomain() (entities.Node, bool) {
	if n.ID == "" {
		return entities.Node{}, false
	}
	id := valueobjects.NodeID(n.ID)
	switch n.ResolvedKind() {
	case KindMedia:
		image := n.Data.ImageURL
		if image == "" {
			image = n.Data.LegacyImageURL
		}
		return entities.NewMediaNode(id, entities.MediaPayload{
			Title:    n.Data.Title,
			Link:     n.Data.Link,
			ImageURL: image,
		}, n.Position), true
	case KindZone:
		return entities.NewZoneNode(id, entities.ZonePayload{
			Name:   n.Data.Name,
			Radius: float64(n.Data.Radius),
		}, n.Position), true
	default:
		return entities.Node{}, false
	}
}

// EdgeFromDomain converts a domain edge to its persisted form, dropping handles
func EdgeFromDomain(e entities.Edge) Edge {
	return Edge{ID: e.ID().String(), Source: e.Source().String(), Target: e.Target().String()}
}

// ToDomain converts a persisted edge. A missing id is derived from the endpoints.
func (e Edge) ToDomain() entities.Edge {
	source := valueobjects.NodeID(e.Source)
	target := valueobjects.NodeID(e.Target)
	if e.ID == "" {
		return entities.NewEdge(source, target)
	}
	return entities.ReconstructEdge(valueobjects.EdgeID(e.ID), source, target)
}

// NodesToDomain converts persisted nodes, skipping the ones that cannot be represented
func NodesToDomain(nodes []Node) []entities.Node {
	out := make([]entities.Node, 0, len(nodes))
	for _, n := range nodes {
		if node, ok := n.ToDomain(); ok {
			out = append(out, node)
		}
	}
	return out
}

// EdgesToDomain converts persisted edges
func EdgesToDomain(edges []Edge) []entities.Edge {
	out := make([]entities.Edge, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.ToDomain())
	}
	return out
}

// FromDocument builds the save payload of a document
func FromDocument(doc *aggregates.Document) GraphDocument {
	nodes := doc.Nodes()
	edges := doc.Edges()
	out := GraphDocument{
		ID:    ID(doc.ID()),
		Name:  doc.Name(),
		Nodes: make([]Node, 0, len(nodes)),
		Edges: make([]Edge, 0, len(edges)),
	}
	for _, n := range nodes {
		out.Nodes = append(out.Nodes, NodeFromDomain(n))
	}
	for _, e := range edges {
		out.Edges = append(out.Edges, EdgeFromDomain(e))
	}
	return out
}

// ReplaceRequestFromDocument builds the body of a replace call
func ReplaceRequestFromDocument(doc *aggregates.Document) ReplaceGraphRequest {
	g := FromDocument(doc)
	return ReplaceGraphRequest{Nodes: g.Nodes, Edges: g.Edges}
}

// ApplyTo loads the graph into doc, replacing its content and name.
// Unrepresentable nodes and dangling edges are dropped.
func (g GraphDocument) ApplyTo(doc *aggregates.Document) *aggregates.Document {
	return doc.ReplaceAll(g.Name, NodesToDomain(g.Nodes), EdgesToDomain(g.Edges))
}
