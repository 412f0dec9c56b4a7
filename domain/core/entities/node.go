package entities

import (
	"mediagraph/domain/core/valueobjects"
)

// NodeKind discriminates the payload carried by a node
type NodeKind string

const (
	KindMedia NodeKind = "media"
	KindZone  NodeKind = "zone"
)

// Stacking orders. Zones always render beneath media cards.
const (
	StackZone  = 0
	StackMedia = 1
)

// DefaultZoneRadius is used when a zone carries no usable radius
const DefaultZoneRadius = 100

// MediaPayload is the content of a media card
type MediaPayload struct {
	Title    string
	Link     string
	ImageURL string
}

// IsEmpty reports whether every field is blank
func (p MediaPayload) IsEmpty() bool {
	return p.Title == "" && p.Link == "" && p.ImageURL == ""
}

// ZonePayload is the content of a circular grouping zone
type ZonePayload struct {
	Name   string
	Radius float64
}

// Node is an element of a graph document.
// Exactly one of the media or zone payloads is set, selected by Kind.
// Nodes are values: every change produces a new Node.
type Node struct {
	id       valueobjects.NodeID
	kind     NodeKind
	media    *MediaPayload
	zone     *ZonePayload
	position valueobjects.Position
	z        int
}

// NewMediaNode creates a media card node stacked above zones
func NewMediaNode(id valueobjects.NodeID, payload MediaPayload, position valueobjects.Position) Node {
	return Node{
		id:       id,
		kind:     KindMedia,
		media:    &payload,
		position: position,
		z:        StackMedia,
	}
}

// NewZoneNode creates a zone node stacked beneath media cards.
// A non-positive radius falls back to DefaultZoneRadius.
func NewZoneNode(id valueobjects.NodeID, payload ZonePayload, position valueobjects.Position) Node {
	if payload.Radius <= 0 {
		payload.Radius = DefaultZoneRadius
	}
	return Node{
		id:       id,
		kind:     KindZone,
		zone:     &payload,
		position: position,
		z:        StackZone,
	}
}

// ID returns the node's identifier
func (n Node) ID() valueobjects.NodeID {
	return n.id
}

// Kind returns the payload discriminant
func (n Node) Kind() NodeKind {
	return n.kind
}

// Media returns the media payload; ok is false for zones
func (n Node) Media() (MediaPayload, bool) {
	if n.media == nil {
		return MediaPayload{}, false
	}
	return *n.media, true
}

// Zone returns the zone payload; ok is false for media cards
func (n Node) Zone() (ZonePayload, bool) {
	if n.zone == nil {
		return ZonePayload{}, false
	}
	return *n.zone, true
}

// Position returns the node's canvas position
func (n Node) Position() valueobjects.Position {
	return n.position
}

// Z returns the stacking order
func (n Node) Z() int {
	return n.z
}

// WithPosition returns a copy of the node at a new position
func (n Node) WithPosition(position valueobjects.Position) Node {
	n.position = position
	return n
}

// WithZ returns a copy of the node with an explicit stacking order
func (n Node) WithZ(z int) Node {
	n.z = z
	return n
}

// IsConnectable reports whether edges may attach to the node. Zones are annotations only.
func (n Node) IsConnectable() bool {
	return n.kind == KindMedia
}

// IsValid checks the tagged union is consistent
func (n Node) IsValid() bool {
	if n.id.IsZero() {
		return false
	}
	switch n.kind {
	case KindMedia:
		return n.media != nil && n.zone == nil
	case KindZone:
		return n.zone != nil && n.media == nil && n.zone.Radius > 0
	default:
		return false
	}
}

// Equals compares two nodes field by field
func (n Node) Equals(other Node) bool {
	if n.id != other.id || n.kind != other.kind || n.z != other.z {
		return false
	}
	if !n.position.Equals(other.position) {
		return false
	}
	a, aok := n.Media()
	b, bok := other.Media()
	if aok != bok || a != b {
		return false
	}
	za, zaok := n.Zone()
	zb, zbok := other.Zone()
	return zaok == zbok && za == zb
}
