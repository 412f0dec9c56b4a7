// Package projection turns a graph document into the shapes a canvas draws.
package projection

import (
	"mediagraph/domain/core/aggregates"
	"mediagraph/domain/core/entities"
	"mediagraph/domain/core/valueobjects"
)

// Element types understood by the canvas
const (
	ElementMediaCard  = "media-card"
	ElementZoneCircle = "zone-circle"
)

// Card geometry and connector styling
const (
	MediaCardWidth  = 250
	MediaCardHeight = 250

	StrokeDefault   = "#222"
	StrokeFresh     = "#A30A00"
	StrokeWidth     = 2
	FreshEdgeZIndex = 1000
)

// Handle is an anchor point drawn on a media card
type Handle struct {
	Side valueobjects.HandleSide `json:"side"`
	Type valueobjects.HandleType `json:"type"`
}

// MediaView is the content shown on a media card
type MediaView struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	ImageURL string `json:"imageUrl"`
}

// ZoneView is the content shown on a zone circle
type ZoneView struct {
	Name   string  `json:"name"`
	Radius float64 `json:"radius"`
}

// Element is one drawable node
type Element struct {
	ID       valueobjects.NodeID   `json:"id"`
	Type     string                `json:"type"`
	Position valueobjects.Position `json:"position"`
	ZIndex   int                   `json:"zIndex"`
	Selected bool                  `json:"selected"`
	Width    float64               `json:"width"`
	Height   float64               `json:"height"`
	Handles  []Handle              `json:"handles,omitempty"`
	Media    *MediaView            `json:"media,omitempty"`
	Zone     *ZoneView             `json:"zone,omitempty"`
}

// ConnectorStyle is the stroke of a connector
type ConnectorStyle struct {
	Stroke string `json:"stroke"`
	Width  int    `json:"strokeWidth"`
	ZIndex int    `json:"zIndex,omitempty"`
}

// Connector is one drawable edge
type Connector struct {
	ID           valueobjects.EdgeID     `json:"id"`
	Source       valueobjects.NodeID     `json:"source"`
	Target       valueobjects.NodeID     `json:"target"`
	SourceHandle valueobjects.HandleSide `json:"sourceHandle,omitempty"`
	TargetHandle valueobjects.HandleSide `json:"targetHandle,omitempty"`
	Animated     bool                    `json:"animated"`
	Style        ConnectorStyle          `json:"style"`
}

// Scene is everything the canvas needs for one frame
type Scene struct {
	GraphID    valueobjects.GraphID `json:"graphId"`
	Name       string               `json:"name"`
	Version    uint64               `json:"version"`
	Elements   []Element            `json:"elements"`
	Connectors []Connector          `json:"connectors"`
}

var cardHandles = []Handle{
	{Side: valueobjects.HandleTop, Type: valueobjects.DefaultHandleTypes[valueobjects.HandleTop]},
	{Side: valueobjects.HandleLeft, Type: valueobjects.DefaultHandleTypes[valueobjects.HandleLeft]},
	{Side: valueobjects.HandleBottom, Type: valueobjects.DefaultHandleTypes[valueobjects.HandleBottom]},
	{Side: valueobjects.HandleRight, Type: valueobjects.DefaultHandleTypes[valueobjects.HandleRight]},
}

// Project builds the scene for doc with the given node selected.
// Elements keep document order, so zones come first and render underneath.
func Project(doc *aggregates.Document, selected valueobjects.NodeID) Scene {
	nodes := doc.Nodes()
	edges := doc.Edges()

	scene := Scene{
		GraphID:    doc.ID(),
		Name:       doc.Name(),
		Version:    doc.Version(),
		Elements:   make([]Element, 0, len(nodes)),
		Connectors: make([]Connector, 0, len(edges)),
	}
	for _, n := range nodes {
		scene.Elements = append(scene.Elements, projectNode(n, n.ID() == selected))
	}
	for _, e := range edges {
		scene.Connectors = append(scene.Connectors, projectEdge(e))
	}
	return scene
}

func projectNode(n entities.Node, selected bool) Element {
	el := Element{
		ID:       n.ID(),
		Position: n.Position(),
		ZIndex:   n.Z(),
		Selected: selected,
	}
	if m, ok := n.Media(); ok {
		el.Type = ElementMediaCard
		el.Width, el.Height = MediaCardWidth, MediaCardHeight
		el.Handles = append([]Handle(nil), cardHandles...)
		el.Media = &MediaView{Title: m.Title, Link: m.Link, ImageURL: m.ImageURL}
	}
	if z, ok := n.Zone(); ok {
		el.Type = ElementZoneCircle
		el.Width, el.Height = 2*z.Radius, 2*z.Radius
		el.Zone = &ZoneView{Name: z.Name, Radius: z.Radius}
	}
	return el
}

func projectEdge(e entities.Edge) Connector {
	c := Connector{
		ID:       e.ID(),
		Source:   e.Source(),
		Target:   e.Target(),
		Animated: true,
		Style:    ConnectorStyle{Stroke: StrokeDefault, Width: StrokeWidth},
	}
	if h, ok := e.SourceHandle(); ok {
		c.SourceHandle = h.Side
	}
	if h, ok := e.TargetHandle(); ok {
		c.TargetHandle = h.Side
	}
	if e.IsFresh() {
		c.Style = ConnectorStyle{Stroke: StrokeFresh, Width: StrokeWidth, ZIndex: FreshEdgeZIndex}
	}
	return c
}
