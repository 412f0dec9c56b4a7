package aggregates

import (
	"fmt"

	"mediagraph/domain/core/entities"
	"mediagraph/domain/core/valueobjects"
)

// Document is the in-memory graph document owned by an editing session.
//
// A Document is immutable: every operation returns a new Document and leaves
// the receiver untouched, so a caller never observes a half-applied change.
// Operations that would break an invariant return the receiver unchanged.
//
// Invariants:
//   - node ids are unique
//   - every edge references nodes present in the document
//   - edge ids are unique
//   - at most one edge exists per ordered (source, target) pair
type Document struct {
	id        valueobjects.GraphID
	name      string
	nodes     []entities.Node
	nodeIndex map[valueobjects.NodeID]int
	edges     []entities.Edge
	edgeIndex map[valueobjects.EdgeID]int
	pairIndex map[endpointPair]valueobjects.EdgeID
	version   uint64
}

type endpointPair struct {
	source valueobjects.NodeID
	target valueobjects.NodeID
}

func pairOf(e entities.Edge) endpointPair {
	return endpointPair{source: e.Source(), target: e.Target()}
}

// NewDocument creates an empty document
func NewDocument(id valueobjects.GraphID, name string) *Document {
	return &Document{
		id:        id,
		name:      name,
		nodeIndex: map[valueobjects.NodeID]int{},
		edgeIndex: map[valueobjects.EdgeID]int{},
		pairIndex: map[endpointPair]valueobjects.EdgeID{},
	}
}

// ID returns the graph identifier
func (d *Document) ID() valueobjects.GraphID {
	return d.id
}

// Name returns the display name
func (d *Document) Name() string {
	return d.name
}

// Version increases by one with every applied change
func (d *Document) Version() uint64 {
	return d.version
}

// NodeCount returns the number of nodes
func (d *Document) NodeCount() int {
	return len(d.nodes)
}

// EdgeCount returns the number of edges
func (d *Document) EdgeCount() int {
	return len(d.edges)
}

// Nodes returns the nodes in render order
func (d *Document) Nodes() []entities.Node {
	nodes := make([]entities.Node, len(d.nodes))
	copy(nodes, d.nodes)
	return nodes
}

// Edges returns the edges in insertion order
func (d *Document) Edges() []entities.Edge {
	edges := make([]entities.Edge, len(d.edges))
	copy(edges, d.edges)
	return edges
}

// Node looks up a node by id
func (d *Document) Node(id valueobjects.NodeID) (entities.Node, bool) {
	i, ok := d.nodeIndex[id]
	if !ok {
		return entities.Node{}, false
	}
	return d.nodes[i], true
}

// HasNode checks if a node exists without returning it
func (d *Document) HasNode(id valueobjects.NodeID) bool {
	_, ok := d.nodeIndex[id]
	return ok
}

// Edge looks up an edge by id
func (d *Document) Edge(id valueobjects.EdgeID) (entities.Edge, bool) {
	i, ok := d.edgeIndex[id]
	if !ok {
		return entities.Edge{}, false
	}
	return d.edges[i], true
}

// HasEdge checks if an edge exists without returning it
func (d *Document) HasEdge(id valueobjects.EdgeID) bool {
	_, ok := d.edgeIndex[id]
	return ok
}

// EdgeBetween returns the id of the edge going from source to target, if any
func (d *Document) EdgeBetween(source, target valueobjects.NodeID) (valueobjects.EdgeID, bool) {
	id, ok := d.pairIndex[endpointPair{source: source, target: target}]
	return id, ok
}

// InsertNode appends a node. Invalid nodes and duplicate ids leave the document unchanged.
func (d *Document) InsertNode(node entities.Node) *Document {
	if !node.IsValid() || d.HasNode(node.ID()) {
		return d
	}
	nodes := make([]entities.Node, 0, len(d.nodes)+1)
	nodes = append(nodes, d.nodes...)
	nodes = append(nodes, node)
	return d.next(d.name, nodes, d.edges)
}

// PrependNode inserts a node at the front of the render order, used for backdrop zones
func (d *Document) PrependNode(node entities.Node) *Document {
	if !node.IsValid() || d.HasNode(node.ID()) {
		return d
	}
	nodes := make([]entities.Node, 0, len(d.nodes)+1)
	nodes = append(nodes, node)
	nodes = append(nodes, d.nodes...)
	return d.next(d.name, nodes, d.edges)
}

// RemoveNode removes a node together with every edge referencing it
func (d *Document) RemoveNode(id valueobjects.NodeID) *Document {
	if !d.HasNode(id) {
		return d
	}
	nodes := make([]entities.Node, 0, len(d.nodes)-1)
	for _, n := range d.nodes {
		if n.ID() != id {
			nodes = append(nodes, n)
		}
	}
	edges := make([]entities.Edge, 0, len(d.edges))
	for _, e := range d.edges {
		if !e.References(id) {
			edges = append(edges, e)
		}
	}
	return d.next(d.name, nodes, edges)
}

// UpdateNodePosition moves a node. Bounds are not checked.
func (d *Document) UpdateNodePosition(id valueobjects.NodeID, position valueobjects.Position) *Document {
	i, ok := d.nodeIndex[id]
	if !ok {
		return d
	}
	if d.nodes[i].Position().Equals(position) {
		return d
	}
	nodes := d.Nodes()
	nodes[i] = nodes[i].WithPosition(position)
	return d.next(d.name, nodes, d.edges)
}

// InsertEdge adds an edge whose endpoints both exist, whose id is not taken
// and whose ordered endpoint pair is not connected yet
func (d *Document) InsertEdge(edge entities.Edge) *Document {
	if d.HasEdge(edge.ID()) || !d.HasNode(edge.Source()) || !d.HasNode(edge.Target()) {
		return d
	}
	if _, taken := d.pairIndex[pairOf(edge)]; taken {
		return d
	}
	edges := make([]entities.Edge, 0, len(d.edges)+1)
	edges = append(edges, d.edges...)
	edges = append(edges, edge)
	return d.next(d.name, d.nodes, edges)
}

// RemoveEdge deletes an edge by id
func (d *Document) RemoveEdge(id valueobjects.EdgeID) *Document {
	if !d.HasEdge(id) {
		return d
	}
	edges := make([]entities.Edge, 0, len(d.edges)-1)
	for _, e := range d.edges {
		if e.ID() != id {
			edges = append(edges, e)
		}
	}
	return d.next(d.name, d.nodes, edges)
}

// ReplaceAll swaps the whole content, as done on initial load.
// Invalid nodes, repeated ids, edges with a missing endpoint and any later
// edge repeating an ordered pair are dropped, so the result always satisfies
// the document invariants.
func (d *Document) ReplaceAll(name string, nodes []entities.Node, edges []entities.Edge) *Document {
	seenNodes := make(map[valueobjects.NodeID]struct{}, len(nodes))
	keptNodes := make([]entities.Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.IsValid() {
			continue
		}
		if _, dup := seenNodes[n.ID()]; dup {
			continue
		}
		seenNodes[n.ID()] = struct{}{}
		keptNodes = append(keptNodes, n)
	}

	seenEdges := make(map[valueobjects.EdgeID]struct{}, len(edges))
	seenPairs := make(map[endpointPair]struct{}, len(edges))
	keptEdges := make([]entities.Edge, 0, len(edges))
	for _, e := range edges {
		if _, ok := seenNodes[e.Source()]; !ok {
			continue
		}
		if _, ok := seenNodes[e.Target()]; !ok {
			continue
		}
		if _, dup := seenEdges[e.ID()]; dup {
			continue
		}
		if _, dup := seenPairs[pairOf(e)]; dup {
			continue
		}
		seenEdges[e.ID()] = struct{}{}
		seenPairs[pairOf(e)] = struct{}{}
		keptEdges = append(keptEdges, e)
	}

	return d.next(name, keptNodes, keptEdges)
}

// Validate checks the document invariants
func (d *Document) Validate() error {
	if len(d.nodeIndex) != len(d.nodes) {
		return fmt.Errorf("node index out of sync: %d indexed, %d stored", len(d.nodeIndex), len(d.nodes))
	}
	for _, e := range d.edges {
		if !d.HasNode(e.Source()) {
			return fmt.Errorf("edge %s references missing source node %s", e.ID(), e.Source())
		}
		if !d.HasNode(e.Target()) {
			return fmt.Errorf("edge %s references missing target node %s", e.ID(), e.Target())
		}
	}
	if len(d.edgeIndex) != len(d.edges) {
		return fmt.Errorf("duplicate edge ids present")
	}
	if len(d.pairIndex) != len(d.edges) {
		return fmt.Errorf("more than one edge connects the same ordered pair")
	}
	return nil
}

func (d *Document) next(name string, nodes []entities.Node, edges []entities.Edge) *Document {
	nodeIndex := make(map[valueobjects.NodeID]int, len(nodes))
	for i, n := range nodes {
		nodeIndex[n.ID()] = i
	}
	edgeIndex := make(map[valueobjects.EdgeID]int, len(edges))
	pairIndex := make(map[endpointPair]valueobjects.EdgeID, len(edges))
	for i, e := range edges {
		edgeIndex[e.ID()] = i
		pairIndex[pairOf(e)] = e.ID()
	}
	return &Document{
		id:        d.id,
		name:      name,
		nodes:     nodes,
		nodeIndex: nodeIndex,
		edges:     edges,
		edgeIndex: edgeIndex,
		pairIndex: pairIndex,
		version:   d.version + 1,
	}
}
