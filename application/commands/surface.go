package commands

import (
	"strconv"
	"strings"
	"unicode"

	"mediagraph/application/commands/bus"
	"mediagraph/domain/core/aggregates"
	"mediagraph/domain/core/entities"
	"mediagraph/domain/core/validators"
	"mediagraph/domain/core/valueobjects"
)

// Result is the outcome of applying one command.
// Doc is the input document whenever Changed is false.
type Result struct {
	Doc       *aggregates.Document
	Selection valueobjects.NodeID
	Changed   bool
	Persist   bool
	// Connection is set for connect commands
	Connection *validators.ConnectionResult
}

// Surface translates editing commands into document operations.
// It holds no document state and is safe for concurrent use.
type Surface struct {
	ids         valueobjects.IdentifierGenerator
	positions   valueobjects.PositionSampler
	connections *validators.ConnectionValidator
}

// NewSurface creates a surface with injected id and position sources
func NewSurface(
	ids valueobjects.IdentifierGenerator,
	positions valueobjects.PositionSampler,
	connections *validators.ConnectionValidator,
) *Surface {
	if connections == nil {
		connections = validators.NewConnectionValidator()
	}
	return &Surface{ids: ids, positions: positions, connections: connections}
}

// Apply runs cmd against doc and the current selection.
// Invalid and unknown commands leave both untouched.
func (s *Surface) Apply(doc *aggregates.Document, selection valueobjects.NodeID, cmd bus.Command) Result {
	unchanged := Result{Doc: doc, Selection: selection}
	if cmd == nil || cmd.Validate() != nil {
		return unchanged
	}

	switch c := cmd.(type) {
	case AddMediaNodeCommand:
		if c.IsEmpty() {
			return unchanged
		}
		node := entities.NewMediaNode(
			valueobjects.NodeID(s.ids.NewID()),
			entities.MediaPayload{Title: c.Title, Link: c.Link, ImageURL: c.ImageURL},
			s.positions.Sample(),
		)
		return s.mutated(doc, doc.InsertNode(node), selection)

	case AddZoneNodeCommand:
		if c.IsEmpty() {
			return unchanged
		}
		radius, ok := ParseRadius(c.Radius)
		if !ok {
			radius = entities.DefaultZoneRadius
		}
		node := entities.NewZoneNode(
			valueobjects.NodeID(s.ids.NewID()),
			entities.ZonePayload{Name: c.Name, Radius: float64(radius)},
			s.positions.Sample(),
		)
		return s.mutated(doc, doc.PrependNode(node), selection)

	case MoveNodeCommand:
		return s.mutated(doc, doc.UpdateNodePosition(c.ID, c.Position), selection)

	case ConnectCommand:
		res := s.connections.Connect(doc, c.Connection)
		out := s.mutated(doc, res.Doc, selection)
		out.Connection = &res
		return out

	case RemoveNodeCommand:
		if selection == c.ID {
			selection = ""
		}
		return s.mutated(doc, doc.RemoveNode(c.ID), selection)

	case RemoveEdgeCommand:
		return s.mutated(doc, doc.RemoveEdge(c.ID), selection)

	case SelectNodeCommand:
		if !doc.HasNode(c.ID) {
			return unchanged
		}
		return Result{Doc: doc, Selection: c.ID}

	case ClearSelectionCommand:
		return Result{Doc: doc}

	default:
		return unchanged
	}
}

func (s *Surface) mutated(before, after *aggregates.Document, selection valueobjects.NodeID) Result {
	changed := after != before
	return Result{Doc: after, Selection: selection, Changed: changed, Persist: changed}
}

// ParseRadius reads the leading integer of s, the way a browser's parseInt
// does: leading whitespace and a sign are allowed and trailing text is ignored.
// ok is false when no digits lead the text or the value is not positive.
func ParseRadius(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
