package valueobjects

// HandleSide names one of the four directional anchor points on a node
type HandleSide string

const (
	HandleTop    HandleSide = "top"
	HandleBottom HandleSide = "bottom"
	HandleLeft   HandleSide = "left"
	HandleRight  HandleSide = "right"
)

// HandleType constrains which end of a connection an anchor may serve
type HandleType string

const (
	HandleSource HandleType = "source"
	HandleTarget HandleType = "target"
	HandleBoth   HandleType = "both"
)

// DefaultHandleTypes is the anchor layout of a media card:
// incoming connections attach top and left, outgoing leave bottom and right.
var DefaultHandleTypes = map[HandleSide]HandleType{
	HandleTop:    HandleTarget,
	HandleLeft:   HandleTarget,
	HandleBottom: HandleSource,
	HandleRight:  HandleSource,
}

// HandleRef identifies the anchor used at one end of an edge
type HandleRef struct {
	Side HandleSide `json:"side"`
	Type HandleType `json:"type"`
}

// NewHandleRef resolves a side to a reference using the default anchor layout.
// Unknown sides report false.
func NewHandleRef(side HandleSide) (HandleRef, bool) {
	t, ok := DefaultHandleTypes[side]
	if !ok {
		return HandleRef{}, false
	}
	return HandleRef{Side: side, Type: t}, true
}

// CanSource reports whether the anchor may start a connection
func (h HandleRef) CanSource() bool {
	return h.Type == HandleSource || h.Type == HandleBoth
}

// CanTarget reports whether the anchor may end a connection
func (h HandleRef) CanTarget() bool {
	return h.Type == HandleTarget || h.Type == HandleBoth
}
