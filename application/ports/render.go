package ports

import (
	"context"

	"mediagraph/application/projection"
)

// RenderSink receives a fresh scene after every change
type RenderSink interface {
	Render(ctx context.Context, scene projection.Scene) error
}
