package dispatcher

import (
	"context"

	"github.com/garyjia/perdin-approval/internal/domain/event"
)

// Handler processes a trip event
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo describes a registered handler
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}
