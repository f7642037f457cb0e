// Package event delivers costing domain events to in-process subscribers.
package event

import (
	"context"

	"github.com/erp/costing/internal/domain/shared"
)

// Handler consumes domain events
type Handler interface {
	Handle(ctx context.Context, event shared.DomainEvent) error
	// EventTypes lists the types the handler wants; empty means all
	EventTypes() []string
}
