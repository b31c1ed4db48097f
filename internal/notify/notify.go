package notify

import (
	"context"

	"github.com/MitulSonagara/blog-backend/internal/domain"
)

// Publisher delivers registration events to interested listeners.
// Delivery is best effort; callers never block on it.
type Publisher interface {
	Publish(event domain.UserRegisteredEvent)
}

// Sink consumes events handed off by the dispatcher
type Sink interface {
	Handle(ctx context.Context, event domain.UserRegisteredEvent) error
	Name() string
}
