package memory

import (
	"context"

	"github.com/streamview/auth-service/internal/application/session"
)

// NoopPublisher stands in when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserRegistered(context.Context, session.UserRegisteredEvent) error {
	return nil
}
