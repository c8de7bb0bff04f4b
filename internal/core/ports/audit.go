package ports

import (
	"context"

	"github.com/enersim/energy-simulator/internal/core/domain"
)

// AuditRecorder accepts auth-trail events for asynchronous persistence.
// Implementations must not block the request path.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}

// AuditRepository is the persistence interface behind the recorder.
type AuditRepository interface {
	Insert(ctx context.Context, event domain.AuthEvent) error
}

// NopAuditRecorder discards events; used when auditing is disabled and in tests.
type NopAuditRecorder struct{}

func (NopAuditRecorder) Record(domain.AuthEvent) {}
