package runner

import "context"

// Service represents a component with a managed lifecycle. Services are
// started in registration order and stopped in reverse.
type Service interface {
	// Name returns a unique identifier, used in logs and errors.
	Name() string

	// Start initializes the service. Blocks until the service is ready and
	// must respect context cancellation.
	Start(ctx context.Context) error

	// Stop shuts the service down gracefully within the context deadline.
	Stop(ctx context.Context) error
}

// HealthChecker is optionally implemented by services that can report
// their own health.
type HealthChecker interface {
	Service

	HealthCheck(ctx context.Context) error
}
