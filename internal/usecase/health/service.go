package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	postgres Pinger
	redis    Pinger
}

// New creates a Service. redis can be nil for a cache-less deployment.
func New(postgres, redis Pinger) *Service {
	return &Service{postgres: postgres, redis: redis}
}

// Check runs health checks against all backing stores.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.postgres.Ping(ctx); err != nil {
		checks["postgres"] = CheckError
	} else {
		checks["postgres"] = CheckOK
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			checks["redis"] = CheckError
		} else {
			checks["redis"] = CheckOK
		}
	}

	status := Healthy
	if checks["postgres"] == CheckError {
		status = Unhealthy
	} else if checks["redis"] == CheckError {
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
