package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is down and no request can be served.
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
	store StorePinger
	llm   LLMChecker
}

// New creates a Service. llm can be nil.
func New(store StorePinger, llm LLMChecker) *Service {
	return &Service{store: store, llm: llm}
}

// Check runs health checks against all components. A failing store is
// Unhealthy (sessions, cache and the index all live there); a failing
// model provider alone is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	storeDown := false
	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
		storeDown = true
	} else {
		checks["store"] = CheckOK
	}

	if s.llm != nil {
		if err := s.llm.HealthCheck(ctx); err != nil {
			checks["llm"] = CheckError
		} else {
			checks["llm"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if storeDown {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
