package dtos

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

type HealthCheckResponse struct {
	Status      string   `json:"status"`
	Timestamp   string   `json:"timestamp"`
	Service     string   `json:"service"`
	Environment string   `json:"environment"`
	Endpoints   []string `json:"endpoints"`
	Error       string   `json:"error,omitempty"`
}
