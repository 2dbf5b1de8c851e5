package routes

const (
	// Health & metrics
	Health  = "/api/health"
	Metrics = "/metrics"

	// Form submission endpoints
	SubmitQuote       = "/api/submit-quote"
	SubmitGuard       = "/api/submit-guard"
	SubmitCompany     = "/api/submit-company"
	SubmitFleetWorker = "/api/submit-fleet-worker"
)
