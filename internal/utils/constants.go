package utils

const (
	OrganizationName                      = "Sentinel Guard Services"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)
