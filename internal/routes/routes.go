// Package routes defines HTTP route constants for the companion server.
package routes

const (
	// Root serves the live preview page
	RootPath = "/"

	// Current preview PDF
	PreviewPath = "/preview"

	// SSE
	EventsPath = "/events"

	// Operations
	MetricsPath = "/metrics"
	HealthPath  = "/healthz"
)
