// Package responses defines JSON response types of the preview server.
package responses

import "time"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Source    string    `json:"source"`
}
