package instance

import "os"

// GetID returns the instance identifier used in log fields. It prefers an
// explicit WORKER_ID, falls back to the platform-assigned DYNO, and defaults
// to "local" for development runs.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	return "local"
}
