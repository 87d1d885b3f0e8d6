package instance

import (
	"os"

	"github.com/google/uuid"
)

var processID = uuid.NewString()

// GetID returns the API instance identifier. DYNO and INSTANCE_ID win over the
// per-process fallback so log lines line up with the platform's naming.
func GetID() string {
	if id := os.Getenv("INSTANCE_ID"); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	return "api-" + processID[:8]
}
