// Package session persists workflow conversations between turns and
// generates the IDs they are stored under.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID returns a session ID of the form session-YYYYMMDD-HHMMSS-xxxxxxxx.
func NewID(now time.Time) string {
	return fmt.Sprintf("session-%s-%s", now.UTC().Format("20060102-150405"), uuid.New().String()[:8])
}
