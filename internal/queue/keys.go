package queue

import (
	"fmt"

	"github.com/google/uuid"
)

const backlogKey = "paperdigest:jobs"

func JobStatusKey(jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s", jobID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
