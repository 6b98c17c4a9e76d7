package result

import (
	"context"

	"github.com/rpggio/chromalabel/internal/domain/activity"
)

// ResponseTally counts saved responses per image base name.
type ResponseTally interface {
	Increment(ctx context.Context, imageName string) error
}

// ActivityRecorder records activity without failing the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *activity.ActivityEntry)
}
