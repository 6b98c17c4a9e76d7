package trial

import (
	"context"
	"io"

	"github.com/rpggio/chromalabel/internal/domain/activity"
)

// ImageSource opens images by identifier.
type ImageSource interface {
	Open(imageName string) (io.ReadCloser, error)
}

// ActivityRecorder records activity without failing the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *activity.ActivityEntry)
}
