package sequence

import (
	"context"

	"github.com/rpggio/chromalabel/internal/domain/activity"
)

// ImageLister enumerates image files in a category folder.
type ImageLister interface {
	ListCategory(category string) ([]string, error)
}

// ResponseCounter reports saved responses per image base name.
type ResponseCounter interface {
	Counts(ctx context.Context) (map[string]int, error)
}

// ActivityRecorder records activity without failing the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *activity.ActivityEntry)
}
