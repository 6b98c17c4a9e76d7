package trial

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/rpggio/chromalabel/internal/domain/activity"
)

// Service loads trial images and their placeholder masks.
type Service struct {
	images   ImageSource
	activity ActivityRecorder
	logger   *slog.Logger
}

// NewService creates a new trial service. recorder may be nil.
func NewService(images ImageSource, recorder ActivityRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{images: images, activity: recorder, logger: logger}
}

// Get loads the image named in req and returns it with a same-sized mask,
// both as base64 PNG. Missing images yield imagestore.ErrImageNotFound.
func (s *Service) Get(ctx context.Context, req Request) (*Content, error) {
	rc, err := s.images.Open(req.ImageName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	src, format, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, req.ImageName, err)
	}

	raster := toRaster(src)
	b := raster.Bounds()

	rgb, err := pngBase64(raster)
	if err != nil {
		return nil, err
	}
	mask, err := pngBase64(placeholderMask(b.Dx(), b.Dy()))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("trial served", "image_name", req.ImageName, "format", format, "width", b.Dx(), "height", b.Dy())
	if s.activity != nil {
		entry := &activity.ActivityEntry{
			ParticipantID: req.ParticipantID,
			ImageName:     &req.ImageName,
			ActivityType:  activity.TypeTrialServed,
			Summary:       "served " + req.ImageName,
		}
		if req.SessionID != "" {
			entry.SessionID = &req.SessionID
		}
		s.activity.Record(ctx, entry)
	}

	return &Content{
		RGBImage:          rgb,
		BinaryImage:       mask,
		ImageName:         req.ImageName,
		SegmentationLabel: PlaceholderLabel,
	}, nil
}
