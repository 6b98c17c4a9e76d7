package trial

// PlaceholderLabel is returned as the segmentation label of every trial.
// No segmentation is computed; replacing this with a real label is a
// deliberate extension point, not a fix.
const PlaceholderLabel = 0

// MaskValue fills every pixel of the placeholder mask.
const MaskValue = 128

// Request identifies the trial to load. ParticipantID and SessionID are
// optional and only used for the activity log.
type Request struct {
	ImageName     string
	ParticipantID string
	SessionID     string
}

// Content is a trial ready for display.
type Content struct {
	RGBImage          string `json:"rgb_image"`
	BinaryImage       string `json:"binary_image"`
	ImageName         string `json:"image_name"`
	SegmentationLabel int    `json:"segmentation_label"`
}
