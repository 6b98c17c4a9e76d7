package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeSessionStarted ActivityType = "session_started"
	TypeTrialServed    ActivityType = "trial_served"
	TypeResultSaved    ActivityType = "result_saved"
	TypeImagesUploaded ActivityType = "images_uploaded"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID            int64        `json:"id"`
	ParticipantID string       `json:"participant_id"`
	SessionID     *string      `json:"session_id,omitempty"`
	ImageName     *string      `json:"image_name,omitempty"`
	ActivityType  ActivityType `json:"type"`
	Summary       string       `json:"summary"`
	Details       string       `json:"details,omitempty"` // JSON string
	CreatedAt     time.Time    `json:"created_at"`
}
