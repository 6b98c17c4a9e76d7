package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	ParticipantID string
	SessionID     *string
	ImageName     *string
	ActivityType  *ActivityType
	Limit         int
	Offset        int
}
