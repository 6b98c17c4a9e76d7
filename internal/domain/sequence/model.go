package sequence

// Session is the ordered trial list handed to one participant.
// It is not stored; the client sends identifiers back one at a time.
type Session struct {
	ParticipantID string   `json:"participant_id"`
	SessionID     string   `json:"session_id"`
	Trials        []string `json:"trials"`
	// CatchPositions indexes the screening and catch trials within Trials.
	CatchPositions []int `json:"catch_positions,omitempty"`
}

// TotalTrials returns the number of trials in the session.
func (s *Session) TotalTrials() int {
	return len(s.Trials)
}
