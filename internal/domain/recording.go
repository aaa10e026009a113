package domain

import "time"

// MinRecordingDuration is the floor applied at stop time so a recording
// finalized within the same clock tick never reports a zero duration.
const MinRecordingDuration = time.Second

// RecordingSession is one continuous recording attempt for a room.
// EndedAt is zero while the session is active.
type RecordingSession struct {
	ID        string        `json:"id"`
	Room      RoomID        `json:"roomId"`
	Path      string        `json:"path"`
	StartedAt time.Time     `json:"startedAt"`
	EndedAt   time.Time     `json:"endedAt,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

func (s *RecordingSession) Active() bool {
	return s.EndedAt.IsZero()
}

// Finalize stamps the end of the session and derives its duration.
func (s *RecordingSession) Finalize(end time.Time) {
	s.EndedAt = end
	s.Duration = end.Sub(s.StartedAt)
	if s.Duration < MinRecordingDuration {
		s.Duration = MinRecordingDuration
	}
}
