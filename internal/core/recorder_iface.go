package core

import "github.com/jatinupadhyay27/my-meet/internal/domain"

// RecordingStore is the external recording collaborator consumed by the
// lifecycle controller. Implementations must make StartRecording safe to
// call while a session is already active (return the active session) and
// StopRecording safe when none is (return nil).
type RecordingStore interface {
	StartRecording(room domain.RoomID) (*domain.RecordingSession, error)
	StopRecording(room domain.RoomID) (*domain.RecordingSession, error)
	// LatestRecording returns the most recent finalized session, falling
	// back to on-disk artifacts when the in-memory index is empty.
	LatestRecording(room domain.RoomID) (*domain.RecordingSession, error)
}
