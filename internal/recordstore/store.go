// Package recordstore manages recording artifacts: the active session per
// room, the finalized history, and discovery of artifacts left on disk by
// a previous process.
package recordstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

const artifactExt = ".webm"

type Store struct {
	dir string

	mu      sync.Mutex
	active  map[domain.RoomID]*domain.RecordingSession
	history map[domain.RoomID][]*domain.RecordingSession

	// now is swappable for tests.
	now func() time.Time
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recordings dir: %w", err)
	}
	return &Store{
		dir:     dir,
		active:  make(map[domain.RoomID]*domain.RecordingSession),
		history: make(map[domain.RoomID][]*domain.RecordingSession),
		now:     time.Now,
	}, nil
}

// StartRecording opens a new session for the room, or returns the one
// already active. The artifact file is created up front so a crashed
// process still leaves something discoverable on disk.
func (s *Store) StartRecording(room domain.RoomID) (*domain.RecordingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.active[room]; ok {
		log.Warn().Str("module", "recordstore").Str("room", string(room)).Msg("start while recording, returning active session")
		return sess, nil
	}

	start := s.now().UTC()
	path := filepath.Join(s.dir, artifactName(room, start))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create recording artifact: %w", err)
	}
	_ = f.Close()

	sess := &domain.RecordingSession{
		ID:        uuid.NewString(),
		Room:      room,
		Path:      path,
		StartedAt: start,
	}
	s.active[room] = sess
	log.Info().Str("module", "recordstore").Str("room", string(room)).Str("path", path).Msg("recording session opened")
	return sess, nil
}

// StopRecording finalizes the active session and appends it to the room's
// history. Returns nil when no recording was active.
func (s *Store) StopRecording(room domain.RoomID) (*domain.RecordingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.active[room]
	if !ok {
		return nil, nil
	}
	delete(s.active, room)

	sess.Finalize(s.now().UTC())
	s.history[room] = append(s.history[room], sess)
	// History stays ordered by start time even if sessions were opened by
	// out-of-order clock readings.
	sort.SliceStable(s.history[room], func(i, j int) bool {
		return s.history[room][i].StartedAt.Before(s.history[room][j].StartedAt)
	})
	log.Info().Str("module", "recordstore").Str("room", string(room)).Dur("duration", sess.Duration).Msg("recording session finalized")
	return sess, nil
}

// LatestRecording returns the newest finalized session for the room. When
// the in-memory index has nothing (fresh process), it falls back to
// scanning the recordings directory for the room's artifacts.
func (s *Store) LatestRecording(room domain.RoomID) (*domain.RecordingSession, error) {
	s.mu.Lock()
	if hist := s.history[room]; len(hist) > 0 {
		sess := hist[len(hist)-1]
		s.mu.Unlock()
		return sess, nil
	}
	var activePath string
	if sess, ok := s.active[room]; ok {
		activePath = sess.Path
	}
	s.mu.Unlock()
	return s.discoverOnDisk(room, activePath)
}

// discoverOnDisk skips skipPath so an in-progress artifact is never handed
// out as a finalized recording.
func (s *Store) discoverOnDisk(room domain.RoomID, skipPath string) (*domain.RecordingSession, error) {
	pattern := filepath.Join(s.dir, string(room)+"-*"+artifactExt)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan recordings dir: %w", err)
	}
	var latest *domain.RecordingSession
	for _, path := range matches {
		if path == skipPath {
			continue
		}
		start, ok := artifactStart(room, path)
		if !ok {
			continue
		}
		if latest != nil && !start.After(latest.StartedAt) {
			continue
		}
		sess := &domain.RecordingSession{
			ID:        uuid.NewString(),
			Room:      room,
			Path:      path,
			StartedAt: start,
		}
		if info, err := os.Stat(path); err == nil {
			sess.Finalize(info.ModTime().UTC())
		}
		latest = sess
	}
	if latest != nil {
		log.Info().Str("module", "recordstore").Str("room", string(room)).Str("path", latest.Path).Msg("recovered recording from disk")
	}
	return latest, nil
}

func artifactName(room domain.RoomID, start time.Time) string {
	return fmt.Sprintf("%s-%d%s", room, start.UnixMilli(), artifactExt)
}

// artifactStart parses the start timestamp back out of an artifact name
// produced by artifactName.
func artifactStart(room domain.RoomID, path string) (time.Time, bool) {
	base := strings.TrimSuffix(filepath.Base(path), artifactExt)
	rest, ok := strings.CutPrefix(base, string(room)+"-")
	if !ok {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis).UTC(), true
}
