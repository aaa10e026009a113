package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/core"
	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

// recordingRun covers one occupied->emptied span of a room. The goroutine
// behind it performs the store I/O so membership operations never wait on
// the recording collaborator.
type recordingRun struct {
	stop chan struct{}
	done chan struct{}
}

// Recorder drives the per-room recording lifecycle off occupancy edges.
// OnOccupancy is invoked under the room lock, so the state flip here is
// atomic with the membership transition that caused it; only the store
// calls run in the background.
type Recorder struct {
	store core.RecordingStore

	mu     sync.Mutex
	active map[domain.RoomID]*recordingRun
	// tail chains runs per room so a stop still in flight always reaches
	// the store before the start of a rapid refill.
	tail map[domain.RoomID]chan struct{}
}

func NewRecorder(store core.RecordingStore) *Recorder {
	return &Recorder{
		store:  store,
		active: make(map[domain.RoomID]*recordingRun),
		tail:   make(map[domain.RoomID]chan struct{}),
	}
}

// OnOccupancy implements core.OccupancyFunc. It must stay cheap: it flips
// controller state and hands the I/O to a goroutine.
func (r *Recorder) OnOccupancy(room domain.RoomID, transition core.Occupancy) {
	switch transition {
	case core.RoomOccupied:
		r.startRun(room)
	case core.RoomEmptied:
		r.stopRun(room)
	}
}

// Recording reports whether the controller considers a recording active
// for the room.
func (r *Recorder) Recording(room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[room]
	return ok
}

func (r *Recorder) startRun(room domain.RoomID) {
	r.mu.Lock()
	if _, ok := r.active[room]; ok {
		r.mu.Unlock()
		log.Warn().Str("module", "app.recorder").Str("room", string(room)).Msg("start for already-recording room ignored")
		return
	}
	prev := r.tail[room]
	run := &recordingRun{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	r.active[room] = run
	r.tail[room] = run.done
	r.mu.Unlock()

	go r.run(room, run, prev)
}

func (r *Recorder) stopRun(room domain.RoomID) {
	r.mu.Lock()
	run, ok := r.active[room]
	if !ok {
		r.mu.Unlock()
		log.Warn().Str("module", "app.recorder").Str("room", string(room)).Msg("stop for non-recording room ignored")
		return
	}
	delete(r.active, room)
	r.mu.Unlock()

	close(run.stop)
}

func (r *Recorder) run(room domain.RoomID, run *recordingRun, prev chan struct{}) {
	defer close(run.done)
	defer r.clearTail(room, run.done)

	if prev != nil {
		// Wait for the previous span's stop to hit the store first.
		<-prev
	}

	if sess, err := r.store.StartRecording(room); err != nil {
		log.Error().Err(err).Str("module", "app.recorder").Str("room", string(room)).Msg("start recording failed, meeting continues without one")
	} else {
		log.Info().Str("module", "app.recorder").Str("room", string(room)).Str("path", sess.Path).Msg("recording started")
	}

	<-run.stop

	sess, err := r.store.StopRecording(room)
	switch {
	case err != nil:
		log.Error().Err(err).Str("module", "app.recorder").Str("room", string(room)).Msg("stop recording failed")
	case sess == nil:
		log.Debug().Str("module", "app.recorder").Str("room", string(room)).Msg("stop with no active recording")
	default:
		log.Info().Str("module", "app.recorder").Str("room", string(room)).Dur("duration", sess.Duration).Msg("recording finalized")
	}
}

// clearTail drops the chain entry once the newest run has completed, so
// abandoned rooms don't pin memory.
func (r *Recorder) clearTail(room domain.RoomID, done chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tail[room] == done {
		delete(r.tail, room)
	}
}

// Shutdown finalizes every active recording and waits for the store calls
// to complete. Used on graceful process exit.
func (r *Recorder) Shutdown() {
	r.mu.Lock()
	runs := make([]*recordingRun, 0, len(r.active))
	for room, run := range r.active {
		delete(r.active, room)
		runs = append(runs, run)
	}
	r.mu.Unlock()

	for _, run := range runs {
		close(run.stop)
	}
	for _, run := range runs {
		<-run.done
	}
}
