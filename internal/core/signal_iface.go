package core

// Frame is a marshaled signaling payload.
type Frame []byte

// ConnID identifies one live transport session. It is unique per session
// and never reused.
type ConnID string

// NoExclusion is passed to Broadcast when every member should receive the
// frame, sender included.
const NoExclusion ConnID = ""

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
