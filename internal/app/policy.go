package app

import "github.com/jatinupadhyay27/my-meet/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a connection that could not keep up with
// room fanout.
type Policy interface {
	OnBackPressure(room core.RoomService, id core.ConnID) BackpressureAction
}

// SimplePolicy drops the frame for the slow connection and otherwise
// leaves it alone; a dead socket is reaped by its own read pump.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room core.RoomService, id core.ConnID) BackpressureAction {
	return DropFrame
}
