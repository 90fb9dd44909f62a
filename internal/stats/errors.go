package stats

import "errors"

var (
	// ErrInvalidRange is returned when a range query starts after it ends.
	ErrInvalidRange = errors.New("stats: range start is after range end")

	// ErrInvalidWindow is returned when an aggregation window starts after it ends.
	ErrInvalidWindow = errors.New("stats: window start is after window end")

	// ErrCorruptSession is returned when a session's last heartbeat precedes its start.
	ErrCorruptSession = errors.New("stats: session last heartbeat is before its start")
)
