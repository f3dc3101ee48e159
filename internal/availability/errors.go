package availability

import "errors"

var (
	ErrRoomNotAvailable = errors.New("room is not available for the requested time")
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrInvalidConfig    = errors.New("invalid availability configuration")
)
