package errors

import "errors"

var (
	ErrNotFound = errors.New("meeting not found")

	ErrInvalidID = errors.New("invalid meeting ID format")

	ErrSlotLocked = errors.New("another booking for this room and date is in progress")

	ErrAlreadyApproved = errors.New("meeting is already approved")

	ErrCapacityExceeded = errors.New("participants exceed room capacity")
)
