package booking

import "errors"

var (
	ErrInvalidPayload = errors.New("invalid booking payload")
	ErrNotFound       = errors.New("record not found")
	ErrSlotFull       = errors.New("requested time is fully booked")
	ErrInvalidStatus  = errors.New("invalid appointment status transition")
	ErrForbidden      = errors.New("operation requires the owner role")
)
