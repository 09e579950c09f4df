package admin

import (
	"errors"
)

var (
	ErrEventConflict  = errors.New("event already exists")
	ErrEventNotFound  = errors.New("event not found")
	ErrSeatTaken      = errors.New("seat already booked for this event")
	ErrTicketNotFound = errors.New("ticket not found")
)
