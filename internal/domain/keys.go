package domain

import "strconv"

const (
	eventKeyPrefix  = "E_"
	ticketKeyPrefix = "T_"
)

// EventKey returns the store key of an event, e.g. "E_101".
func EventKey(code int64) string {
	return eventKeyPrefix + strconv.FormatInt(code, 10)
}

// TicketKey returns the store key of a ticket, e.g. "T_101_c149".
// The seat is used as entered.
func TicketKey(eventCode int64, seat string) string {
	return ticketKeyPrefix + strconv.FormatInt(eventCode, 10) + "_" + seat
}
