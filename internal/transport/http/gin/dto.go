package httpgin

import "github.com/kirinyoku/boxoffice/internal/domain"

type CreateEventRequest struct {
	Code  *int64 `json:"code" binding:"required,min=0"`
	Title string `json:"title" binding:"required"`
	Date  string `json:"date" binding:"required"`
	Time  string `json:"time" binding:"required"`
}

func (r CreateEventRequest) toDomain() domain.Event {
	return domain.Event{
		Code:  *r.Code,
		Title: r.Title,
		Date:  r.Date,
		Time:  r.Time,
	}
}

type IssueTicketRequest struct {
	Seat      string `json:"seat" binding:"required"`
	TaxID     string `json:"tax_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r IssueTicketRequest) toDomain(eventCode int64) domain.Ticket {
	return domain.Ticket{
		EventCode: eventCode,
		Seat:      r.Seat,
		TaxID:     r.TaxID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateEventResponse struct {
	Code int64  `json:"code"`
	Key  string `json:"key"`
}

type IssueTicketResponse struct {
	EventCode int64  `json:"event_code"`
	Seat      string `json:"seat"`
	Key       string `json:"key"`
}

type RemoveEventResponse struct {
	Code           int64 `json:"code"`
	TicketsRemoved int   `json:"tickets_removed"`
}

type ResetResponse struct {
	Released int `json:"released"`
}
