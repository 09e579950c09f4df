package domain

// Kind tags the two record kinds kept in the store.
type Kind uint8

const (
	KindEvent Kind = iota + 1
	KindTicket
)

func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindTicket:
		return "ticket"
	default:
		return "unknown"
	}
}

// Record is either an Event or a Ticket. Both share one ordered key space.
type Record interface {
	Key() string
	Kind() Kind

	record()
}

type Event struct {
	Code  int64  `json:"code" validate:"gte=0"`
	Title string `json:"title" validate:"required,max=99"`
	Date  string `json:"date" validate:"required,datetime=02/01/2006"`
	Time  string `json:"time" validate:"required,datetime=15:04"`
}

func (e Event) Key() string { return EventKey(e.Code) }
func (e Event) Kind() Kind  { return KindEvent }
func (Event) record()       {}

type Ticket struct {
	EventCode int64  `json:"event_code" validate:"gte=0"`
	Seat      string `json:"seat" validate:"seat"`
	TaxID     string `json:"tax_id" validate:"max=10"`
	FirstName string `json:"first_name" validate:"max=49"`
	LastName  string `json:"last_name" validate:"max=49"`
}

func (t Ticket) Key() string { return TicketKey(t.EventCode, t.Seat) }
func (t Ticket) Kind() Kind  { return KindTicket }
func (Ticket) record()       {}

// EventView is the read model returned to callers.
type EventView struct {
	Code  int64  `json:"code"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

type TicketView struct {
	EventCode int64  `json:"event_code"`
	Seat      string `json:"seat"`
	TaxID     string `json:"tax_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (e Event) View() EventView {
	return EventView{Code: e.Code, Title: e.Title, Date: e.Date, Time: e.Time}
}

func (t Ticket) View() TicketView {
	return TicketView{
		EventCode: t.EventCode,
		Seat:      t.Seat,
		TaxID:     t.TaxID,
		FirstName: t.FirstName,
		LastName:  t.LastName,
	}
}

type StoreStats struct {
	Events  int `json:"events"`
	Tickets int `json:"tickets"`
	Height  int `json:"height"`
}
