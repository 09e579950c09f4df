// Package menu drives the store through an interactive line-based menu.
// Parsing and prompting live here; every check on the data itself is left
// to the services.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kirinyoku/boxoffice/internal/domain"
	"github.com/kirinyoku/boxoffice/internal/service"
	"github.com/kirinyoku/boxoffice/internal/service/admin"
	"github.com/kirinyoku/boxoffice/internal/service/query"
)

const rule = "----------------------------------------"

var errInputClosed = errors.New("menu: input closed")

type Menu struct {
	admin  *admin.Service
	query  *query.Service
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger
}

func New(svcs *service.Services, in io.Reader, out io.Writer, logger *slog.Logger) *Menu {
	if logger == nil {
		logger = slog.Default()
	}
	return &Menu{
		admin:  svcs.Admin,
		query:  svcs.Query,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// Run shows the main menu until the user exits or the input ends. Either
// way every record is released before Run returns.
func (m *Menu) Run(ctx context.Context) error {
	const op = "menu.Run"

	err := m.mainLoop(ctx)
	if err != nil && !errors.Is(err, errInputClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.printf("Deleting all data and shutting down...\n")
	n, err := m.admin.Reset(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m.logger.Debug("menu exit", "released", n)
	m.printf("Program terminated successfully.\n")

	if err := m.in.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Menu) mainLoop(ctx context.Context) error {
	for {
		m.printf("\n--- BOX OFFICE MAIN MENU ---\n")
		m.printf("1. Manage Events\n")
		m.printf("2. Manage Tickets\n")
		m.printf("3. Exit and Delete All Data\n")
		m.printf("Select [1-3]: ")

		choice, err := m.choice()
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = m.eventLoop(ctx)
		case 2:
			err = m.ticketLoop(ctx)
		case 3:
			return nil
		default:
			m.printf("(!) Invalid choice. Please try again.\n")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) eventLoop(ctx context.Context) error {
	for {
		m.printf("\n--- Event Management Menu ---\n")
		m.printf("1. Add Event\n")
		m.printf("2. Search for Event (by Code)\n")
		m.printf("3. Delete Event (by Code)\n")
		m.printf("4. Print List of Events\n")
		m.printf("5. Return to Main Menu\n")
		m.printf("Select [1-5]: ")

		choice, err := m.choice()
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = m.addEvent(ctx)
		case 2:
			err = m.findEvent(ctx)
		case 3:
			err = m.removeEvent(ctx)
		case 4:
			err = m.listEvents(ctx)
		case 5:
			return nil
		default:
			m.printf("(!) Invalid choice.\n")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) ticketLoop(ctx context.Context) error {
	for {
		m.printf("\n--- Ticket Management Menu ---\n")
		m.printf("1. Issue Ticket\n")
		m.printf("2. Search for Ticket (by Seat & Event Code)\n")
		m.printf("3. Print List of Tickets for an Event\n")
		m.printf("4. Return to Main Menu\n")
		m.printf("Select [1-4]: ")

		choice, err := m.choice()
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = m.issueTicket(ctx)
		case 2:
			err = m.findTicket(ctx)
		case 3:
			err = m.listTickets(ctx)
		case 4:
			return nil
		default:
			m.printf("(!) Invalid choice.\n")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) addEvent(ctx context.Context) error {
	m.printf("\n--- Add New Event ---\n")
	m.printf("Enter event code (integer): ")
	code, ok, err := m.code()
	if err != nil || !ok {
		return err
	}

	if _, err := m.query.FindEvent(ctx, code); err == nil {
		m.printf("(!) Error: An event with this code already exists.\n")
		return nil
	}

	ev := domain.Event{Code: code}
	for _, p := range []struct {
		prompt string
		dst    *string
	}{
		{"Enter event title: ", &ev.Title},
		{"Enter date (DD/MM/YYYY): ", &ev.Date},
		{"Enter time (HH:MM): ", &ev.Time},
	} {
		m.printf("%s", p.prompt)
		if *p.dst, err = m.line(); err != nil {
			return err
		}
	}

	if err := m.admin.AddEvent(ctx, ev); err != nil {
		return m.report(err)
	}
	m.printf("-> Event '%s' added successfully.\n", ev.Title)
	return nil
}

func (m *Menu) findEvent(ctx context.Context) error {
	m.printf("\n--- Search for Event ---\n")
	m.printf("Enter event code to search for: ")
	code, ok, err := m.code()
	if err != nil || !ok {
		return err
	}

	ev, err := m.query.FindEvent(ctx, code)
	if err != nil {
		if errors.Is(err, query.ErrEventNotFound) {
			m.printf("(!) No event found with code %d.\n", code)
			return nil
		}
		return m.report(err)
	}

	m.printf("-> Event found:\n")
	m.printEvent(*ev)
	return nil
}

func (m *Menu) removeEvent(ctx context.Context) error {
	m.printf("\n--- Delete Event ---\n")
	m.printf("Enter event code to delete: ")
	code, ok, err := m.code()
	if err != nil || !ok {
		return err
	}

	removed, err := m.admin.RemoveEvent(ctx, code)
	if err != nil {
		if errors.Is(err, admin.ErrEventNotFound) {
			m.printf("(!) No event found with code %d.\n", code)
			return nil
		}
		return m.report(err)
	}

	m.printf("-> Deleted %d tickets associated with the event.\n", removed)
	m.printf("-> Event with code %d and all its tickets have been deleted.\n", code)
	return nil
}

func (m *Menu) listEvents(ctx context.Context) error {
	events, err := m.query.ListEvents(ctx)
	if err != nil {
		return m.report(err)
	}

	m.printf("\n--- LIST OF ALL EVENTS ---\n")
	for _, ev := range events {
		m.printEvent(ev)
	}
	m.printf("--- END OF LIST ---\n")
	return nil
}

func (m *Menu) issueTicket(ctx context.Context) error {
	m.printf("\n--- Issue Ticket ---\n")
	m.printf("Enter event code: ")
	code, ok, err := m.code()
	if err != nil || !ok {
		return err
	}

	if _, err := m.query.FindEvent(ctx, code); err != nil {
		m.printf("(!) Error: No event exists with code %d.\n", code)
		return nil
	}

	t := domain.Ticket{EventCode: code}
	m.printf("Enter seat (e.g., c149): ")
	if t.Seat, err = m.line(); err != nil {
		return err
	}
	if err := domain.ValidateSeat(t.Seat); err != nil {
		return m.report(err)
	}
	if _, err := m.query.FindTicket(ctx, code, t.Seat); err == nil {
		return m.report(admin.ErrSeatTaken, t.Seat)
	}

	for _, p := range []struct {
		prompt string
		dst    *string
	}{
		{"Enter spectator's Tax ID: ", &t.TaxID},
		{"Enter spectator's first name: ", &t.FirstName},
		{"Enter spectator's last name: ", &t.LastName},
	} {
		m.printf("%s", p.prompt)
		if *p.dst, err = m.line(); err != nil {
			return err
		}
	}

	if err := m.admin.AddTicket(ctx, t); err != nil {
		return m.report(err, t.Seat)
	}
	m.printf("-> Ticket for seat %s issued successfully.\n", t.Seat)
	return nil
}

func (m *Menu) findTicket(ctx context.Context) error {
	m.printf("\n--- Search for Ticket ---\n")
	m.printf("Enter event code: ")
	code, ok, err := m.code()
	if err != nil || !ok {
		return err
	}

	m.printf("Enter seat number (e.g., c149): ")
	seat, err := m.line()
	if err != nil {
		return err
	}

	t, err := m.query.FindTicket(ctx, code, seat)
	if err != nil {
		if errors.Is(err, query.ErrTicketNotFound) {
			m.printf("(!) No booking found for seat %s in event %d.\n", seat, code)
			return nil
		}
		return m.report(err)
	}

	m.printf("-> Ticket found:\n")
	m.printTicket(*t)
	return nil
}

func (m *Menu) listTickets(ctx context.Context) error {
	m.printf("\n--- Print Tickets for an Event ---\n")
	m.printf("Enter event code: ")
	code, ok, err := m.code()
	if err != nil || !ok {
		return err
	}

	tickets, err := m.query.ListTickets(ctx, code)
	if err != nil {
		if errors.Is(err, query.ErrEventNotFound) {
			m.printf("(!) Error: No event exists with code %d.\n", code)
			return nil
		}
		return m.report(err)
	}

	m.printf("\n--- LIST OF TICKETS FOR EVENT %d ---\n", code)
	for _, t := range tickets {
		m.printTicket(t)
	}
	m.printf("--- END OF LIST ---\n")
	return nil
}

// report prints a user-facing message for the known failures and hands
// anything else back to the caller.
func (m *Menu) report(err error, seat ...string) error {
	var fe *domain.FieldError
	switch {
	case errors.Is(err, domain.ErrInvalidSeat):
		m.printf("(!) Error: Invalid seat. Section 'a'-'h' and number 1-500.\n")
	case errors.Is(err, domain.ErrInvalidCode):
		m.printf("(!) Invalid code.\n")
	case errors.As(err, &fe):
		m.printf("(!) Error: %s.\n", fe.Error())
	case errors.Is(err, admin.ErrEventConflict):
		m.printf("(!) Error: An event with this code already exists.\n")
	case errors.Is(err, admin.ErrEventNotFound):
		m.printf("(!) Error: The event no longer exists.\n")
	case errors.Is(err, admin.ErrSeatTaken):
		s := ""
		if len(seat) > 0 {
			s = seat[0] + " "
		}
		m.printf("(!) Error: Seat %sis already booked for this event.\n", s)
	default:
		return err
	}
	return nil
}

func (m *Menu) printEvent(ev domain.EventView) {
	m.printf("%s\n", rule)
	m.printf("  Event Code: %d\n", ev.Code)
	m.printf("  Title: %s\n", ev.Title)
	m.printf("  Date: %s\n", ev.Date)
	m.printf("  Time: %s\n", ev.Time)
	m.printf("%s\n", rule)
}

func (m *Menu) printTicket(t domain.TicketView) {
	m.printf("%s\n", rule)
	m.printf("  Event (Code): %d\n", t.EventCode)
	m.printf("  Seat: %s\n", t.Seat)
	m.printf("  First Name: %s\n", t.FirstName)
	m.printf("  Last Name: %s\n", t.LastName)
	m.printf("  Tax ID: %s\n", t.TaxID)
	m.printf("%s\n", rule)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

func (m *Menu) line() (string, error) {
	if !m.in.Scan() {
		return "", errInputClosed
	}
	return strings.TrimRight(m.in.Text(), "\r"), nil
}

// choice reads a menu selection; anything that is not a number yields -1.
func (m *Menu) choice() (int, error) {
	s, err := m.line()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1, nil
	}
	return n, nil
}

// code reads an event code. ok is false when the input was rejected.
func (m *Menu) code() (code int64, ok bool, err error) {
	s, err := m.line()
	if err != nil {
		return 0, false, err
	}
	code, perr := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if perr != nil || domain.ValidateCode(code) != nil {
		m.printf("(!) Invalid code.\n")
		return 0, false, nil
	}
	return code, true, nil
}
