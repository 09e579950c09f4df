package menu_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/boxoffice/internal/repository/memory"
	"github.com/kirinyoku/boxoffice/internal/service"
	"github.com/kirinyoku/boxoffice/internal/transport/menu"
)

func run(t *testing.T, lines ...string) (string, *service.Services) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svcs := service.NewServices(memory.NewStore(), nil, nil, nil, logger, service.Config{})

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, menu.New(svcs, in, &out, logger).Run(context.Background()))
	return out.String(), svcs
}

func TestMenu_EventAndTicketSession(t *testing.T) {
	out, svcs := run(t,
		"1",                                          // events
		"1", "101", "Concert", "01/01/2025", "20:00", // add
		"1", "101", // add duplicate
		"2", "101", // search
		"4",                                             // list
		"5",                                             // back
		"2",                                             // tickets
		"1", "101", "c149", "1234567890", "Ana", "Pop", // issue
		"1", "101", "c149", // seat taken
		"1", "999", // no event
		"1", "101", "i1", // bad seat
		"3", "101", // list tickets
		"2", "101", "c150", // search missing
		"4", // back
		"1", "3", "101", "5", // delete event
		"3", // exit
	)

	assert.Contains(t, out, "-> Event 'Concert' added successfully.")
	assert.Contains(t, out, "(!) Error: An event with this code already exists.")
	assert.Contains(t, out, "-> Event found:")
	assert.Contains(t, out, "  Event Code: 101\n  Title: Concert\n")
	assert.Contains(t, out, "-> Ticket for seat c149 issued successfully.")
	assert.Contains(t, out, "(!) Error: Seat c149 is already booked for this event.")
	assert.Contains(t, out, "(!) Error: No event exists with code 999.")
	assert.Contains(t, out, "(!) Error: Invalid seat. Section 'a'-'h' and number 1-500.")
	assert.Contains(t, out, "--- LIST OF TICKETS FOR EVENT 101 ---")
	assert.Contains(t, out, "  Seat: c149\n")
	assert.Contains(t, out, "(!) No booking found for seat c150 in event 101.")
	assert.Contains(t, out, "-> Deleted 1 tickets associated with the event.")
	assert.Contains(t, out, "Program terminated successfully.")

	assert.Zero(t, svcs.Query.Stats(context.Background()).Events)
}

func TestMenu_RejectsBadInput(t *testing.T) {
	out, _ := run(t,
		"x",
		"1",
		"1", "abc",
		"2", "-3",
		"9",
		"5",
		"3",
	)

	assert.Contains(t, out, "(!) Invalid choice. Please try again.")
	assert.Equal(t, 2, strings.Count(out, "(!) Invalid code."))
	assert.Contains(t, out, "(!) Invalid choice.\n")
}

func TestMenu_InvalidEventFields(t *testing.T) {
	out, _ := run(t,
		"1",
		"1", "7", "Late show", "2025-01-01", "20:00",
		"5",
		"3",
	)

	assert.Contains(t, out, "(!) Error: invalid field date: datetime=02/01/2006.")
	assert.NotContains(t, out, "added successfully")
}

func TestMenu_EndOfInputReleasesStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svcs := service.NewServices(memory.NewStore(), nil, nil, nil, logger, service.Config{})
	ctx := context.Background()

	in := strings.NewReader("1\n1\n5\nGala\n02/02/2025\n19:30\n")
	var out bytes.Buffer
	require.NoError(t, menu.New(svcs, in, &out, logger).Run(ctx))

	assert.Contains(t, out.String(), "-> Event 'Gala' added successfully.")
	assert.Contains(t, out.String(), "Deleting all data")
	events, err := svcs.Query.ListEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}
