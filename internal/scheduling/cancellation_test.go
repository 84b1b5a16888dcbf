package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedConfirmed(t *testing.T, l *InMemoryLedger, date time.Time, start TimeOfDay, patient string) Appointment {
	t.Helper()
	appt, err := l.Book(context.Background(), BookingRequest{
		PatientID: "p-1",
		DoctorID:  "doc-1",
		Date:      date,
		SlotID:    SlotID(date, start),
	})
	require.NoError(t, err)
	require.NoError(t, l.LogConfirmed(context.Background(), appt, patient, "Sarah Mitchell", "City Care Clinic", "sess-1"))
	return appt
}

func TestListCancellableKeepsOnlyFutureAppointments(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	bookTime := time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local)

	l := newTestLedger(bookTime)
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	seedConfirmed(t, l, today.AddDate(0, 0, -1), NewTimeOfDay(9, 0), "John Smith")  // yesterday
	seedConfirmed(t, l, today, NewTimeOfDay(9, 30), "John Smith")                   // today, already past
	seedConfirmed(t, l, today, NewTimeOfDay(10, 0), "John Smith")                   // today, exactly now
	future := seedConfirmed(t, l, today, NewTimeOfDay(10, 10), "John Smith")        // today, upcoming
	tomorrow := seedConfirmed(t, l, today.AddDate(0, 0, 1), NewTimeOfDay(9, 0), "John Smith")

	f := NewCancellationFlow(l)
	f.now = func() time.Time { return now }

	out, err := f.ListCancellable(context.Background(), "John Smith")
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, future.ID, out[0].AppointmentID)
	assert.Equal(t, tomorrow.ID, out[1].AppointmentID)
}

func TestListCancellableIncludesStartOneSecondAhead(t *testing.T) {
	// 09:59:59 against a 10:00 start: still one second in the future.
	now := time.Date(2026, 3, 2, 9, 59, 59, 0, time.Local)
	bookTime := time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local)

	l := newTestLedger(bookTime)
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	appt := seedConfirmed(t, l, today, NewTimeOfDay(10, 0), "John Smith")

	f := NewCancellationFlow(l)
	f.now = func() time.Time { return now }

	out, err := f.ListCancellable(context.Background(), "John Smith")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, appt.ID, out[0].AppointmentID)
}

func TestListCancellableEmptyForUnknownPatient(t *testing.T) {
	l := newTestLedger(time.Now())
	f := NewCancellationFlow(l)

	out, err := f.ListCancellable(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCancelThroughFlowRemovesFromListing(t *testing.T) {
	bookTime := time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local)
	l := newTestLedger(bookTime)
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	appt := seedConfirmed(t, l, today.AddDate(0, 0, 2), NewTimeOfDay(9, 0), "John Smith")

	f := NewCancellationFlow(l)
	f.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local) }

	require.NoError(t, f.Cancel(context.Background(), appt.ID))

	out, err := f.ListCancellable(context.Background(), "John Smith")
	require.NoError(t, err)
	assert.Empty(t, out)
}
