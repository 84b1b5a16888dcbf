package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(now time.Time) *InMemoryLedger {
	l := NewInMemoryLedger()
	l.now = func() time.Time { return now }
	return l
}

func TestBookRemovesSlotFromAvailability(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	date := now.AddDate(0, 0, 1)
	l := newTestLedger(now)
	ctx := context.Background()

	slotID := SlotID(date, NewTimeOfDay(9, 0))
	appt, err := l.Book(ctx, BookingRequest{
		PatientID: "p-1",
		DoctorID:  "doc-1",
		ClinicID:  "c-1",
		Date:      date,
		SlotID:    slotID,
		Reason:    "fever",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, StatusConfirmed, appt.Status)
	assert.Equal(t, NewTimeOfDay(9, 0), appt.Slot.Start)
	assert.Equal(t, NewTimeOfDay(9, 10), appt.Slot.End)

	slots, err := l.GetAvailableSlots(ctx, "doc-1", date)
	require.NoError(t, err)
	for _, s := range slots {
		if s.SlotID == slotID {
			assert.False(t, s.IsAvailable)
		}
	}

	// Another doctor's book keeps this one free.
	other, err := l.GetAvailableSlots(ctx, "doc-2", date)
	require.NoError(t, err)
	assert.True(t, other[0].IsAvailable)
}

func TestBookStaleSlotIDStillConfirms(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	l := newTestLedger(now)

	// A slot id that no longer resolves on the requested date.
	appt, err := l.Book(context.Background(), BookingRequest{
		PatientID: "p-1",
		DoctorID:  "doc-1",
		Date:      now.AddDate(0, 0, 1),
		SlotID:    "20200101_09:00",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, StatusConfirmed, appt.Status)
	assert.Equal(t, "20200101_09:00", appt.Slot.SlotID)
	assert.Equal(t, TimeOfDay(0), appt.Slot.Start)
	assert.Equal(t, TimeOfDay(0), appt.Slot.End)
}

func TestLogConfirmedAndListByPatient(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	l := newTestLedger(now)
	ctx := context.Background()
	date := now.AddDate(0, 0, 1)

	appt, err := l.Book(ctx, BookingRequest{
		PatientID: "p-1",
		DoctorID:  "doc-1",
		Date:      date,
		SlotID:    SlotID(date, NewTimeOfDay(9, 0)),
	})
	require.NoError(t, err)
	require.NoError(t, l.LogConfirmed(ctx, appt, "John Smith", "Sarah Mitchell", "City Care Clinic", "sess-1"))

	records, err := l.GetConfirmedByPatientName(ctx, "John Smith")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, appt.ID, records[0].AppointmentID)
	assert.Equal(t, "Sarah Mitchell", records[0].DoctorName)
	assert.Equal(t, "City Care Clinic", records[0].ClinicName)

	none, err := l.GetConfirmedByPatientName(ctx, "Maria Lopez")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLogConfirmedRejectsMissingID(t *testing.T) {
	l := newTestLedger(time.Now())
	err := l.LogConfirmed(context.Background(), Appointment{}, "John Smith", "Sarah Mitchell", "City Care Clinic", "sess-1")
	assert.Error(t, err)
}

func TestCancelIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	l := newTestLedger(now)
	ctx := context.Background()
	date := now.AddDate(0, 0, 1)

	appt, err := l.Book(ctx, BookingRequest{
		PatientID: "p-1",
		DoctorID:  "doc-1",
		Date:      date,
		SlotID:    SlotID(date, NewTimeOfDay(9, 0)),
	})
	require.NoError(t, err)
	require.NoError(t, l.LogConfirmed(ctx, appt, "John Smith", "Sarah Mitchell", "City Care Clinic", "sess-1"))

	require.NoError(t, l.Cancel(ctx, appt.ID))
	require.NoError(t, l.Cancel(ctx, appt.ID))

	records, err := l.GetConfirmedByPatientName(ctx, "John Smith")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCancelUnknownIDIsNoop(t *testing.T) {
	l := newTestLedger(time.Now())
	assert.NoError(t, l.Cancel(context.Background(), "does-not-exist"))
}
