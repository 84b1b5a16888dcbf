package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ledger is the appointment collaborator the conversation core books and
// cancels against.
type Ledger interface {
	GetAvailableSlots(ctx context.Context, doctorID string, date time.Time) ([]TimeSlot, error)
	Book(ctx context.Context, req BookingRequest) (Appointment, error)
	GetConfirmedByPatientName(ctx context.Context, patientName string) ([]ConfirmationRecord, error)
	Cancel(ctx context.Context, appointmentID string) error
	LogConfirmed(ctx context.Context, appt Appointment, patientName, doctorName, clinicName, sessionID string) error
}

// InMemoryLedger keeps appointments and confirmation records in process
// memory behind a single mutex. Availability is recomputed from the booked
// set on every read and again right before commit; this narrows but does
// not eliminate double-booking races, there is no compare-and-book.
type InMemoryLedger struct {
	mu           sync.Mutex
	now          func() time.Time
	appointments []Appointment
	records      []*ConfirmationRecord
}

// NewInMemoryLedger creates an empty ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{now: time.Now}
}

// GetAvailableSlots returns the slot grid for a doctor and date with booked
// times marked unavailable.
func (l *InMemoryLedger) GetAvailableSlots(ctx context.Context, doctorID string, date time.Time) ([]TimeSlot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return DaySlots(date, l.now(), l.bookedStarts(doctorID, date)), nil
}

// bookedStarts collects start times already taken for the doctor on the
// date. Caller holds l.mu.
func (l *InMemoryLedger) bookedStarts(doctorID string, date time.Time) map[TimeOfDay]struct{} {
	booked := make(map[TimeOfDay]struct{})
	for _, appt := range l.appointments {
		if appt.DoctorID == doctorID && sameDate(appt.Date, date) {
			booked[appt.Slot.Start] = struct{}{}
		}
	}
	return booked
}

// Book commits an appointment for the requested slot. The available set is
// re-derived under the lock; if the slot id no longer resolves the booking
// proceeds with a degenerate zero-duration slot rather than failing.
func (l *InMemoryLedger) Book(ctx context.Context, req BookingRequest) (Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot := TimeSlot{SlotID: req.SlotID, IsAvailable: false}
	for _, s := range DaySlots(req.Date, l.now(), l.bookedStarts(req.DoctorID, req.Date)) {
		if s.SlotID == req.SlotID {
			slot = TimeSlot{SlotID: s.SlotID, Start: s.Start, End: s.End, IsAvailable: false}
			break
		}
	}

	appt := Appointment{
		ID:        uuid.NewString(),
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		ClinicID:  req.ClinicID,
		Date:      req.Date,
		Slot:      slot,
		Status:    StatusConfirmed,
		Reason:    req.Reason,
		CreatedAt: l.now().UTC(),
	}
	l.appointments = append(l.appointments, appt)
	return appt, nil
}

// LogConfirmed appends the denormalized confirmation record that powers the
// cancellation flow.
func (l *InMemoryLedger) LogConfirmed(ctx context.Context, appt Appointment, patientName, doctorName, clinicName, sessionID string) error {
	if appt.ID == "" {
		return fmt.Errorf("scheduling: cannot log confirmation without appointment id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, &ConfirmationRecord{
		AppointmentID: appt.ID,
		PatientName:   patientName,
		DoctorName:    doctorName,
		ClinicName:    clinicName,
		SessionID:     sessionID,
		Date:          appt.Date,
		Start:         appt.Slot.Start,
		End:           appt.Slot.End,
		Status:        StatusConfirmed,
		CreatedAt:     appt.CreatedAt,
	})
	return nil
}

// GetConfirmedByPatientName returns all still-confirmed records for the
// patient.
func (l *InMemoryLedger) GetConfirmedByPatientName(ctx context.Context, patientName string) ([]ConfirmationRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []ConfirmationRecord
	for _, rec := range l.records {
		if rec.PatientName == patientName && rec.Status == StatusConfirmed {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// Cancel marks the confirmation record cancelled and stamps the update
// time. Cancelling twice, or cancelling an unknown id, is a no-op.
func (l *InMemoryLedger) Cancel(ctx context.Context, appointmentID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, rec := range l.records {
		if rec.AppointmentID == appointmentID {
			now := l.now().UTC()
			rec.Status = StatusCancelled
			rec.UpdatedAt = &now
		}
	}
	return nil
}
