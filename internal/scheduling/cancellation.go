package scheduling

import (
	"context"
	"time"
)

// CancellationFlow lists a patient's future confirmed appointments and
// cancels a chosen one.
type CancellationFlow struct {
	ledger Ledger
	now    func() time.Time
}

// NewCancellationFlow creates a cancellation flow over the ledger.
func NewCancellationFlow(ledger Ledger) *CancellationFlow {
	return &CancellationFlow{ledger: ledger, now: time.Now}
}

// ListCancellable returns the patient's confirmed appointments that are
// still in the future: date strictly after today, or today with a start
// time strictly after the current time of day. An empty result is a normal
// outcome, not an error.
func (f *CancellationFlow) ListCancellable(ctx context.Context, patientName string) ([]CancellableAppointment, error) {
	records, err := f.ledger.GetConfirmedByPatientName(ctx, patientName)
	if err != nil {
		return nil, err
	}

	now := f.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	nowSeconds := now.Hour()*3600 + now.Minute()*60 + now.Second()

	var out []CancellableAppointment
	for _, rec := range records {
		date := time.Date(rec.Date.Year(), rec.Date.Month(), rec.Date.Day(), 0, 0, 0, 0, now.Location())
		if date.Before(today) {
			continue
		}
		if date.Equal(today) && int(rec.Start)*60 <= nowSeconds {
			continue
		}
		out = append(out, CancellableAppointment{
			AppointmentID: rec.AppointmentID,
			DoctorName:    rec.DoctorName,
			ClinicName:    rec.ClinicName,
			Date:          rec.Date,
			Start:         rec.Start,
			End:           rec.End,
		})
	}
	return out, nil
}

// Cancel marks the appointment cancelled. Safe to call twice.
func (f *CancellationFlow) Cancel(ctx context.Context, appointmentID string) error {
	return f.ledger.Cancel(ctx, appointmentID)
}
