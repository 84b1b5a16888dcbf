package scheduling

import (
	"context"

	"github.com/careloop/hospital-chatbot/pkg/logging"
)

// Coordinator turns a selected slot into a confirmed appointment and
// records the confirmation with the ledger.
type Coordinator struct {
	ledger Ledger
	logger *logging.Logger
}

// NewCoordinator creates a booking coordinator.
func NewCoordinator(ledger Ledger, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{ledger: ledger, logger: logger}
}

// Book commits the booking. The ledger guarantees a confirmed appointment
// with a fresh id even when the slot id has gone stale.
func (c *Coordinator) Book(ctx context.Context, req BookingRequest) (Appointment, error) {
	return c.ledger.Book(ctx, req)
}

// LogConfirmed writes the confirmation record best-effort. A failure is
// reported to the operator log and never reaches the caller.
func (c *Coordinator) LogConfirmed(ctx context.Context, appt Appointment, patientName, doctorName, clinicName, sessionID string) {
	if err := c.ledger.LogConfirmed(ctx, appt, patientName, doctorName, clinicName, sessionID); err != nil {
		c.logger.Error("scheduling: failed to log confirmed appointment",
			"error", err,
			"appointment_id", appt.ID,
			"session_id", sessionID,
		)
	}
}
