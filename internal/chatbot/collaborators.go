package chatbot

import (
	"context"

	"github.com/careloop/hospital-chatbot/internal/directory"
	"github.com/careloop/hospital-chatbot/internal/scheduling"
	"github.com/careloop/hospital-chatbot/internal/transcript"
)

// Collaborator contracts. The engine only ever talks to these;
// concrete implementations live in internal/directory and
// internal/scheduling.

type PatientDirectory interface {
	Authenticate(ctx context.Context, dateOfBirth string) (directory.AuthResult, error)
}

type ClinicDirectory interface {
	GetAll(ctx context.Context) ([]directory.Clinic, error)
	GetByID(ctx context.Context, id string) (*directory.Clinic, error)
	GetByPatientName(ctx context.Context, patientName string) (*directory.Clinic, error)
}

type DoctorDirectory interface {
	GetByClinicName(ctx context.Context, clinicName string) ([]directory.Doctor, error)
	GetBySymptoms(ctx context.Context, symptoms string) ([]directory.Doctor, error)
	GetByID(ctx context.Context, id string) (*directory.Doctor, error)
}

type SlotPlanner interface {
	Weekly(ctx context.Context, doctorID string) ([]scheduling.DatedSlot, error)
}

type BookingService interface {
	Book(ctx context.Context, req scheduling.BookingRequest) (scheduling.Appointment, error)
	LogConfirmed(ctx context.Context, appt scheduling.Appointment, patientName, doctorName, clinicName, sessionID string)
}

type CancellationService interface {
	ListCancellable(ctx context.Context, patientName string) ([]scheduling.CancellableAppointment, error)
	Cancel(ctx context.Context, appointmentID string) error
}

type TranscriptLog interface {
	Append(ctx context.Context, entry transcript.Entry) error
}
