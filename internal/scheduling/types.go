package scheduling

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// It serializes as "HH:MM" so slot and appointment snapshots survive a
// JSON round trip unchanged.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// TimeOfDayFrom extracts the wall-clock portion of t.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("scheduling: invalid time of day %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("scheduling: time of day %q out of range", s)
	}
	return NewTimeOfDay(hour, minute), nil
}

// Hour returns the hour component (0-23).
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component (0-59).
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// AddMinutes returns the time of day m minutes later.
func (t TimeOfDay) AddMinutes(m int) TimeOfDay { return t + TimeOfDay(m) }

// String renders the 24-hour "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Clock renders the 12-hour form shown to patients, e.g. "09:10 AM".
func (t TimeOfDay) Clock() string {
	hour := t.Hour()
	suffix := "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		hour -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", hour, t.Minute(), suffix)
}

// MarshalJSON encodes the "HH:MM" form.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes the "HH:MM" form.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeSlot is one bookable interval for a doctor on a given date.
type TimeSlot struct {
	SlotID      string    `json:"slotId"`
	Start       TimeOfDay `json:"start"`
	End         TimeOfDay `json:"end"`
	IsAvailable bool      `json:"isAvailable"`
}

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

// Appointment is a booked slot for a patient.
type Appointment struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patientId"`
	DoctorID  string     `json:"doctorId"`
	ClinicID  string     `json:"clinicId"`
	Date      time.Time  `json:"date"`
	Slot      TimeSlot   `json:"slot"`
	Status    Status     `json:"status"`
	Reason    string     `json:"reason"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ConfirmationRecord is the denormalized confirmed-appointment record the
// ledger keeps for later listing and cancellation. It carries display names
// so the cancellation flow needs no extra directory round trips.
type ConfirmationRecord struct {
	AppointmentID string     `json:"appointmentId"`
	PatientName   string     `json:"patientName"`
	DoctorName    string     `json:"doctorName"`
	ClinicName    string     `json:"clinicName"`
	SessionID     string     `json:"sessionId"`
	Date          time.Time  `json:"date"`
	Start         TimeOfDay  `json:"start"`
	End           TimeOfDay  `json:"end"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// CancellableAppointment is the projection serialized into session context
// so the next turn can resolve the patient's selection without another
// ledger round trip.
type CancellableAppointment struct {
	AppointmentID string    `json:"appointmentId"`
	DoctorName    string    `json:"doctorName"`
	ClinicName    string    `json:"clinicName"`
	Date          time.Time `json:"date"`
	Start         TimeOfDay `json:"start"`
	End           TimeOfDay `json:"end"`
}

// DatedSlot is one entry of the weekly sweep presented to the patient.
// Selection is by position in the sweep list, so the serialized order is
// part of the contract.
type DatedSlot struct {
	Date      time.Time `json:"date"`
	DateLabel string    `json:"dateLabel"`
	SlotID    string    `json:"slotId"`
	Start     TimeOfDay `json:"startTime"`
	End       TimeOfDay `json:"endTime"`
}

// BookingRequest carries everything the ledger needs to commit a booking.
type BookingRequest struct {
	PatientID string
	DoctorID  string
	ClinicID  string
	Date      time.Time
	SlotID    string
	Reason    string
}
