package chatbot

// State identifies where a conversation is in the booking workflow.
type State string

const (
	StateInitial                       State = "initial"
	StateAwaitingDateOfBirth           State = "awaiting_date_of_birth"
	StateAuthenticated                 State = "authenticated"
	StateAwaitingClinicSelection       State = "awaiting_clinic_selection"
	StateAwaitingBookingOrCancelChoice State = "awaiting_booking_or_cancel_choice"
	StateAwaitingDoctorOrSymptom       State = "awaiting_doctor_or_symptom"
	StateAwaitingDoctorSelection       State = "awaiting_doctor_selection"
	StateAwaitingSlotSelection         State = "awaiting_slot_selection"
	StateBookingConfirmed              State = "booking_confirmed"
	StateAwaitingCancellationSelection State = "awaiting_cancellation_selection"
	StateCompleted                     State = "completed"
)

// Terminal reports whether the state ends the conversation.
func (s State) Terminal() bool {
	return s == StateBookingConfirmed || s == StateCompleted
}
