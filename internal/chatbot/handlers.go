package chatbot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/careloop/hospital-chatbot/internal/directory"
	"github.com/careloop/hospital-chatbot/internal/scheduling"
)

const displayDateLayout = "Monday, 02 January 2006"

const bookOrCancelPrompt = "Would you like to:\n" +
	"1. Book an appointment\n" +
	"2. Cancel appointment\n\n" +
	"Please type '1' or '2'."

func (e *Engine) handleInitial(sess *Session) *Reply {
	sess.State = StateAwaitingDateOfBirth
	return &Reply{
		SessionID: sess.ID,
		Message: "Welcome to Hospital Booking System! 🏥\n\n" +
			"To get started with your appointment booking, please enter your date of birth for verification (format: DD-MM-YYYY).",
		State: sess.State,
	}
}

func (e *Engine) handleDateOfBirth(ctx context.Context, sess *Session, dobInput string) (*Reply, error) {
	cctx, cancel := e.call(ctx)
	defer cancel()

	auth, err := e.patients.Authenticate(cctx, dobInput)
	if err != nil {
		return nil, fmt.Errorf("authenticate patient: %w", err)
	}

	if !auth.Success {
		return &Reply{
			SessionID: sess.ID,
			Message:   auth.Message + "\nPlease try again with your correct date of birth.",
			State:     StateAwaitingDateOfBirth,
		}, nil
	}

	sess.PatientID = auth.PatientID
	sess.PatientName = auth.PatientName
	sess.Context[KeyDateOfBirth] = StringValue(dobInput)
	sess.Context[KeyPatientName] = StringValue(auth.PatientName)
	sess.State = StateAuthenticated

	return e.handleAuthenticated(ctx, sess)
}

func (e *Engine) handleAuthenticated(ctx context.Context, sess *Session) (*Reply, error) {
	patientName := sess.PatientName

	cctx, cancel := e.call(ctx)
	clinic, err := e.clinics.GetByPatientName(cctx, patientName)
	cancel()
	if err != nil {
		e.logger.Error("clinic lookup by patient failed", "session_id", sess.ID, "error", err)
	}

	if clinic != nil {
		sess.Context[KeyClinicID] = IDValue(clinic.ID)
		sess.Context[KeyClinicName] = StringValue(clinic.Name)
		sess.State = StateAwaitingBookingOrCancelChoice

		return &Reply{
			SessionID: sess.ID,
			Message: fmt.Sprintf("Great! You are verified as %s. You are registered with %s.\n\n%s",
				patientName, clinic.Name, bookOrCancelPrompt),
			State: sess.State,
		}, nil
	}

	// No registered clinic on record; let the patient pick one.
	cctx, cancel = e.call(ctx)
	defer cancel()
	clinics, err := e.clinics.GetAll(cctx)
	if err != nil {
		return nil, fmt.Errorf("list clinics: %w", err)
	}

	sess.State = StateAwaitingClinicSelection

	options := make([]ReplyOption, 0, len(clinics))
	for _, c := range clinics {
		options = append(options, ReplyOption{
			ID:      c.ID,
			Display: fmt.Sprintf("%s - %s", c.Name, c.Department),
			Value:   c.ID,
		})
	}

	return &Reply{
		SessionID: sess.ID,
		Message:   "Great! You're verified. Now, please select a clinic from the options below:",
		State:     sess.State,
		Options:   options,
	}, nil
}

func (e *Engine) handleClinicSelection(ctx context.Context, sess *Session, clinicInput string) (*Reply, error) {
	if _, err := uuid.Parse(strings.TrimSpace(clinicInput)); err != nil {
		return &Reply{
			SessionID: sess.ID,
			Message:   "Invalid clinic selection. Please select a valid clinic from the list.",
			State:     sess.State,
		}, nil
	}

	cctx, cancel := e.call(ctx)
	defer cancel()
	clinic, err := e.clinics.GetByID(cctx, strings.TrimSpace(clinicInput))
	if err != nil {
		return nil, fmt.Errorf("clinic lookup: %w", err)
	}
	if clinic == nil {
		return &Reply{
			SessionID: sess.ID,
			Message:   "Clinic not found. Please select a valid clinic.",
			State:     sess.State,
		}, nil
	}

	sess.Context[KeyClinicID] = IDValue(clinic.ID)
	sess.Context[KeyClinicName] = StringValue(clinic.Name)
	sess.State = StateAwaitingBookingOrCancelChoice

	return &Reply{
		SessionID: sess.ID,
		Message:   fmt.Sprintf("You've selected %s.\n\n%s", clinic.Name, bookOrCancelPrompt),
		State:     sess.State,
	}, nil
}

func (e *Engine) handleBookingOrCancelChoice(ctx context.Context, sess *Session, choice string) (*Reply, error) {
	switch strings.TrimSpace(choice) {
	case "1":
		sess.State = StateAwaitingDoctorOrSymptom
		return &Reply{
			SessionID: sess.ID,
			Message: "Would you like to:\n" +
				"1. View all doctors in this clinic\n" +
				"2. Describe your symptoms to get doctor recommendations\n\n" +
				"Please type '1' or '2'.",
			State: sess.State,
		}, nil
	case "2":
		return e.handleCancellationList(ctx, sess)
	}

	return &Reply{
		SessionID: sess.ID,
		Message:   "Please type '1' to book an appointment or '2' to cancel an appointment.",
		State:     sess.State,
	}, nil
}

func (e *Engine) handleCancellationList(ctx context.Context, sess *Session) (*Reply, error) {
	if sess.PatientID == "" {
		return &Reply{
			SessionID: sess.ID,
			Message:   "I could not find your patient record. Please start again.",
			State:     StateInitial,
			Completed: true,
		}, nil
	}

	cctx, cancel := e.call(ctx)
	defer cancel()
	appointments, err := e.cancellation.ListCancellable(cctx, sess.PatientName)
	if err != nil {
		return nil, fmt.Errorf("list cancellable appointments: %w", err)
	}

	// The booking-or-cancel choice stays retryable until the listing
	// call has succeeded.
	sess.State = StateAwaitingCancellationSelection

	if len(appointments) == 0 {
		return &Reply{
			SessionID: sess.ID,
			Message:   "You don’t have any active appointments to cancel.",
			State:     sess.State,
			Completed: true,
		}, nil
	}

	stored, err := ListValue(appointments)
	if err != nil {
		return nil, err
	}
	sess.Context[KeyCancellableAppointments] = stored

	options := make([]ReplyOption, 0, len(appointments))
	for _, a := range appointments {
		options = append(options, ReplyOption{
			ID: a.AppointmentID,
			Display: fmt.Sprintf("Dr. %s at %s on %s from %s to %s",
				a.DoctorName, a.ClinicName, a.Date.Format(displayDateLayout),
				a.Start.Clock(), a.End.Clock()),
			Value: a.AppointmentID,
		})
	}

	return &Reply{
		SessionID: sess.ID,
		Message:   "Here are your active appointments. Please select one to cancel:",
		State:     sess.State,
		Options:   options,
	}, nil
}

func (e *Engine) handleCancellationSelection(ctx context.Context, sess *Session, selection string) (*Reply, error) {
	if _, err := uuid.Parse(strings.TrimSpace(selection)); err != nil {
		return &Reply{
			SessionID: sess.ID,
			Message:   "Invalid selection. Please select a valid appointment.",
			State:     sess.State,
		}, nil
	}

	var appointments []scheduling.CancellableAppointment
	if err := sess.Context[KeyCancellableAppointments].DecodeList(&appointments); err != nil {
		return nil, fmt.Errorf("restore cancellable appointments: %w", err)
	}

	selected := strings.TrimSpace(selection)
	var match *scheduling.CancellableAppointment
	for i := range appointments {
		if appointments[i].AppointmentID == selected {
			match = &appointments[i]
			break
		}
	}
	if match == nil {
		return &Reply{
			SessionID: sess.ID,
			Message:   "Appointment not found.",
			State:     sess.State,
		}, nil
	}

	cctx, cancel := e.call(ctx)
	defer cancel()
	if err := e.cancellation.Cancel(cctx, match.AppointmentID); err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	sess.State = StateCompleted
	e.metrics.ObserveCancellation()
	e.logger.Info("appointment cancelled",
		"session_id", sess.ID,
		"appointment_id", match.AppointmentID,
		"doctor", match.DoctorName)

	return &Reply{
		SessionID: sess.ID,
		Message:   "Your appointment has been cancelled successfully.",
		State:     sess.State,
		Completed: true,
	}, nil
}

func (e *Engine) handleDoctorOrSymptomChoice(ctx context.Context, sess *Session, choice string) (*Reply, error) {
	clinicName := sess.Context[KeyClinicName].AsString()

	switch {
	case strings.TrimSpace(choice) == "1":
		cctx, cancel := e.call(ctx)
		defer cancel()
		doctors, err := e.doctors.GetByClinicName(cctx, clinicName)
		if err != nil {
			return nil, fmt.Errorf("doctors by clinic: %w", err)
		}
		return e.showDoctorSelection(sess, doctors), nil

	case strings.TrimSpace(choice) == "2":
		return &Reply{
			SessionID: sess.ID,
			Message:   "Please describe your symptoms (e.g., 'fever', 'chestPain', 'headech'):",
			State:     StateAwaitingDoctorOrSymptom,
		}, nil

	case len(choice) > 2:
		// Anything longer than a menu digit is treated as a symptom
		// description.
		cctx, cancel := e.call(ctx)
		defer cancel()
		doctors, err := e.doctors.GetBySymptoms(cctx, choice)
		if err != nil {
			return nil, fmt.Errorf("doctors by symptoms: %w", err)
		}
		if len(doctors) == 0 {
			return &Reply{
				SessionID: sess.ID,
				Message:   "No doctors found matching your symptoms. Let me show you all available doctors in this clinic.",
				State:     sess.State,
			}, nil
		}
		sess.Context[KeySymptoms] = StringValue(choice)
		return e.showDoctorSelection(sess, doctors), nil
	}

	return &Reply{
		SessionID: sess.ID,
		Message:   "Please type '1' to view all doctors or '2' to describe your symptoms.",
		State:     sess.State,
	}, nil
}

func (e *Engine) showDoctorSelection(sess *Session, doctors []directory.Doctor) *Reply {
	sess.State = StateAwaitingDoctorSelection

	options := make([]ReplyOption, 0, len(doctors))
	for _, d := range doctors {
		options = append(options, ReplyOption{
			ID:      d.ID,
			Display: fmt.Sprintf("Dr. %s - %s", d.Name, d.Specialization),
			Value:   d.ID,
		})
	}

	return &Reply{
		SessionID: sess.ID,
		Message:   "Here are the available doctors. Please select one:",
		State:     sess.State,
		Options:   options,
	}
}

func (e *Engine) handleDoctorSelection(ctx context.Context, sess *Session, doctorInput string) (*Reply, error) {
	doctorID := strings.TrimSpace(doctorInput)
	if _, err := uuid.Parse(doctorID); err != nil {
		return &Reply{
			SessionID: sess.ID,
			Message:   "Invalid doctor selection. Please select a valid doctor from the list.",
			State:     sess.State,
		}, nil
	}

	cctx, cancel := e.call(ctx)
	doctor, err := e.doctors.GetByID(cctx, doctorID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("doctor lookup: %w", err)
	}
	if doctor == nil {
		return &Reply{
			SessionID: sess.ID,
			Message:   "Doctor not found. Please select a valid doctor.",
			State:     sess.State,
		}, nil
	}

	sess.Context[KeyDoctorID] = IDValue(doctor.ID)
	sess.Context[KeyDoctorName] = StringValue(doctor.Name)

	cctx, cancel = e.call(ctx)
	defer cancel()
	slots, err := e.planner.Weekly(cctx, doctor.ID)
	if err != nil {
		return nil, fmt.Errorf("weekly slots: %w", err)
	}

	stored, err := ListValue(slots)
	if err != nil {
		return nil, err
	}
	sess.Context[KeyAvailableSlotsWithDates] = stored
	sess.State = StateAwaitingSlotSelection

	options := make([]ReplyOption, 0, len(slots))
	for i, s := range slots {
		options = append(options, ReplyOption{
			ID:      strconv.Itoa(i),
			Display: fmt.Sprintf("%s - %s - %s", s.DateLabel, s.Start.Clock(), s.End.Clock()),
			Value:   strconv.Itoa(i),
		})
	}

	return &Reply{
		SessionID: sess.ID,
		Message:   fmt.Sprintf("You've selected Dr. %s.\n\nAvailable time slots:", doctor.Name),
		State:     sess.State,
		Options:   options,
	}, nil
}

func (e *Engine) handleSlotSelection(ctx context.Context, sess *Session, slotInput string) (*Reply, error) {
	invalid := &Reply{
		SessionID: sess.ID,
		Message:   "Invalid slot selection. Please select a valid time slot.",
		State:     sess.State,
	}

	trimmed := strings.TrimSpace(slotInput)
	if trimmed == "" {
		return invalid, nil
	}
	slotIndex, err := strconv.Atoi(trimmed)
	if err != nil {
		return invalid, nil
	}

	var slots []scheduling.DatedSlot
	if err := sess.Context[KeyAvailableSlotsWithDates].DecodeList(&slots); err != nil {
		return nil, fmt.Errorf("restore available slots: %w", err)
	}
	if slotIndex < 0 || slotIndex >= len(slots) {
		return invalid, nil
	}
	slot := slots[slotIndex]

	reason := "General checkup"
	if v, ok := sess.Context[KeySymptoms]; ok && v.AsString() != "" {
		reason = v.AsString()
	}

	req := scheduling.BookingRequest{
		PatientID: sess.PatientID,
		DoctorID:  sess.Context[KeyDoctorID].AsString(),
		ClinicID:  sess.Context[KeyClinicID].AsString(),
		Date:      slot.Date,
		SlotID:    slot.SlotID,
		Reason:    reason,
	}

	cctx, cancel := e.call(ctx)
	appointment, err := e.booking.Book(cctx, req)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("book appointment: %w", err)
	}

	sess.Context[KeyAppointmentID] = IDValue(appointment.ID)
	sess.State = StateBookingConfirmed

	doctorName := sess.Context[KeyDoctorName].AsString()
	clinicName := sess.Context[KeyClinicName].AsString()
	patientName := sess.PatientName

	e.metrics.ObserveBooking()
	e.logger.Info("appointment confirmed",
		"appointment_id", appointment.ID,
		"patient", patientName,
		"patient_id", sess.PatientID,
		"doctor", doctorName,
		"clinic", clinicName,
		"date", slot.Date.Format("2006-01-02"),
		"start", slot.Start.String(),
		"end", slot.End.String(),
		"reason", reason,
		"session_id", sess.ID)

	lctx, lcancel := e.call(ctx)
	defer lcancel()
	e.booking.LogConfirmed(lctx, appointment, patientName, doctorName, clinicName, sess.ID)

	return &Reply{
		SessionID: sess.ID,
		Message: fmt.Sprintf("🎉 Appointment Confirmed!\n\n"+
			"📋 Booking Details:\n"+
			"- Appointment ID: %s\n"+
			"- Doctor: Dr. %s\n"+
			"- Clinic: %s\n"+
			"- Date: %s\n"+
			"- Time: %s - %s\n\n"+
			"Thank you for booking with us! You will receive a confirmation email shortly.",
			appointment.ID, doctorName, clinicName,
			slot.Date.Format(displayDateLayout), slot.Start.Clock(), slot.End.Clock()),
		State:     sess.State,
		Completed: true,
		Data:      map[string]string{"appointmentId": appointment.ID},
	}, nil
}

func (e *Engine) handleBookingConfirmed(sess *Session) *Reply {
	return &Reply{
		SessionID: sess.ID,
		Message:   "Your appointment has been confirmed. Have a great day!",
		State:     sess.State,
		Completed: true,
	}
}
