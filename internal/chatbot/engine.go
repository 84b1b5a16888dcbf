package chatbot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hospital-chatbot/internal/observability/metrics"
	"github.com/careloop/hospital-chatbot/internal/transcript"
	"github.com/careloop/hospital-chatbot/pkg/logging"
)

const defaultCallTimeout = 10 * time.Second

// Deps wires the engine to its collaborators. Sessions, Patients,
// Clinics, Doctors, Planner, Booking and Cancellation are required;
// the rest are optional.
type Deps struct {
	Sessions     SessionStore
	Patients     PatientDirectory
	Clinics      ClinicDirectory
	Doctors      DoctorDirectory
	Planner      SlotPlanner
	Booking      BookingService
	Cancellation CancellationService
	Transcripts  TranscriptLog
	Metrics      *metrics.ConversationMetrics
	Logger       *logging.Logger
	CallTimeout  time.Duration
}

// handlerFunc advances a session by one turn from a single state.
type handlerFunc func(ctx context.Context, sess *Session, message string) (*Reply, error)

// Engine runs the booking conversation. One instance serves all
// sessions; per-session ordering comes from SessionStore.Acquire.
type Engine struct {
	sessions     SessionStore
	patients     PatientDirectory
	clinics      ClinicDirectory
	doctors      DoctorDirectory
	planner      SlotPlanner
	booking      BookingService
	cancellation CancellationService
	transcripts  TranscriptLog
	metrics      *metrics.ConversationMetrics
	logger       *logging.Logger
	callTimeout  time.Duration
	handlers     map[State]handlerFunc
}

func NewEngine(d Deps) (*Engine, error) {
	switch {
	case d.Sessions == nil:
		return nil, fmt.Errorf("chatbot: session store is required")
	case d.Patients == nil || d.Clinics == nil || d.Doctors == nil:
		return nil, fmt.Errorf("chatbot: directory collaborators are required")
	case d.Planner == nil || d.Booking == nil || d.Cancellation == nil:
		return nil, fmt.Errorf("chatbot: scheduling collaborators are required")
	}
	if d.Logger == nil {
		d.Logger = logging.Default()
	}
	if d.CallTimeout <= 0 {
		d.CallTimeout = defaultCallTimeout
	}
	e := &Engine{
		sessions:     d.Sessions,
		patients:     d.Patients,
		clinics:      d.Clinics,
		doctors:      d.Doctors,
		planner:      d.Planner,
		booking:      d.Booking,
		cancellation: d.Cancellation,
		transcripts:  d.Transcripts,
		metrics:      d.Metrics,
		logger:       d.Logger.Named("chatbot"),
		callTimeout:  d.CallTimeout,
	}
	e.handlers = map[State]handlerFunc{
		StateInitial: func(_ context.Context, sess *Session, _ string) (*Reply, error) {
			return e.handleInitial(sess), nil
		},
		StateAwaitingDateOfBirth: e.handleDateOfBirth,
		StateAuthenticated: func(ctx context.Context, sess *Session, _ string) (*Reply, error) {
			return e.handleAuthenticated(ctx, sess)
		},
		StateAwaitingClinicSelection:       e.handleClinicSelection,
		StateAwaitingBookingOrCancelChoice: e.handleBookingOrCancelChoice,
		StateAwaitingDoctorOrSymptom:       e.handleDoctorOrSymptomChoice,
		StateAwaitingDoctorSelection:       e.handleDoctorSelection,
		StateAwaitingSlotSelection:         e.handleSlotSelection,
		StateBookingConfirmed: func(_ context.Context, sess *Session, _ string) (*Reply, error) {
			return e.handleBookingConfirmed(sess), nil
		},
		StateAwaitingCancellationSelection: e.handleCancellationSelection,
	}
	return e, nil
}

// StartSession creates a new conversation and returns its ID.
func (e *Engine) StartSession(ctx context.Context) (string, error) {
	sess := NewSession()
	if err := e.sessions.Create(sess); err != nil {
		return "", fmt.Errorf("chatbot: create session: %w", err)
	}
	e.logger.Info("session started", "session_id", sess.ID)
	return sess.ID, nil
}

// ProcessMessage advances a conversation by one turn. It never
// returns an error to the caller; failures surface as replies.
func (e *Engine) ProcessMessage(ctx context.Context, sessionID, message string) *Reply {
	release := e.sessions.Acquire(sessionID)
	defer release()

	started := time.Now()

	sess, err := e.sessions.Get(sessionID)
	if err != nil {
		e.metrics.ObserveTurn(string(StateInitial), "unknown_session", time.Since(started).Seconds())
		return &Reply{
			SessionID: sessionID,
			Message:   "Session not found. Please start a new conversation.",
			State:     StateInitial,
			Completed: true,
		}
	}

	stateBefore := sess.State
	reply := e.dispatch(ctx, sess, message)

	e.logTurn(ctx, sess, message, reply)

	if err := e.sessions.Update(sess); err != nil {
		e.logger.Error("session update failed", "session_id", sess.ID, "error", err)
	}

	outcome := "advanced"
	if reply.State == stateBefore {
		outcome = "reprompted"
	}
	if reply.Completed {
		outcome = "completed"
	}
	e.metrics.ObserveTurn(string(stateBefore), outcome, time.Since(started).Seconds())

	return reply
}

func (e *Engine) dispatch(ctx context.Context, sess *Session, message string) *Reply {
	handle, ok := e.handlers[sess.State]
	if !ok {
		// A stored state no handler claims means corrupt session data.
		e.logger.Error("no handler for state", "session_id", sess.ID, "state", string(sess.State))
		return &Reply{
			SessionID: sess.ID,
			Message:   "Something went wrong. Please start over.",
			State:     sess.State,
			Completed: true,
		}
	}

	reply, err := handle(ctx, sess, message)
	if err != nil {
		e.logger.Error("turn failed", "session_id", sess.ID, "state", string(sess.State), "error", err)
		return &Reply{
			SessionID: sess.ID,
			Message:   "Something went wrong on our side. Please try again.",
			State:     sess.State,
			Completed: false,
		}
	}
	return reply
}

// call bounds one collaborator call so a stalled dependency cannot
// hold the session lock indefinitely.
func (e *Engine) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.callTimeout)
}

func (e *Engine) logTurn(ctx context.Context, sess *Session, message string, reply *Reply) {
	if e.transcripts == nil {
		return
	}

	opts := make([]transcript.Option, 0, len(reply.Options))
	for _, o := range reply.Options {
		opts = append(opts, transcript.Option{ID: o.ID, Display: o.Display, Value: o.Value})
	}

	entry := transcript.Entry{
		ID:          uuid.NewString(),
		SessionID:   sess.ID,
		PatientID:   sess.PatientID,
		PatientName: sess.PatientName,
		State:       string(reply.State),
		UserMessage: message,
		BotReply:    reply.Message,
		Options:     opts,
		Context:     sess.Context.Snapshot(),
		Timestamp:   time.Now().UTC(),
	}

	tctx, cancel := e.call(ctx)
	defer cancel()
	if err := e.transcripts.Append(tctx, entry); err != nil {
		e.logger.Error("transcript append failed", "session_id", sess.ID, "error", err)
	}
}
