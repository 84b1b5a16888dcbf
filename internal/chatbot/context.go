package chatbot

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Context keys. Values accumulate over the conversation and feed
// later handlers (slot selection reads AvailableSlotsWithDates,
// confirmation reads DoctorName, and so on).
const (
	KeyDateOfBirth             = "DateOfBirth"
	KeyPatientName             = "PatientName"
	KeyClinicID                = "ClinicId"
	KeyClinicName              = "ClinicName"
	KeyDoctorID                = "DoctorId"
	KeyDoctorName              = "DoctorName"
	KeySymptoms                = "Symptoms"
	KeyAvailableSlotsWithDates = "AvailableSlotsWithDates"
	KeyCancellableAppointments = "CancellableAppointments"
	KeyAppointmentID           = "AppointmentId"
)

// Value kinds.
const (
	kindString = "string"
	kindInt    = "int"
	kindID     = "id"
	kindList   = "list"
)

// Value is a tagged variant stored in a session context. It survives a
// JSON round trip without losing its kind, which a bare map[string]any
// would not (numbers come back as float64, slices as []any).
type Value struct {
	Kind string          `json:"kind"`
	Str  string          `json:"str,omitempty"`
	Int  int             `json:"int,omitempty"`
	List json.RawMessage `json:"list,omitempty"`
}

func StringValue(s string) Value { return Value{Kind: kindString, Str: s} }
func IntValue(n int) Value       { return Value{Kind: kindInt, Int: n} }
func IDValue(id string) Value    { return Value{Kind: kindID, Str: id} }

// ListValue encodes an arbitrary slice as a list value.
func ListValue(v any) (Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("chatbot: encode list value: %w", err)
	}
	return Value{Kind: kindList, List: raw}, nil
}

// AsString returns the string form of the value. Ints are formatted,
// lists yield their raw JSON.
func (v Value) AsString() string {
	switch v.Kind {
	case kindInt:
		return strconv.Itoa(v.Int)
	case kindList:
		return string(v.List)
	default:
		return v.Str
	}
}

// AsInt returns the int form, or 0 for non-int kinds.
func (v Value) AsInt() int {
	if v.Kind == kindInt {
		return v.Int
	}
	return 0
}

// DecodeList unmarshals a list value into out.
func (v Value) DecodeList(out any) error {
	if v.Kind != kindList {
		return fmt.Errorf("chatbot: value kind %q is not a list", v.Kind)
	}
	if err := json.Unmarshal(v.List, out); err != nil {
		return fmt.Errorf("chatbot: decode list value: %w", err)
	}
	return nil
}

// Context is the per-session scratch space.
type Context map[string]Value

// Clone returns a shallow copy. Values are immutable once stored, so a
// shallow copy is safe.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Snapshot flattens the context into strings for transcript entries.
func (c Context) Snapshot() map[string]string {
	out := make(map[string]string, len(c))
	for k, v := range c {
		out[k] = v.AsString()
	}
	return out
}
