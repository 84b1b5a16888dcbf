// Package directory provides the patient, clinic, and doctor lookups the
// conversation engine depends on. Two implementations exist: an HTTP client
// against the hospital directory API and an in-memory directory with seed
// data for development and tests.
package directory

// AuthResult is the outcome of a date-of-birth authentication attempt.
type AuthResult struct {
	Success     bool
	PatientID   string
	PatientName string
	Message     string
}

// Clinic is a bookable clinic.
type Clinic struct {
	ID          string
	Name        string
	Department  string
	Description string
	Active      bool
}

// Doctor is a bookable doctor.
type Doctor struct {
	ID             string
	Name           string
	Specialization string
	Symptoms       []string
	Available      bool
}
