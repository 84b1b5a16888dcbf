package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemoryDirectory holds seeded patient, clinic, and doctor data for
// development and tests. The Patients, Clinics, and Doctors facets satisfy
// the collaborator contracts the conversation engine consumes.
type InMemoryDirectory struct {
	mu       sync.RWMutex
	patients map[string]seedPatient // keyed by date of birth
	clinics  []Clinic
	doctors  []Doctor
	registry map[string]string // patient name -> clinic id
}

type seedPatient struct {
	id   string
	name string
}

// NewInMemoryDirectory creates a directory populated with seed data.
func NewInMemoryDirectory() *InMemoryDirectory {
	d := &InMemoryDirectory{
		patients: make(map[string]seedPatient),
		registry: make(map[string]string),
	}
	d.seed()
	return d
}

func (d *InMemoryDirectory) seed() {
	cityCare := Clinic{ID: uuid.NewString(), Name: "City Care Clinic", Department: "General Medicine", Description: "Primary care and general checkups", Active: true}
	heartCenter := Clinic{ID: uuid.NewString(), Name: "Heart Center", Department: "Cardiology", Description: "Cardiac diagnostics and treatment", Active: true}
	neuroHouse := Clinic{ID: uuid.NewString(), Name: "Neuro House", Department: "Neurology", Description: "Neurological care", Active: true}
	closedWing := Clinic{ID: uuid.NewString(), Name: "Old Wing", Department: "General", Description: "Closed for renovation", Active: false}
	d.clinics = []Clinic{cityCare, heartCenter, neuroHouse, closedWing}

	d.doctors = []Doctor{
		{ID: uuid.NewString(), Name: "Sarah Mitchell", Specialization: "General Medicine", Symptoms: []string{"fever", "cough", "cold", "fatigue"}, Available: true},
		{ID: uuid.NewString(), Name: "James Okafor", Specialization: "Cardiology", Symptoms: []string{"chestpain", "chest pain", "palpitations", "shortness of breath"}, Available: true},
		{ID: uuid.NewString(), Name: "Priya Nair", Specialization: "Neurology", Symptoms: []string{"headache", "headech", "migraine", "dizziness"}, Available: true},
	}

	for _, p := range []struct {
		dob, name string
		clinic    string
	}{
		{"15-06-1990", "John Smith", cityCare.ID},
		{"28-12-2002", "Maria Lopez", heartCenter.ID},
		{"03-01-1975", "Wei Chen", ""},
	} {
		sp := seedPatient{id: uuid.NewString(), name: p.name}
		d.patients[p.dob] = sp
		if p.clinic != "" {
			d.registry[p.name] = p.clinic
		}
	}
}

// Patients returns the patient-directory facet.
func (d *InMemoryDirectory) Patients() *MemoryPatients { return &MemoryPatients{d: d} }

// Clinics returns the clinic-directory facet.
func (d *InMemoryDirectory) Clinics() *MemoryClinics { return &MemoryClinics{d: d} }

// Doctors returns the doctor-directory facet.
func (d *InMemoryDirectory) Doctors() *MemoryDoctors { return &MemoryDoctors{d: d} }

// MemoryPatients authenticates patients against the seed data.
type MemoryPatients struct {
	d *InMemoryDirectory
}

// Authenticate resolves a patient by exact date-of-birth match.
func (p *MemoryPatients) Authenticate(ctx context.Context, dateOfBirth string) (AuthResult, error) {
	p.d.mu.RLock()
	defer p.d.mu.RUnlock()

	sp, ok := p.d.patients[strings.TrimSpace(dateOfBirth)]
	if !ok {
		return AuthResult{Success: false, Message: "Patient not found. Please check your date of birth."}, nil
	}
	return AuthResult{
		Success:     true,
		PatientID:   sp.id,
		PatientName: sp.name,
		Message:     "Authentication successful!",
	}, nil
}

// MemoryClinics serves clinic lookups from the seed data.
type MemoryClinics struct {
	d *InMemoryDirectory
}

// GetAll returns all active clinics.
func (c *MemoryClinics) GetAll(ctx context.Context) ([]Clinic, error) {
	c.d.mu.RLock()
	defer c.d.mu.RUnlock()

	var out []Clinic
	for _, clinic := range c.d.clinics {
		if clinic.Active {
			out = append(out, clinic)
		}
	}
	return out, nil
}

// GetByID resolves a clinic by id. Returns nil when unknown.
func (c *MemoryClinics) GetByID(ctx context.Context, id string) (*Clinic, error) {
	c.d.mu.RLock()
	defer c.d.mu.RUnlock()
	return c.findByID(id), nil
}

func (c *MemoryClinics) findByID(id string) *Clinic {
	for _, clinic := range c.d.clinics {
		if clinic.ID == id {
			found := clinic
			return &found
		}
	}
	return nil
}

// GetByPatientName returns the clinic the patient is registered with, or
// nil when the patient has no registration.
func (c *MemoryClinics) GetByPatientName(ctx context.Context, patientName string) (*Clinic, error) {
	c.d.mu.RLock()
	defer c.d.mu.RUnlock()

	clinicID, ok := c.d.registry[patientName]
	if !ok {
		return nil, nil
	}
	return c.findByID(clinicID), nil
}

// MemoryDoctors serves doctor lookups from the seed data.
type MemoryDoctors struct {
	d *InMemoryDirectory
}

// GetByClinicName returns available doctors whose specialization matches
// the clinic's department, falling back to all available doctors when the
// clinic is unknown.
func (m *MemoryDoctors) GetByClinicName(ctx context.Context, clinicName string) ([]Doctor, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()

	department := ""
	for _, c := range m.d.clinics {
		if strings.EqualFold(c.Name, clinicName) {
			department = c.Department
			break
		}
	}

	var out []Doctor
	for _, doc := range m.d.doctors {
		if !doc.Available {
			continue
		}
		if department == "" || strings.EqualFold(doc.Specialization, department) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// GetBySymptoms matches free-text symptoms against each doctor's symptom
// keywords.
func (m *MemoryDoctors) GetBySymptoms(ctx context.Context, symptoms string) ([]Doctor, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(symptoms))
	if query == "" {
		return nil, nil
	}

	var out []Doctor
	for _, doc := range m.d.doctors {
		if !doc.Available {
			continue
		}
		for _, kw := range doc.Symptoms {
			if strings.Contains(query, kw) || strings.Contains(kw, query) {
				out = append(out, doc)
				break
			}
		}
	}
	return out, nil
}

// GetByID resolves a doctor by id. Returns nil when unknown.
func (m *MemoryDoctors) GetByID(ctx context.Context, id string) (*Doctor, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()

	for _, doc := range m.d.doctors {
		if doc.ID == id {
			found := doc
			return &found, nil
		}
	}
	return nil, nil
}
