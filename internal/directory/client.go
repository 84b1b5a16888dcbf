package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/hospital-chatbot/pkg/logging"
)

// HTTPDirectory talks to the hospital directory API. The API keys lookups
// by name rather than id, so entities learned from responses are cached
// locally and assigned stable ids for the lifetime of the process; by-id
// lookups resolve against that cache.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
	logger  *logging.Logger

	mu         sync.Mutex
	clinics    []Clinic
	doctors    []Doctor
	patientIDs map[string]string // patient name -> id
}

// NewHTTPDirectory creates a directory client. All requests share the
// given timeout.
func NewHTTPDirectory(baseURL string, timeout time.Duration, logger *logging.Logger) *HTTPDirectory {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPDirectory{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		patientIDs: make(map[string]string),
	}
}

// Patients returns the patient-directory facet.
func (d *HTTPDirectory) Patients() *HTTPPatients { return &HTTPPatients{d: d} }

// Clinics returns the clinic-directory facet.
func (d *HTTPDirectory) Clinics() *HTTPClinics { return &HTTPClinics{d: d} }

// Doctors returns the doctor-directory facet.
func (d *HTTPDirectory) Doctors() *HTTPDoctors { return &HTTPDoctors{d: d} }

func (d *HTTPDirectory) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("directory: marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("directory: build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("directory: %s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("directory: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("directory: decode %s response: %w", path, err)
	}
	return nil
}

// ensureClinic returns the cached clinic matching name, creating a cache
// entry with a fresh id on first sight. Matching is substring-tolerant
// because the API is loose about clinic naming.
func (d *HTTPDirectory) ensureClinic(name, description string) Clinic {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range d.clinics {
		if strings.Contains(c.Name, name) || strings.Contains(name, c.Name) {
			return c
		}
	}
	clinic := Clinic{
		ID:          uuid.NewString(),
		Name:        name,
		Department:  "General",
		Description: description,
		Active:      true,
	}
	d.clinics = append(d.clinics, clinic)
	return clinic
}

func (d *HTTPDirectory) ensureDoctor(name string) Doctor {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range d.doctors {
		if strings.Contains(doc.Name, name) || strings.Contains(name, doc.Name) {
			return doc
		}
	}
	doctor := Doctor{
		ID:             uuid.NewString(),
		Name:           name,
		Specialization: "General",
		Available:      true,
	}
	d.doctors = append(d.doctors, doctor)
	return doctor
}

// HTTPPatients authenticates patients via the directory login endpoint.
type HTTPPatients struct {
	d *HTTPDirectory
}

type loginRequest struct {
	DateOfBirth string `json:"DateofBirth"`
}

type loginResponse struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"dateofBirth"`
}

// Authenticate posts the date of birth to the login endpoint. A patient id
// is assigned on first successful login and reused afterwards.
func (p *HTTPPatients) Authenticate(ctx context.Context, dateOfBirth string) (AuthResult, error) {
	var resp loginResponse
	err := p.d.post(ctx, "/login", loginRequest{DateOfBirth: strings.TrimSpace(dateOfBirth)}, &resp)
	if err != nil || resp.Name == "" {
		if err != nil {
			p.d.logger.Warn("directory: patient login failed", "error", err)
		}
		return AuthResult{Success: false, Message: "Patient not found. Please check your date of birth."}, nil
	}

	p.d.mu.Lock()
	id, ok := p.d.patientIDs[resp.Name]
	if !ok {
		id = uuid.NewString()
		p.d.patientIDs[resp.Name] = id
	}
	p.d.mu.Unlock()

	return AuthResult{
		Success:     true,
		PatientID:   id,
		PatientName: resp.Name,
		Message:     "Authentication successful!",
	}, nil
}

// HTTPClinics serves clinic lookups via the clinic selection endpoint.
type HTTPClinics struct {
	d *HTTPDirectory
}

type clinicSelectionRequest struct {
	Name string `json:"Name"`
}

type clinicSelectionResponse struct {
	ClinicID   string `json:"clinicId"`
	ClinicName string `json:"clinicName"`
}

// GetAll lists the clinics learned so far. The API has no list endpoint.
func (c *HTTPClinics) GetAll(ctx context.Context) ([]Clinic, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()

	var out []Clinic
	for _, clinic := range c.d.clinics {
		if clinic.Active {
			out = append(out, clinic)
		}
	}
	return out, nil
}

// GetByID resolves a clinic from the local cache.
func (c *HTTPClinics) GetByID(ctx context.Context, id string) (*Clinic, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()

	for _, clinic := range c.d.clinics {
		if clinic.ID == id {
			found := clinic
			return &found, nil
		}
	}
	return nil, nil
}

// GetByPatientName asks the clinic selection endpoint which clinic the
// patient is registered with.
func (c *HTTPClinics) GetByPatientName(ctx context.Context, patientName string) (*Clinic, error) {
	var resp clinicSelectionResponse
	if err := c.d.post(ctx, "/clinicselection", clinicSelectionRequest{Name: patientName}, &resp); err != nil {
		return nil, err
	}
	if resp.ClinicName == "" {
		return nil, nil
	}
	clinic := c.d.ensureClinic(resp.ClinicName, fmt.Sprintf("Clinic ID: %s", resp.ClinicID))
	return &clinic, nil
}

// HTTPDoctors serves doctor lookups via the search, symptoms, and
// departments endpoints.
type HTTPDoctors struct {
	d *HTTPDirectory
}

type doctorSearchRequest struct {
	Name string `json:"Name"`
}

type doctorSearchResponse struct {
	DoctorName string `json:"doctorName"`
}

type symptomsRequest struct {
	Symptoms string `json:"Symptoms"`
}

type symptomsResponse struct {
	DepartmentName string `json:"departmentName"`
}

type departmentRequest struct {
	DepartmentName string `json:"DepartmentName"`
}

// GetByClinicName searches doctors by clinic name.
func (h *HTTPDoctors) GetByClinicName(ctx context.Context, clinicName string) ([]Doctor, error) {
	var resp []doctorSearchResponse
	if err := h.d.post(ctx, "/doctorsearch", doctorSearchRequest{Name: clinicName}, &resp); err != nil {
		return nil, err
	}
	return h.collect(resp), nil
}

// GetBySymptoms resolves symptoms to a department, then lists that
// department's doctors.
func (h *HTTPDoctors) GetBySymptoms(ctx context.Context, symptoms string) ([]Doctor, error) {
	var resp symptomsResponse
	if err := h.d.post(ctx, "/symptoms", symptomsRequest{Symptoms: symptoms}, &resp); err != nil {
		return nil, err
	}
	if resp.DepartmentName == "" {
		return nil, nil
	}

	var doctors []doctorSearchResponse
	if err := h.d.post(ctx, "/departments", departmentRequest{DepartmentName: resp.DepartmentName}, &doctors); err != nil {
		return nil, err
	}
	return h.collect(doctors), nil
}

// GetByID resolves a doctor from the local cache.
func (h *HTTPDoctors) GetByID(ctx context.Context, id string) (*Doctor, error) {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()

	for _, doc := range h.d.doctors {
		if doc.ID == id {
			found := doc
			return &found, nil
		}
	}
	return nil, nil
}

func (h *HTTPDoctors) collect(resp []doctorSearchResponse) []Doctor {
	var out []Doctor
	for _, r := range resp {
		if r.DoctorName == "" {
			continue
		}
		out = append(out, h.d.ensureDoctor(r.DoctorName))
	}
	return out
}
