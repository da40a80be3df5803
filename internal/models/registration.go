package models

import "time"

// StatusRegistered is the status written with every new sheet row
const StatusRegistered = "Registered"

// NotProvided replaces an empty optional presentation link in the sheet and in emails
const NotProvided = "Not provided"

// RegistrationForm is one submission of the three-step registration wizard
type RegistrationForm struct {
	TeamLeaderName   string `json:"teamLeaderName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	College          string `json:"college"`
	Department       string `json:"department"`
	Year             string `json:"year"`
	TeamName         string `json:"teamName"`
	TeamSize         string `json:"teamSize"`
	Experience       string `json:"experience"`
	PresentationLink string `json:"presentationLink"`
	Motivation       string `json:"motivation"`
	AgreeToTerms     bool   `json:"agreeToTerms"`
}

// Registration is a stored sheet row: the form fields plus server metadata
type Registration struct {
	ID               int    `json:"id"`
	RegistrationDate string `json:"registrationDate"`
	TeamLeaderName   string `json:"teamLeaderName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	College          string `json:"college"`
	Department       string `json:"department"`
	Year             string `json:"year"`
	TeamName         string `json:"teamName"`
	TeamSize         string `json:"teamSize"`
	Experience       string `json:"experience"`
	PresentationLink string `json:"presentationLink"`
	Motivation       string `json:"motivation"`
	Status           string `json:"status"`
}

// RegistrationFilter narrows the admin registration listing
type RegistrationFilter struct {
	Search     string
	Department string
	Experience string
}

// RegistrationResult is the API response of the registration pipeline
type RegistrationResult struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	EmailSent  bool              `json:"emailSent"`
	EmailError string            `json:"emailError,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Data       *Registration     `json:"data,omitempty"`
}

// NewRegistration stamps a validated form with its submission time
func NewRegistration(form RegistrationForm, now time.Time) Registration {
	link := form.PresentationLink
	if link == "" {
		link = NotProvided
	}
	return Registration{
		RegistrationDate: now.UTC().Format(time.RFC3339),
		TeamLeaderName:   form.TeamLeaderName,
		Email:            form.Email,
		Phone:            form.Phone,
		College:          form.College,
		Department:       form.Department,
		Year:             form.Year,
		TeamName:         form.TeamName,
		TeamSize:         form.TeamSize,
		Experience:       form.Experience,
		PresentationLink: link,
		Motivation:       form.Motivation,
		Status:           StatusRegistered,
	}
}

// RegistrationStats summarises the registrations read from the sheet
type RegistrationStats struct {
	Total       int            `json:"total"`
	Today       int            `json:"today"`
	Departments map[string]int `json:"departments"`
	Experience  map[string]int `json:"experience"`
	TeamSizes   map[string]int `json:"teamSizes"`
}
