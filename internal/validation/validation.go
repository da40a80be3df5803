// Package validation holds the field checks shared by the registration API.
// Every check returns the user-facing message, or "" when the value is valid.
package validation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// Form field keys as they appear in the JSON payload and in the error map
const (
	FieldTeamLeaderName   = "teamLeaderName"
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldDepartment       = "department"
	FieldYear             = "year"
	FieldTeamName         = "teamName"
	FieldExperience       = "experience"
	FieldMotivation       = "motivation"
	FieldPresentationLink = "presentationLink"
	FieldAgreeToTerms     = "agreeToTerms"
)

func ValidateEmail(s string) string {
	if s == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(s) {
		return "Please enter a valid email address"
	}
	return ""
}

func ValidatePhone(s string) string {
	if s == "" {
		return "Phone number is required"
	}
	if !phonePattern.MatchString(s) {
		return "Phone number must be exactly 10 digits"
	}
	return ""
}

func ValidateRequired(s, label string) string {
	if strings.TrimSpace(s) == "" {
		return label + " is required"
	}
	return ""
}

// Schemes that are meaningless without a host
var hostSchemes = map[string]bool{
	"http": true, "https": true, "ftp": true, "ws": true, "wss": true,
}

// ValidateURL accepts the empty string since the link is optional. Any absolute
// URL passes, including host-less ones such as mailto:.
func ValidateURL(s string) string {
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return "Please enter a valid URL"
	}
	if hostSchemes[strings.ToLower(u.Scheme)] && u.Host == "" {
		return "Please enter a valid URL"
	}
	return ""
}

// ValidateAll checks the fixed field set and returns only the failing fields.
// An empty map means the form is valid.
func ValidateAll(form models.RegistrationForm) map[string]string {
	checks := map[string]string{
		FieldTeamLeaderName:   ValidateRequired(form.TeamLeaderName, "Team leader name"),
		FieldEmail:            ValidateEmail(form.Email),
		FieldPhone:            ValidatePhone(form.Phone),
		FieldDepartment:       ValidateRequired(form.Department, "Department"),
		FieldYear:             ValidateRequired(form.Year, "Year of study"),
		FieldTeamName:         ValidateRequired(form.TeamName, "Team name"),
		FieldExperience:       ValidateRequired(form.Experience, "Experience level"),
		FieldMotivation:       ValidateRequired(form.Motivation, "Motivation"),
		FieldPresentationLink: ValidateURL(form.PresentationLink),
	}
	if !form.AgreeToTerms {
		checks[FieldAgreeToTerms] = "You must agree to the terms and conditions"
	}

	errs := make(map[string]string)
	for field, msg := range checks {
		if msg != "" {
			errs[field] = msg
		}
	}
	return errs
}
