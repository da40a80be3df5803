package sheets

import (
	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

// Tab layout: one header row, then columns A-M per registration.
const (
	EmailColumn = "C"
	HeaderRange = "A1:M1"
	FullRange   = "A:M"
	ColumnCount = 13

	// first data row; row 1 holds the headers
	firstDataRow = 2
)

// Headers returns the header row in column order
func Headers() []string {
	return []string{
		"Registration Date",
		"Team Leader Name",
		"Email",
		"Phone",
		"College",
		"Department",
		"Year of Study",
		"Team Name",
		"Team Size",
		"Experience",
		"Presentation Link",
		"Motivation",
		"Status",
	}
}

// Row converts a registration to its sheet row
func Row(r models.Registration) []string {
	link := r.PresentationLink
	if link == "" {
		link = models.NotProvided
	}
	status := r.Status
	if status == "" {
		status = models.StatusRegistered
	}
	return []string{
		r.RegistrationDate,
		r.TeamLeaderName,
		r.Email,
		r.Phone,
		r.College,
		r.Department,
		r.Year,
		r.TeamName,
		r.TeamSize,
		r.Experience,
		link,
		r.Motivation,
		status,
	}
}

// Parse converts a sheet row back into a registration. id is the 1-based sheet row number.
func Parse(id int, row []string) models.Registration {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	return models.Registration{
		ID:               id,
		RegistrationDate: cell(0),
		TeamLeaderName:   cell(1),
		Email:            cell(2),
		Phone:            cell(3),
		College:          cell(4),
		Department:       cell(5),
		Year:             cell(6),
		TeamName:         cell(7),
		TeamSize:         cell(8),
		Experience:       cell(9),
		PresentationLink: cell(10),
		Motivation:       cell(11),
		Status:           cell(12),
	}
}

// ParseAll converts rows read by ReadRows, numbering them from the first data row
func ParseAll(rows [][]string) []models.Registration {
	out := make([]models.Registration, 0, len(rows))
	for i, row := range rows {
		out = append(out, Parse(i+firstDataRow, row))
	}
	return out
}
