package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/repositories"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/sheets"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// RowReader reads every registration row below the header
type RowReader interface {
	ReadRows(ctx context.Context) ([][]string, error)
}

// Digest is the periodic summary sent to the organisers
type Digest struct {
	Stats       models.RegistrationStats
	NewSince    int
	Since       time.Time
	EmailCounts map[string]int
}

// AdminService serves the read-only admin views over the sheet and email logs
type AdminService struct {
	rows   RowReader
	logs   repositories.EmailLogRepository
	logger *logrus.Logger
	now    func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(rows RowReader, logs repositories.EmailLogRepository, logger *logrus.Logger) *AdminService {
	return &AdminService{
		rows:   rows,
		logs:   logs,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AdminService) all(ctx context.Context) ([]models.Registration, error) {
	rows, err := s.rows.ReadRows(ctx)
	if err != nil {
		return nil, models.NewDependencyError("Failed to read registrations", err)
	}
	return sheets.ParseAll(rows), nil
}

// ListRegistrations returns the filtered registrations and stats over all of them
func (s *AdminService) ListRegistrations(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, models.RegistrationStats, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, models.RegistrationStats{}, err
	}
	return FilterRegistrations(all, filter), ComputeStats(all, s.now()), nil
}

// ExportCSV writes the filtered registrations as CSV
func (s *AdminService) ExportCSV(ctx context.Context, filter models.RegistrationFilter, w io.Writer) (int, error) {
	all, err := s.all(ctx)
	if err != nil {
		return 0, err
	}
	regs := FilterRegistrations(all, filter)
	if err := WriteCSV(w, regs); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(regs), nil
}

// EmailLogs returns the newest delivery attempts. limit is clamped to [1, 500].
func (s *AdminService) EmailLogs(ctx context.Context, limit int) ([]*models.EmailLog, error) {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}
	logs, err := s.logs.List(ctx, limit)
	if err != nil {
		return nil, models.NewDependencyError("Failed to load email logs", err)
	}
	if logs == nil {
		logs = []*models.EmailLog{}
	}
	return logs, nil
}

// Digest summarises registrations and deliveries since the given time.
// Email counts are best effort.
func (s *AdminService) Digest(ctx context.Context, since time.Time) (*Digest, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	d := &Digest{
		Stats: ComputeStats(all, s.now()),
		Since: since,
	}
	for _, r := range all {
		if ts, err := time.Parse(time.RFC3339, r.RegistrationDate); err == nil && !ts.Before(since) {
			d.NewSince++
		}
	}

	if counts, err := s.logs.CountByStatusSince(ctx, since); err != nil {
		s.logger.WithError(err).Warn("Failed to count email deliveries for digest")
	} else {
		d.EmailCounts = counts
	}
	return d, nil
}

// FilterRegistrations keeps registrations whose leader, team or email contains
// Search (case-insensitive) and whose department and experience equal the filter values.
func FilterRegistrations(regs []models.Registration, f models.RegistrationFilter) []models.Registration {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Registration, 0, len(regs))
	for _, r := range regs {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.TeamLeaderName), search) &&
			!strings.Contains(strings.ToLower(r.TeamName), search) &&
			!strings.Contains(strings.ToLower(r.Email), search) {
			continue
		}
		if f.Department != "" && r.Department != f.Department {
			continue
		}
		if f.Experience != "" && r.Experience != f.Experience {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ComputeStats counts registrations overall, today (UTC) and per category
func ComputeStats(regs []models.Registration, now time.Time) models.RegistrationStats {
	stats := models.RegistrationStats{
		Total:       len(regs),
		Departments: map[string]int{},
		Experience:  map[string]int{},
		TeamSizes:   map[string]int{},
	}
	today := now.UTC().Format("2006-01-02")
	for _, r := range regs {
		if ts, err := time.Parse(time.RFC3339, r.RegistrationDate); err == nil && ts.UTC().Format("2006-01-02") == today {
			stats.Today++
		}
		stats.Departments[r.Department]++
		stats.Experience[r.Experience]++
		stats.TeamSizes[r.TeamSize]++
	}
	return stats
}

// CSVHeaders is the column order of exported registrations
func CSVHeaders() []string {
	return []string{
		"Team Leader Name", "Email", "Phone", "College", "Department", "Year of Study",
		"Team Name", "Team Size", "Experience", "Presentation Link", "Registration Date", "Status",
	}
}

// WriteCSV writes a header line and one record per registration
func WriteCSV(w io.Writer, regs []models.Registration) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeaders()); err != nil {
		return err
	}
	for _, r := range regs {
		record := []string{
			r.TeamLeaderName, r.Email, r.Phone, r.College, r.Department, r.Year,
			r.TeamName, r.TeamSize, r.Experience, r.PresentationLink, r.RegistrationDate, r.Status,
		}
		for i := range record {
			record[i] = neutralizeFormula(record[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// neutralizeFormula prefixes cells a spreadsheet would evaluate with a quote
func neutralizeFormula(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}

// FormatDigest renders d as a plain-text chat message
func FormatDigest(d *Digest, event string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s registration digest\n\n", event)
	fmt.Fprintf(&b, "Total registrations: %d\n", d.Stats.Total)
	fmt.Fprintf(&b, "New since %s: %d\n", d.Since.UTC().Format("2006-01-02 15:04 MST"), d.NewSince)
	fmt.Fprintf(&b, "Registered today: %d\n", d.Stats.Today)

	if len(d.Stats.Departments) > 0 {
		b.WriteString("\nBy department:\n")
		for _, k := range sortedKeys(d.Stats.Departments) {
			fmt.Fprintf(&b, "- %s: %d\n", k, d.Stats.Departments[k])
		}
	}
	if len(d.Stats.Experience) > 0 {
		b.WriteString("\nBy experience:\n")
		for _, k := range sortedKeys(d.Stats.Experience) {
			fmt.Fprintf(&b, "- %s: %d\n", k, d.Stats.Experience[k])
		}
	}
	if d.EmailCounts != nil {
		fmt.Fprintf(&b, "\nConfirmation emails: %d sent, %d failed\n",
			d.EmailCounts[models.EmailLogStatusSent], d.EmailCounts[models.EmailLogStatusFailed])
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
