// Package templating substitutes {{name}} placeholders in email templates and
// injects a random motivational quote into every rendered message.
package templating

import (
	"fmt"
	"html"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

// Synthesized keys filled by the renderer itself
const (
	KeyMotivationalQuote     = "motivationalQuote"
	KeyMotivationalQuoteText = "motivationalQuoteText"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// categoryVariables enumerates the keys each category may substitute.
// Custom templates are not listed and accept any key.
var categoryVariables = map[models.TemplateCategory][]string{
	models.CategoryRegistration: {
		"teamLeaderName", "teamName", "email", "phone", "college", "department",
		"year", "teamSize", "experience", "presentationLink",
	},
	models.CategoryReminder:     {"teamLeaderName", "teamName", "email", "eventDate", "venue"},
	models.CategoryAnnouncement: {"teamLeaderName", "teamName", "email", "title", "message"},
	models.CategoryWinner:       {"teamLeaderName", "teamName", "email", "position", "prize"},
}

// CategoryVariables returns the substitutable keys of a category, or nil when any key is accepted.
func CategoryVariables(c models.TemplateCategory) []string {
	vars, ok := categoryVariables[c]
	if !ok {
		return nil
	}
	out := make([]string, len(vars))
	copy(out, vars)
	return out
}

// Renderer is safe for concurrent use.
type Renderer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRenderer draws quotes from the runtime's global generator.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// NewSeededRenderer draws quotes from a deterministic generator.
func NewSeededRenderer(seed uint64) *Renderer {
	return &Renderer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Renderer) intN(n int) int {
	if r.rng == nil {
		return rand.IntN(n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// PickQuote returns a uniformly random quote, or the default quote for an empty pool.
func (r *Renderer) PickQuote(pool []models.MotivationalQuote) models.MotivationalQuote {
	return PickQuote(pool, r.intN)
}

// PickQuote chooses pool[intN(len(pool))]. A missing quote must never block an
// email, so an empty pool yields DefaultQuote instead of an error.
func PickQuote(pool []models.MotivationalQuote, intN func(int) int) models.MotivationalQuote {
	if len(pool) == 0 {
		return DefaultQuote()
	}
	return pool[intN(len(pool))]
}

// Render fills subject, HTML and text of t from data plus a freshly drawn quote.
// Values are HTML-escaped in the HTML body only. Placeholders with no value are
// left as they are; data keys the template does not use are ignored.
func (r *Renderer) Render(t models.EmailTemplate, data map[string]string, pool []models.MotivationalQuote) models.RenderedEmail {
	values := allowedValues(t.Category, data)
	quote := r.PickQuote(pool)

	htmlExtra := map[string]string{
		KeyMotivationalQuote:     QuoteHTML(quote),
		KeyMotivationalQuoteText: html.EscapeString(QuoteText(quote)),
	}
	textExtra := map[string]string{
		KeyMotivationalQuote:     QuoteText(quote),
		KeyMotivationalQuoteText: QuoteText(quote),
	}

	return models.RenderedEmail{
		Subject:     replace(t.Subject, values, nil, false),
		HTMLContent: replace(t.HTMLContent, values, htmlExtra, true),
		TextContent: replace(t.TextContent, values, textExtra, false),
	}
}

// Substitute replaces every literal {{key}} in s with data[key], without escaping.
func Substitute(s string, data map[string]string) string {
	return replace(s, data, nil, false)
}

// replace does a single left-to-right pass, so a substituted value is never
// scanned again for placeholders. extra values are inserted verbatim and win
// over values with the same key.
func replace(s string, values, extra map[string]string, escape bool) string {
	if !strings.Contains(s, "{{") {
		return s
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if _, shadowed := extra[k]; !shadowed {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*(len(keys)+len(extra)))
	for _, k := range keys {
		v := values[k]
		if escape {
			v = html.EscapeString(v)
		}
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	for k, v := range extra {
		pairs = append(pairs, "{{"+k+"}}", v)
	}

	return strings.NewReplacer(pairs...).Replace(s)
}

func allowedValues(c models.TemplateCategory, data map[string]string) map[string]string {
	allowed, restricted := categoryVariables[c]
	if !restricted {
		return data
	}
	out := make(map[string]string, len(allowed))
	for _, k := range allowed {
		if v, ok := data[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Placeholders lists the distinct placeholder names used in s, in order of first appearance.
func Placeholders(s string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// UndeclaredPlaceholders reports placeholders used by t that are missing from
// t.Variables. The synthesized quote keys are always considered declared.
func UndeclaredPlaceholders(t models.EmailTemplate) []string {
	declared := map[string]bool{
		KeyMotivationalQuote:     true,
		KeyMotivationalQuoteText: true,
	}
	for _, v := range t.Variables {
		declared[v] = true
	}

	out := []string{}
	for _, p := range Placeholders(t.Subject + "\n" + t.HTMLContent + "\n" + t.TextContent) {
		if !declared[p] {
			out = append(out, p)
		}
	}
	return out
}

// QuoteHTML renders the quote block inserted for {{motivationalQuote}}.
func QuoteHTML(q models.MotivationalQuote) string {
	return fmt.Sprintf(`
    <div style="background-color: #f1f5f9; border-radius: 8px; padding: 25px; margin: 20px 30px; border-left: 4px solid #667eea;">
      <h4 style="color: #1e293b; margin: 0 0 15px 0; font-size: 16px;">Inspiration</h4>
      <blockquote style="color: #475569; font-style: italic; margin: 0 0 10px 0; font-size: 16px; line-height: 1.6;">"%s"</blockquote>
      <cite style="color: #64748b; font-size: 14px;">- %s</cite>
    </div>
`, html.EscapeString(q.Text), html.EscapeString(q.Author))
}

// QuoteText renders the plain-text quote line inserted for {{motivationalQuoteText}}.
func QuoteText(q models.MotivationalQuote) string {
	return fmt.Sprintf("\n\n\"%s\" - %s\n", q.Text, q.Author)
}

// RegistrationData builds the registration template keys from a submitted form.
func RegistrationData(form models.RegistrationForm) map[string]string {
	link := form.PresentationLink
	if link == "" {
		link = models.NotProvided
	}
	return map[string]string{
		"teamLeaderName":   form.TeamLeaderName,
		"teamName":         form.TeamName,
		"email":            form.Email,
		"phone":            form.Phone,
		"department":       form.Department,
		"teamSize":         form.TeamSize,
		"college":          form.College,
		"year":             form.Year,
		"experience":       form.Experience,
		"presentationLink": link,
	}
}

// SampleData is used for admin previews; overrides replace individual keys.
func SampleData(overrides map[string]string) map[string]string {
	data := map[string]string{
		"teamLeaderName":   "John Doe",
		"teamName":         "Code Warriors",
		"email":            "john.doe@ucet.ac.in",
		"phone":            "9876543210",
		"college":          "UCET",
		"department":       "Computer Science",
		"year":             "3rd Year",
		"teamSize":         "4",
		"experience":       "intermediate",
		"presentationLink": models.NotProvided,
	}
	for k, v := range overrides {
		data[k] = v
	}
	return data
}
