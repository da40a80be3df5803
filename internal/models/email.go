package models

import "time"

// TemplateCategory classifies email templates
type TemplateCategory string

const (
	CategoryRegistration TemplateCategory = "registration"
	CategoryReminder     TemplateCategory = "reminder"
	CategoryAnnouncement TemplateCategory = "announcement"
	CategoryWinner       TemplateCategory = "winner"
	CategoryCustom       TemplateCategory = "custom"
)

// Valid reports whether c is one of the known categories
func (c TemplateCategory) Valid() bool {
	switch c {
	case CategoryRegistration, CategoryReminder, CategoryAnnouncement, CategoryWinner, CategoryCustom:
		return true
	}
	return false
}

// EmailTemplate holds subject, HTML and text bodies with {{name}} placeholders
type EmailTemplate struct {
	ID          string           `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Subject     string           `json:"subject" db:"subject"`
	HTMLContent string           `json:"htmlContent" db:"html_content"`
	TextContent string           `json:"textContent" db:"text_content"`
	Variables   []string         `json:"variables" db:"variables"`
	Category    TemplateCategory `json:"category" db:"category"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
}

// TemplateRequest is the admin payload for creating or updating a template
type TemplateRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Subject     string           `json:"subject" binding:"required"`
	HTMLContent string           `json:"htmlContent"`
	TextContent string           `json:"textContent"`
	Variables   []string         `json:"variables"`
	Category    TemplateCategory `json:"category"`
}

// MotivationalQuote is drawn at random into every rendered email
type MotivationalQuote struct {
	ID       string `json:"id" db:"id"`
	Text     string `json:"text" db:"text"`
	Author   string `json:"author" db:"author"`
	Category string `json:"category" db:"category"`
}

// QuoteRequest is the admin payload for creating or updating a quote
type QuoteRequest struct {
	Text     string `json:"text" binding:"required"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// EmailConfig describes the SMTP account used for outgoing mail
type EmailConfig struct {
	Host               string `json:"host"`
	Port               int    `json:"port"`
	Secure             bool   `json:"secure"`
	User               string `json:"user"`
	Password           string `json:"password,omitempty"`
	FromName           string `json:"fromName"`
	FromEmail          string `json:"fromEmail"`
	CC                 string `json:"cc,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify"`
}

// Complete reports whether the config carries what is needed to log in
func (c EmailConfig) Complete() bool {
	return c.Host != "" && c.Port > 0 && c.User != "" && c.Password != ""
}

// Sender returns the From address, falling back to the SMTP user
func (c EmailConfig) Sender() string {
	if c.FromEmail != "" {
		return c.FromEmail
	}
	return c.User
}

// RedactedPassword replaces the SMTP password in API responses
const RedactedPassword = "********"

// Redacted returns a copy safe to show in the admin API
func (c EmailConfig) Redacted() EmailConfig {
	if c.Password != "" {
		c.Password = RedactedPassword
	}
	return c
}

// RenderedEmail is a template after placeholder substitution
type RenderedEmail struct {
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
	TextContent string `json:"textContent"`
}

// Email log statuses
const (
	EmailLogStatusSent   = "sent"
	EmailLogStatusFailed = "failed"
)

// EmailLog records one confirmation or admin email attempt
type EmailLog struct {
	ID             int       `json:"id" db:"id"`
	RecipientEmail string    `json:"recipientEmail" db:"recipient_email"`
	TemplateID     string    `json:"templateId" db:"template_id"`
	Subject        string    `json:"subject" db:"subject"`
	Status         string    `json:"status" db:"status"`
	MessageID      string    `json:"messageId,omitempty" db:"message_id"`
	ErrorMessage   string    `json:"errorMessage,omitempty" db:"error_message"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// SendEmailRequest is the admin payload for sending arbitrary content
type SendEmailRequest struct {
	To          string       `json:"to" binding:"required"`
	Subject     string       `json:"subject" binding:"required"`
	HTMLContent string       `json:"htmlContent"`
	TextContent string       `json:"textContent"`
	Config      *EmailConfig `json:"config,omitempty"`
}

// TestTemplateRequest asks for a template to be rendered with sample data and sent
type TestTemplateRequest struct {
	Email      string            `json:"email" binding:"required"`
	SampleData map[string]string `json:"sampleData"`
}
