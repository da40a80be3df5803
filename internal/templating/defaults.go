package templating

import (
	"fmt"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
)

// DefaultRegistrationTemplateID is the seeded confirmation template
const DefaultRegistrationTemplateID = "registration-confirmation"

// DefaultQuote is used when the quote pool is empty.
func DefaultQuote() models.MotivationalQuote {
	return models.MotivationalQuote{
		ID:       "default",
		Text:     "Innovation distinguishes between a leader and a follower.",
		Author:   "Steve Jobs",
		Category: "innovation",
	}
}

// DefaultQuotes is the pool seeded into an empty quote table.
func DefaultQuotes() []models.MotivationalQuote {
	raw := []struct{ text, author, category string }{
		{"Innovation distinguishes between a leader and a follower.", "Steve Jobs", "innovation"},
		{"The best way to predict the future is to invent it.", "Alan Kay", "future"},
		{"Code is like humor. When you have to explain it, it's bad.", "Cory House", "coding"},
		{"First, solve the problem. Then, write the code.", "John Johnson", "problem-solving"},
		{"The only way to do great work is to love what you do.", "Steve Jobs", "passion"},
		{"Success is not final, failure is not fatal: it is the courage to continue that counts.", "Winston Churchill", "perseverance"},
		{"The future belongs to those who believe in the beauty of their dreams.", "Eleanor Roosevelt", "dreams"},
		{"It is during our darkest moments that we must focus to see the light.", "Aristotle", "motivation"},
		{"Don't watch the clock; do what it does. Keep going.", "Sam Levenson", "persistence"},
		{"The way to get started is to quit talking and begin doing.", "Walt Disney", "action"},
		{"Your limitation is only your imagination.", "Unknown", "mindset"},
		{"Push yourself, because no one else is going to do it for you.", "Unknown", "motivation"},
		{"Great things never come from comfort zones.", "Unknown", "growth"},
		{"Dream it. Wish it. Do it.", "Unknown", "action"},
		{"Success doesn't just find you. You have to go out and get it.", "Unknown", "success"},
	}

	quotes := make([]models.MotivationalQuote, 0, len(raw))
	for i, q := range raw {
		quotes = append(quotes, models.MotivationalQuote{
			ID:       fmt.Sprintf("q%02d", i+1),
			Text:     q.text,
			Author:   q.author,
			Category: q.category,
		})
	}
	return quotes
}

// DefaultRegistrationTemplate is the confirmation email seeded on first start.
func DefaultRegistrationTemplate() models.EmailTemplate {
	return models.EmailTemplate{
		ID:          DefaultRegistrationTemplateID,
		Name:        "Registration Confirmation",
		Subject:     "Welcome to UCET Hacks 2025 - Registration Confirmed for {{teamName}}",
		HTMLContent: registrationHTML,
		TextContent: registrationText,
		Variables:   CategoryVariables(models.CategoryRegistration),
		Category:    models.CategoryRegistration,
	}
}

const registrationHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>UCET Hacks 2025 - Registration Confirmed</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f8fafc;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 40px 20px; text-align: center;">
      <h1 style="color: #ffffff; margin: 0; font-size: 28px; font-weight: bold;">UCET Hacks 2025</h1>
      <p style="color: #e2e8f0; margin: 10px 0 0 0; font-size: 16px;">Innovation Starts Here</p>
    </div>
    <div style="padding: 40px 30px;">
      <h2 style="color: #1e293b; text-align: center; margin: 0 0 30px 0; font-size: 24px;">Registration Successful!</h2>
      <p style="color: #475569; font-size: 16px; line-height: 1.6;">Hello <strong>{{teamLeaderName}}</strong>,</p>
      <p style="color: #475569; font-size: 16px; line-height: 1.6;">Your team <strong>"{{teamName}}"</strong> has been registered for UCET Hacks 2025.</p>
      <div style="background-color: #f8fafc; border-radius: 8px; padding: 25px; margin: 30px 0; border-left: 4px solid #667eea;">
        <h3 style="color: #1e293b; margin: 0 0 20px 0; font-size: 18px;">Your Registration Details</h3>
        <div><strong>Team Leader:</strong> {{teamLeaderName}}</div>
        <div><strong>Email:</strong> {{email}}</div>
        <div><strong>Phone:</strong> {{phone}}</div>
        <div><strong>College:</strong> {{college}}</div>
        <div><strong>Department:</strong> {{department}}</div>
        <div><strong>Year:</strong> {{year}}</div>
        <div><strong>Team Size:</strong> {{teamSize}} members</div>
        <div><strong>Experience Level:</strong> {{experience}}</div>
        <div><strong>Presentation:</strong> {{presentationLink}}</div>
      </div>
      <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); border-radius: 8px; padding: 25px; margin-bottom: 30px; color: #ffffff;">
        <h3 style="margin: 0 0 20px 0; font-size: 18px;">Event Details</h3>
        <div><strong>Venue:</strong> UCET VBU Campus, Hazaribagh, Jharkhand</div>
        <div><strong>Date:</strong> July 4th, 2025</div>
        <div><strong>Duration:</strong> 9 Hours of Innovation</div>
        <div><strong>Prize Pool:</strong> To Be Announced</div>
      </div>
      <div style="background-color: #ecfdf5; border-radius: 8px; padding: 25px; margin-bottom: 30px; border-left: 4px solid #10b981;">
        <h3 style="color: #065f46; margin: 0 0 20px 0; font-size: 18px;">What's Next?</h3>
        <ul style="color: #047857; margin: 0; padding-left: 20px; line-height: 1.8;">
          <li>Mark your calendar for July 4th, 2025</li>
          <li>Start brainstorming ideas with your team</li>
          <li>Prepare your development environment and tools</li>
          <li>Follow us on social media for regular updates</li>
        </ul>
      </div>
      {{motivationalQuote}}
      <div style="background-color: #fef3c7; border-radius: 8px; padding: 20px; border-left: 4px solid #f59e0b;">
        <p style="color: #b45309; margin: 0; font-size: 14px;">This email serves as verification of your registration. Please keep it for your records.</p>
      </div>
    </div>
    <div style="background-color: #1e293b; padding: 30px 20px; text-align: center;">
      <p style="color: #94a3b8; margin: 0; font-size: 14px;">&copy; 2025 UCET Hacks | All Rights Reserved</p>
    </div>
  </div>
</body>
</html>`

const registrationText = `UCET Hacks 2025 - Registration Confirmation

Hello {{teamLeaderName}},

Your team "{{teamName}}" has been registered for UCET Hacks 2025.

Registration Details:
- Team Leader: {{teamLeaderName}}
- Email: {{email}}
- Phone: {{phone}}
- College: {{college}}
- Department: {{department}}
- Year: {{year}}
- Team Size: {{teamSize}} members
- Experience Level: {{experience}}
- Presentation: {{presentationLink}}

Event Details:
- Venue: UCET VBU Campus, Hazaribagh, Jharkhand
- Date: July 4th, 2025
- Duration: 9 Hours of Innovation
- Prize Pool: To Be Announced

Inspiration for Your Journey:{{motivationalQuoteText}}
This email serves as verification of your registration. Please keep it for your records.

(c) 2025 UCET Hacks | All Rights Reserved
`
