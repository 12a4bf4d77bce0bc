package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the welcome email sent on registration.
type WelcomeEmailData struct {
	Email string
	Name  string
}

// RegistrationConfirmationEmailData holds data for the event registration
// confirmation email.
type RegistrationConfirmationEmailData struct {
	Email         string
	Name          string
	EventTitle    string
	EventLocation string
	EventStartAt  string
	EventEndAt    string
	DashboardLink string
}

// PasswordResetEmailData holds data for the password reset email. ResetLink
// embeds the short-lived reset token.
type PasswordResetEmailData struct {
	Email          string
	Name           string
	ResetLink      string
	ExpiresInHours int
}

// EmailService defines the contract for sending domain-level emails. Callers
// in request handlers treat every send as best-effort: failures are logged,
// never returned to the client.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationConfirmationEmailData) error
	SendPasswordReset(ctx context.Context, data *PasswordResetEmailData) error
}
