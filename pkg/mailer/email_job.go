package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects one of the embedded templates; Data feeds it. Plain
// Subject/Text/HTML may be supplied instead for pre-rendered messages.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome", "password_changed"
	Data     map[string]any `json:"data,omitempty"`
}
