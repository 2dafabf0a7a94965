package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

// Template names.
const (
	OTP             = "otp"
	Welcome         = "welcome"
	PasswordChanged = "password_changed"
)

var subjects = map[string]string{
	OTP:             "Password Change OTP - Authentication System",
	Welcome:         "Welcome to your new account",
	PasswordChanged: "Your password was changed",
}

// Render loads the named embedded template and renders it with data,
// returning the subject and HTML body.
func Render(name string, data map[string]any) (subject, html string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	t, err := htmpl.ParseFS(FS, name+".tmpl")
	if err != nil {
		return "", "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
