package mailer

import (
	"bytes"
	"fmt"
	"text/template"
)

const TemplateWelcome = "welcome"

var welcomeText = template.Must(template.New("welcome_text").Parse(
	`Hi {{.FirstName}},

Your account has been created. You can now manage your profile through the API.

If you did not register this account, please contact support.
`))

var welcomeHTML = template.Must(template.New("welcome_html").Parse(
	`<p>Hi {{.FirstName}},</p>
<p>Your account has been created. You can now manage your profile through the API.</p>
<p>If you did not register this account, please contact support.</p>
`))

// RenderWelcome renders the welcome template from job data.
func RenderWelcome(data map[string]any) (subject, text, html string, err error) {
	var tb, hb bytes.Buffer
	if err = welcomeText.Execute(&tb, data); err != nil {
		return "", "", "", fmt.Errorf("render welcome text: %w", err)
	}
	if err = welcomeHTML.Execute(&hb, data); err != nil {
		return "", "", "", fmt.Errorf("render welcome html: %w", err)
	}
	return "Welcome aboard", tb.String(), hb.String(), nil
}
