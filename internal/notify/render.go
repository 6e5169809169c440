package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"rentexpress/internal/models"
)

// Vars are the fields available to every charge template.
type Vars struct {
	TenantName  string
	Description string
	Amount      string
	Category    string
	ChargeDate  string
	DueDate     string
	PaidAt      string
	Property    string
}

type templates struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

func mustTemplates(subject, text, html string) templates {
	return templates{
		subject: texttemplate.Must(texttemplate.New("subject").Parse(subject)),
		text:    texttemplate.Must(texttemplate.New("text").Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New("html").Parse(html)),
	}
}

var byKind = map[models.NotificationKind]templates{
	models.NotifyInvoice: mustTemplates(
		`New charge: {{.Description}}`,
		`Hello {{.TenantName}},

A new charge has been added to your account.

  {{.Description}} ({{.Category}})
  Amount: ${{.Amount}}
  Due: {{.DueDate}}
{{if .Property}}  Property: {{.Property}}
{{end}}`,
		`<p>Hello {{.TenantName}},</p>
<p>A new charge has been added to your account.</p>
<table>
<tr><td>Description</td><td>{{.Description}} ({{.Category}})</td></tr>
<tr><td>Amount</td><td>${{.Amount}}</td></tr>
<tr><td>Due</td><td>{{.DueDate}}</td></tr>
{{if .Property}}<tr><td>Property</td><td>{{.Property}}</td></tr>{{end}}
</table>`),

	models.NotifyReminder: mustTemplates(
		`Payment due soon: {{.Description}}`,
		`Hello {{.TenantName}},

This is a reminder that a payment is due soon.

  {{.Description}} ({{.Category}})
  Amount: ${{.Amount}}
  Due: {{.DueDate}}
`,
		`<p>Hello {{.TenantName}},</p>
<p>This is a reminder that a payment is due soon.</p>
<table>
<tr><td>Description</td><td>{{.Description}} ({{.Category}})</td></tr>
<tr><td>Amount</td><td>${{.Amount}}</td></tr>
<tr><td>Due</td><td>{{.DueDate}}</td></tr>
</table>`),

	models.NotifyReceipt: mustTemplates(
		`Payment received: {{.Description}}`,
		`Hello {{.TenantName}},

We received your payment. Thank you.

  {{.Description}} ({{.Category}})
  Amount: ${{.Amount}}
  Paid: {{.PaidAt}}
`,
		`<p>Hello {{.TenantName}},</p>
<p>We received your payment. Thank you.</p>
<table>
<tr><td>Description</td><td>{{.Description}} ({{.Category}})</td></tr>
<tr><td>Amount</td><td>${{.Amount}}</td></tr>
<tr><td>Paid</td><td>{{.PaidAt}}</td></tr>
</table>`),
}

// Render builds the message for kind addressed to to.
func Render(kind models.NotificationKind, to string, vars Vars) (Message, error) {
	t, ok := byKind[kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown notification kind %q", kind)
	}
	var subject, text, html bytes.Buffer
	if err := t.subject.Execute(&subject, vars); err != nil {
		return Message{}, fmt.Errorf("render subject: %w", err)
	}
	if err := t.text.Execute(&text, vars); err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}
	if err := t.html.Execute(&html, vars); err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}
	return Message{
		Kind:    kind,
		To:      to,
		Subject: subject.String(),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
