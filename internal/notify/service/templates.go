package service

import (
	"bytes"
	"fmt"
	"text/template"
)

var (
	approvalTemplate = template.Must(template.New("approval").Parse(
		`Congratulations {{.Name}}! Your instructor application has been approved.

You can now:
- Create and publish courses
- Host live mentoring sessions
- Earn {{.InstructorShare}}% of all payments (we only keep {{.PlatformShare}}%)
- Access the instructor dashboard

NEXT STEP: complete your payment setup to start earning:
{{.SetupURL}}

This link expires in {{.ValidDays}} days, so please complete your setup soon.

Welcome to the {{.PlatformName}} family!

The {{.PlatformName}} Team`))

	rejectionTemplate = template.Must(template.New("rejection").Parse(
		`Dear {{.Name}},

Thank you for your interest in teaching with {{.PlatformName}}. After reviewing your application we are unable to approve it at this time.
{{if .Reason}}
Reason: {{.Reason}}
{{end}}
You are welcome to apply again in the future.

The {{.PlatformName}} Team
{{if .ApplicationID}}
Application ID: {{.ApplicationID}}{{end}}`))

	welcomeTemplate = template.Must(template.New("welcome").Parse(
		`Welcome to the {{.PlatformName}} family, {{.Name}}!

Your payout account is active. You keep {{.InstructorShare}}% of every payment and payouts settle automatically to your bank account.

Getting started:
1. Create your first course
2. Set your availability for mentoring sessions
3. Visit your dashboard: {{.PlatformURL}}/instructor.html

The {{.PlatformName}} Team`))
)

type messageData struct {
	Name            string
	PlatformName    string
	PlatformURL     string
	SetupURL        string
	Reason          string
	ApplicationID   string
	ValidDays       int
	InstructorShare int
	PlatformShare   int
}

func render(t *template.Template, data messageData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s message: %w", t.Name(), err)
	}
	return buf.String(), nil
}
