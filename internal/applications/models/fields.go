package models

import "strings"

// field names the Application attribute a set of external keys feeds. The
// first key with a non-blank value wins, so aliases are ordered by preference.
type field struct {
	keys []string
	set  func(*Application, string)
}

// fieldMap is the intake form vocabulary. Submissions arrive from the site's
// JSON client and from form builders that post human labels as keys.
var fieldMap = []field{
	{keys: []string{"fullName", "Full Name", "name"}, set: func(a *Application, v string) { a.FullName = v }},
	{keys: []string{"email", "Email Address"}, set: func(a *Application, v string) { a.Email = v }},
	{keys: []string{"phone", "Phone Number"}, set: func(a *Application, v string) { a.Phone = v }},
	{keys: []string{"expertise", "Area of Expertise", "Area Of Expertise", "specialization"}, set: func(a *Application, v string) { a.Expertise = v }},
	{keys: []string{"experience", "Years of Experience", "Years Of Experience"}, set: func(a *Application, v string) { a.Experience = v }},
	{keys: []string{"qualifications", "Qualifications"}, set: func(a *Application, v string) { a.Qualifications = v }},
	{keys: []string{"bio", "Professional Bio", "description"}, set: func(a *Application, v string) { a.Bio = v }},
	{keys: []string{"portfolio", "Portfolio/Website"}, set: func(a *Application, v string) { a.Portfolio = v }},
	{keys: []string{"linkedin", "LinkedIn Profile"}, set: func(a *Application, v string) { a.LinkedIn = v }},
	{keys: []string{"availability", "Teaching Availability"}, set: func(a *Application, v string) { a.Availability = v }},
	{keys: []string{"preferredFormat", "Preferred Teaching Format"}, set: func(a *Application, v string) { a.TeachingFormat = v }},
}

// MissingFieldsMessage is returned when a submission lacks a required field.
const MissingFieldsMessage = "Missing required fields: Full Name, Email, and Expertise are required"

// FromFields maps raw submission fields onto an Application. Keys and values
// are trimmed; unknown keys are ignored. The result is not validated.
func FromFields(raw map[string]string) Application {
	trimmed := make(map[string]string, len(raw))
	for k, v := range raw {
		trimmed[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	var app Application
	for _, f := range fieldMap {
		for _, key := range f.keys {
			if v := trimmed[key]; v != "" {
				f.set(&app, v)
				break
			}
		}
	}
	if app.TeachingFormat == "" {
		app.TeachingFormat = DefaultTeachingFormat
	}
	return app
}

// HasRequired reports whether full name, email and expertise are present.
func (a *Application) HasRequired() bool {
	return a.FullName != "" && a.Email != "" && a.Expertise != ""
}
