package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromFields(t *testing.T) {
	t.Run("json client keys", func(t *testing.T) {
		app := FromFields(map[string]string{
			"fullName":        "Ada Obi",
			"email":           "ada@example.com",
			"expertise":       "Data Science",
			"experience":      "5",
			"preferredFormat": "Recorded Courses",
			"linkedin":        "https://linkedin.com/in/ada",
		})
		assert.Equal(t, "Ada Obi", app.FullName)
		assert.Equal(t, "ada@example.com", app.Email)
		assert.Equal(t, "Data Science", app.Expertise)
		assert.Equal(t, "5", app.Experience)
		assert.Equal(t, "Recorded Courses", app.TeachingFormat)
		assert.Equal(t, "https://linkedin.com/in/ada", app.LinkedIn)
		assert.True(t, app.HasRequired())
	})

	t.Run("form builder labels with padded keys", func(t *testing.T) {
		app := FromFields(map[string]string{
			" Full Name ":         "  Ada Obi ",
			"Email Address":       "ada@example.com",
			"Area Of Expertise":   "Design",
			"Years Of Experience": "3",
			"Professional Bio":    "Teaches design.",
			"Portfolio/Website":   "https://ada.design",
			"Phone Number":        "+2348000000000",
		})
		assert.Equal(t, "Ada Obi", app.FullName)
		assert.Equal(t, "Design", app.Expertise)
		assert.Equal(t, "3", app.Experience)
		assert.Equal(t, "Teaches design.", app.Bio)
		assert.Equal(t, "https://ada.design", app.Portfolio)
		assert.Equal(t, "+2348000000000", app.Phone)
	})

	t.Run("aliases fall through when the preferred key is blank", func(t *testing.T) {
		app := FromFields(map[string]string{
			"fullName":       " ",
			"name":           "Ada",
			"specialization": "Music",
			"description":    "Bio text",
		})
		assert.Equal(t, "Ada", app.FullName)
		assert.Equal(t, "Music", app.Expertise)
		assert.Equal(t, "Bio text", app.Bio)
	})

	t.Run("teaching format defaults", func(t *testing.T) {
		app := FromFields(map[string]string{"fullName": "Ada"})
		assert.Equal(t, DefaultTeachingFormat, app.TeachingFormat)
	})

	t.Run("missing required fields", func(t *testing.T) {
		app := FromFields(map[string]string{"fullName": "Ada", "email": "ada@example.com", "unknown": "x"})
		assert.False(t, app.HasRequired())
	})
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"", "pending", "approved", "rejected"} {
		got, ok := ParseStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, Status(raw), got)
	}
	_, ok := ParseStatus("archived")
	assert.False(t, ok)
}

func TestNewApplicationNotice(t *testing.T) {
	app := &Application{ID: "app-1", FullName: "Ada Obi"}
	n := NewApplicationNotice("n-1", app)
	assert.Equal(t, NotificationTypeNewApplication, n.Type)
	assert.Equal(t, "New Instructor Application", n.Title)
	assert.Equal(t, "Ada Obi has applied to become an instructor", n.Message)
	assert.Equal(t, PriorityMedium, n.Priority)
	assert.Equal(t, "app-1", n.ApplicationID)
	assert.False(t, n.Read)
}
