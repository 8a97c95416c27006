package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
		ok   bool
	}{
		"plain":             {"a@b.com", "a@b.com", true},
		"mixed case":        {"  Jane@Example.COM ", "jane@example.com", true},
		"missing domain":    {"jane@", "", false},
		"display name form": {"Jane <jane@example.com>", "", false},
		"empty":             {"", "", false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := Normalize(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jane", DisplayName(" Jane ", "x@y.z"))
	assert.Equal(t, "Jane Doe", DisplayName("", "jane.doe@example.com"))
	assert.Equal(t, "Mentor", DisplayName("", "mentor@example.com"))
}
