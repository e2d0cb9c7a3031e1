package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jane.doe@example.com", "ja******@e******.com"},
		{"ab@x.io", "**@*.io"},
		{"someone@localhost", "so*****@l********"},
		{"not-an-email", "***@***"},
		{"@example.com", "***@***"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskEmail(tt.in))
		})
	}
}

func TestMaskString(t *testing.T) {
	out := MaskString("alert for jane.doe@example.com with token eyJhbGciOi.eyJzdWIiOi.sig")
	assert.NotContains(t, out, "jane.doe@example.com")
	assert.Contains(t, out, "ja******@e******.com")
	assert.Contains(t, out, "eyJ***REDACTED***")
}

func TestMaskPhoneNumber(t *testing.T) {
	assert.Equal(t, "*******4567", MaskPhoneNumber("+1234564567"))
	assert.Equal(t, "****", MaskPhoneNumber("12"))
}
