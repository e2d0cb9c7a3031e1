package security

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	jwtPattern   = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`)
)

// MaskString masks email addresses and bearer tokens embedded in free text
func MaskString(s string) string {
	s = emailPattern.ReplaceAllStringFunc(s, MaskEmail)
	s = jwtPattern.ReplaceAllString(s, "eyJ***REDACTED***")
	return s
}

// MaskEmail keeps the first two characters of the local part and the
// top-level domain: "jane.doe@example.com" becomes "ja******@e******.com".
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return "***@***"
	}

	maskedLocal := maskPartial(local, 2)
	if dot := strings.LastIndex(domain, "."); dot > 0 {
		return maskedLocal + "@" + maskPartial(domain[:dot], 1) + domain[dot:]
	}
	return maskedLocal + "@" + maskPartial(domain, 1)
}

// MaskPhoneNumber shows only the last four digits
func MaskPhoneNumber(phone string) string {
	if len(phone) < 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

func maskPartial(s string, showChars int) string {
	if len(s) <= showChars {
		return strings.Repeat("*", len(s))
	}
	return s[:showChars] + strings.Repeat("*", len(s)-showChars)
}
