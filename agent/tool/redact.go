package tool

import "regexp"

const (
	redactedEmail = "[REDACTED_EMAIL]"
	redactedPhone = "[REDACTED_PHONE]"
)

// Phone shape: optional parenthesized area code, then 3-3-4 digit groups
// separated by space, dot, hyphen, or nothing. Email runs first; the two
// shapes cannot overlap, so one pass per pattern is enough.
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	phonePattern = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// Redact replaces every email-shaped and phone-shaped substring with a fixed
// token. Text without PII passes through byte-identical. Stateless, no error
// conditions; malformed input is processed as-is.
func Redact(text string) string {
	out := emailPattern.ReplaceAllString(text, redactedEmail)
	return phonePattern.ReplaceAllString(out, redactedPhone)
}
