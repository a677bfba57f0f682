// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. This package helps prevent
// the accidental leakage of credentials, connection strings, file paths, and other
// sensitive data that might be included in error messages.
package redact

import (
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedHostPlaceholder       = "[REDACTED_HOST]"
	RedactedUUIDPlaceholder       = "[REDACTED_UUID]"
	SQLValuesPlaceholder          = "[SQL_VALUES_REDACTED]"
	SQLWherePlaceholder           = "[SQL_WHERE_REDACTED]"
)

// rule pairs a pattern with its replacement. Replacements may reference
// capture groups with ${n}.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules run in order. SQL statements are collapsed first so the values they
// carry never reach the narrower patterns, and connection strings go before
// email and host matching because "user:pass@host" looks like both.
var rules = []rule{
	// SQL statements keep their verb and target, never their values.
	{
		regexp.MustCompile(`(?i)\bSELECT\s[^\n]*?\bFROM\b[^\n]*`),
		"SELECT FROM... " + SQLValuesPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(INSERT\s+INTO\s+[\w."]+\s*(?:\([^)]*\)\s*)?VALUES\s*)[^\n]*`),
		"${1}" + SQLValuesPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(UPDATE\s+[\w."]+\s+SET\s+)[^\n]*`),
		"${1}" + SQLValuesPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(DELETE\s+FROM\s+[\w."]+\s+)WHERE\b[^\n]*`),
		"${1}" + SQLWherePlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(?:CREATE|ALTER|DROP)\s+(?:TABLE|INDEX|SCHEMA|VIEW|DATABASE)\b[^\n]*`),
		"[REDACTED_SQL]",
	},

	// PostgreSQL error details echo the offending row.
	{regexp.MustCompile(`Key \(([^)]*)\)=\([^)]*\)`), "Key (${1})=(" + RedactionPlaceholder + ")"},
	{regexp.MustCompile(`Failing row contains \([^\n]*\)`), "Failing row contains (" + RedactionPlaceholder + ")"},

	// Stack trace fragments
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},

	// Database and cache connection strings
	{
		regexp.MustCompile(`(?i)(postgres|postgresql|rediss?|mysql|mongodb|db|database|connection)://[^@\s]+@`),
		RedactedCredentialPlaceholder,
	},

	// Credentials and tokens
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},
	{regexp.MustCompile(`(AKIA|AccessKey(Id)?)([^a-zA-Z0-9])?[A-Z0-9]{8,}`), RedactedKeyPlaceholder},
	// Three-part base64url JWT
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},

	// Entity identifiers
	{
		regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`),
		RedactedUUIDPlaceholder,
	},

	// File paths
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), RedactedPathPlaceholder},

	// Email addresses
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},

	{regexp.MustCompile(`(?:at )?line ?\d+`), "[REDACTED_LINE_NUMBER]"},
	{regexp.MustCompile(`(?i)syntax error|syntax problem|parse error`), "[REDACTED_SYNTAX_ERROR]"},

	// Hosts: dotted names and IPv4 addresses, with an optional port.
	{
		regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`),
		RedactedHostPlaceholder,
	},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?::\d{1,5})?\b`), RedactedHostPlaceholder},

	{
		regexp.MustCompile(`(?i)(?:no such file|file not found|can't open|cannot open|file error)`),
		"[REDACTED_FILE_ERROR]",
	},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
