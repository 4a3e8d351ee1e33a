package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrQueryRejected is returned for generated SQL outside the read-only
// allow-list.
var ErrQueryRejected = errors.New("query rejected")

var leadingRead = regexp.MustCompile(`(?i)^[\s(]*(SELECT|WITH)\b`)

// sqlWriteVerb matches a write statement starting the query or one of its
// parenthesized parts, such as a data-modifying CTE body.
var sqlWriteVerb = regexp.MustCompile(`(?i)(^|[(),])\s*(INSERT|UPDATE|DELETE|MERGE|UPSERT|DROP|ALTER|CREATE|TRUNCATE|GRANT|REVOKE|REPLACE\s+INTO)\b`)

var sqlDangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bINTO\b`),
	regexp.MustCompile(`(?i)\b(ATTACH|DETACH)\b`),
	regexp.MustCompile(`(?i)\bPRAGMA\b`),
	regexp.MustCompile(`(?i)\bVACUUM\b`),
	regexp.MustCompile(`(?i)\bEXEC(UTE)?\b`),
	regexp.MustCompile(`(?i)\bLOAD\s+DATA\b`),
	regexp.MustCompile(`(?i)\bLOAD_(FILE|EXTENSION)\s*\(`),
	regexp.MustCompile(`(?i)\b(BENCHMARK|SLEEP|PG_SLEEP)\s*\(`),
	regexp.MustCompile(`(?i)\bWAITFOR\s+DELAY\b`),
}

// SQLValidator keeps generated SQL to a single read-only statement.
type SQLValidator struct{}

func NewSQLValidator() *SQLValidator {
	return &SQLValidator{}
}

// Validate returns a reason if sql is not allowed, or "" if it is.
// Comments and the contents of quoted strings and identifiers are ignored.
func (v *SQLValidator) Validate(sql string) string {
	code, statements, ok := scanSQL(sql)
	switch {
	case !ok:
		return "unterminated quote or comment"
	case statements == 0:
		return "SQL cannot be empty"
	case statements > 1:
		return "multiple statements are not allowed"
	}

	code = strings.TrimSpace(code)
	if !leadingRead.MatchString(code) {
		return "only SELECT queries are allowed"
	}
	if m := sqlWriteVerb.FindStringSubmatch(code); m != nil {
		return "write statement not allowed: " + strings.ToUpper(m[2])
	}
	for _, pattern := range sqlDangerousPatterns {
		if pattern.MatchString(code) {
			return "disallowed SQL pattern: " + pattern.String()
		}
	}
	return ""
}

// Check is Validate as an error wrapping ErrQueryRejected.
func (v *SQLValidator) Check(sql string) error {
	if reason := v.Validate(sql); reason != "" {
		return fmt.Errorf("%w: %s", ErrQueryRejected, reason)
	}
	return nil
}

// scanSQL drops comments and statement separators, blanks quoted text and
// counts the non-empty statements. ok is false when a quote or block
// comment never closes.
func scanSQL(sql string) (code string, statements int, ok bool) {
	src := []rune(sql)
	var b strings.Builder
	pending := false

	for i := 0; i < len(src); i++ {
		r := src[i]
		switch {
		case r == '\'' || r == '"' || r == '`':
			end := closingQuote(src, i+1, r)
			if end < 0 {
				return "", 0, false
			}
			b.WriteRune(r)
			b.WriteString(strings.Repeat(" ", end-i-1))
			b.WriteRune(r)
			i = end
			pending = true
		case r == '-' && i+1 < len(src) && src[i+1] == '-':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			b.WriteRune(' ')
		case r == '/' && i+1 < len(src) && src[i+1] == '*':
			j := i + 2
			for j+1 < len(src) && (src[j] != '*' || src[j+1] != '/') {
				j++
			}
			if j+1 >= len(src) {
				return "", 0, false
			}
			i = j + 1
			b.WriteRune(' ')
		case r == ';':
			if pending {
				statements++
				pending = false
			}
			b.WriteRune(' ')
		default:
			if !unicode.IsSpace(r) {
				pending = true
			}
			b.WriteRune(r)
		}
	}
	if pending {
		statements++
	}
	return b.String(), statements, true
}

// closingQuote returns the index of the quote ending a quoted run that
// starts at from, treating a doubled quote as an escaped one, or -1.
func closingQuote(src []rune, from int, quote rune) int {
	for j := from; j < len(src); j++ {
		if src[j] != quote {
			continue
		}
		if j+1 < len(src) && src[j+1] == quote {
			j++
			continue
		}
		return j
	}
	return -1
}
