package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const MaxPromptLength = 2000

// ErrPromptRejected marks a question blocked before it reaches any model.
var ErrPromptRejected = errors.New("prompt rejected")

var dangerousPatterns = []*regexp.Regexp{
	// command execution
	regexp.MustCompile(`(?i)\brm\s+-`),
	regexp.MustCompile(`(?i)\brm\s+/`),
	regexp.MustCompile(`(?i)\b(cp|mv)\s+.*\s+/etc`),
	regexp.MustCompile(`(?i)\b(curl|wget)\s+`),
	regexp.MustCompile(`(?i)\bnc\s+-`),
	regexp.MustCompile(`(?i)\b(bash|sh)\s+-`),
	regexp.MustCompile(`(?i)\bpython\s+.*\.py`),
	regexp.MustCompile(`(?i)\bnode\s+.*\.js`),
	regexp.MustCompile(`(?i)\bsudo\s+`),

	// file access and traversal
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`/etc/(passwd|shadow)`),
	regexp.MustCompile(`/proc/`),
	regexp.MustCompile(`/sys/`),
	regexp.MustCompile(`\.env(\s|$)`),
	regexp.MustCompile(`id_rsa`),
	regexp.MustCompile(`\.ssh/`),
	regexp.MustCompile(`>>?\s*/`),

	// code execution
	regexp.MustCompile(`(?i)\beval\s*\(`),
	regexp.MustCompile(`(?i)\bexec\s*\(`),
	regexp.MustCompile(`(?i)\bsystem\s*\(`),
	regexp.MustCompile(`(?i)__import__\s*\(`),
	regexp.MustCompile(`(?i)subprocess`),
	regexp.MustCompile(`(?i)os\.system`),
	regexp.MustCompile(`(?i)\bpopen\b`),

	// prompt injection
	regexp.MustCompile(`(?i)(ignore|disregard|forget|override)\s+(all\s+)?(the\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)(new|change)\s+context\s*:`),
	regexp.MustCompile(`(?i)instead\s+of\s+the\s+above`),
	regexp.MustCompile(`(?i)(reveal|print|show)\s+(your\s+|the\s+)?system\s+prompt`),
}

var suspiciousIndicators = []string{
	"create file", "import os", "import sys",
}

// PromptValidator screens questions for injection attempts and shell or
// code payloads. Topic is not checked here; off-topic questions go to the
// relevance gate.
type PromptValidator struct {
	maxLength int
}

func NewPromptValidator(maxLength int) *PromptValidator {
	if maxLength <= 0 {
		maxLength = MaxPromptLength
	}
	return &PromptValidator{maxLength: maxLength}
}

type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks prompt length and dangerous content.
func (v *PromptValidator) Validate(prompt string) ValidationResult {
	if n := utf8.RuneCountInString(prompt); n > v.maxLength {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("prompt too long: %d chars (max %d)", n, v.maxLength),
		}
	}
	if strings.TrimSpace(prompt) == "" {
		return ValidationResult{Valid: false, Message: "prompt cannot be empty"}
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(prompt) {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("dangerous pattern detected: %s", pattern.String()),
			}
		}
	}

	lower := strings.ToLower(prompt)
	for _, indicator := range suspiciousIndicators {
		if strings.Contains(lower, indicator) {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("suspicious instruction indicator detected: %q", indicator),
			}
		}
	}

	return ValidationResult{Valid: true, Message: "ok"}
}

// Check is Validate as an error wrapping ErrPromptRejected.
func (v *PromptValidator) Check(prompt string) error {
	if r := v.Validate(prompt); !r.Valid {
		return fmt.Errorf("%w: %s", ErrPromptRejected, r.Message)
	}
	return nil
}
