package security

import (
	"regexp"
	"strings"
)

var (
	emailAddrRe  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	cardNumberRe = regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`)
)

// PIIDetector flags questions that ask for, or contain, personal data.
type PIIDetector struct {
	keywords []*regexp.Regexp
	names    []string
}

// NewPIIDetector matches each keyword as whole words, case-insensitively.
func NewPIIDetector(keywords []string) *PIIDetector {
	d := &PIIDetector{}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		d.keywords = append(d.keywords, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(k)+`\b`))
		d.names = append(d.names, k)
	}
	return d
}

// Detect returns true and what matched: a keyword, "email address" or
// "card number".
func (d *PIIDetector) Detect(text string) (bool, string) {
	for i, re := range d.keywords {
		if re.MatchString(text) {
			return true, d.names[i]
		}
	}
	if emailAddrRe.MatchString(text) {
		return true, "email address"
	}
	if cardNumberRe.MatchString(text) {
		return true, "card number"
	}
	return false, ""
}
