package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/logbot/logbot/internal/logstore"
)

var (
	emailRe      = regexp.MustCompile(`(?i)email`)
	phoneRe      = regexp.MustCompile(`(?i)phone`)
	ssnRe        = regexp.MustCompile(`(?i)ssn|social_security`)
	creditCardRe = regexp.MustCompile(`(?i)credit_card|card_number`)
	fullMaskRe   = regexp.MustCompile(`(?i)password|secret|token|api_key|access_key|private_key`)
)

// DataMasker masks values of sensitive-looking result columns.
type DataMasker struct {
	sensitiveColumns []string
}

func NewDataMasker(sensitiveColumns []string) *DataMasker {
	lower := make([]string, len(sensitiveColumns))
	for i, c := range sensitiveColumns {
		lower[i] = strings.ToLower(c)
	}
	return &DataMasker{sensitiveColumns: lower}
}

// MaskResult masks sensitive columns and returns their names. rs is
// returned as is when nothing is sensitive, otherwise a masked copy is
// returned and rs is left untouched. Nil values stay nil.
func (m *DataMasker) MaskResult(rs *logstore.ResultSet) (*logstore.ResultSet, []string) {
	if rs == nil {
		return nil, nil
	}
	var idx []int
	var names []string
	for i, c := range rs.Columns {
		if m.IsSensitive(c) {
			idx = append(idx, i)
			names = append(names, c)
		}
	}
	if len(idx) == 0 {
		return rs, nil
	}

	out := rs.Clone()
	for _, row := range out.Rows {
		for _, i := range idx {
			if row[i] == nil {
				continue
			}
			row[i] = maskValue(rs.Columns[i], fmt.Sprint(row[i]))
		}
	}
	return out, names
}

// IsSensitive reports whether values of col should be masked.
func (m *DataMasker) IsSensitive(col string) bool {
	lower := strings.ToLower(col)
	for _, s := range m.sensitiveColumns {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return emailRe.MatchString(col) || phoneRe.MatchString(col) ||
		ssnRe.MatchString(col) || creditCardRe.MatchString(col) || fullMaskRe.MatchString(col)
}

func maskValue(col, val string) string {
	switch {
	case emailRe.MatchString(col):
		return maskEmail(val)
	case phoneRe.MatchString(col):
		return maskPhone(val)
	case ssnRe.MatchString(col):
		return "***-**-****"
	case creditCardRe.MatchString(col):
		return maskCreditCard(val)
	default:
		return "***"
	}
}

// maskEmail: "john.doe@example.com" → "jo***@***.com"
func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}
	visible := min(2, len(local))
	ext := domain[strings.LastIndex(domain, ".")+1:]
	return fmt.Sprintf("%s***@***.%s", local[:visible], ext)
}

// maskPhone keeps the last four digits.
func maskPhone(phone string) string {
	d := digits(phone)
	if len(d) < 4 {
		return "***-***-****"
	}
	return "***-***-" + d[len(d)-4:]
}

// maskCreditCard: "4111111111111111" → "****-****-****-1111"
func maskCreditCard(cc string) string {
	d := digits(cc)
	if len(d) < 4 {
		return "****-****-****-****"
	}
	return "****-****-****-" + d[len(d)-4:]
}

func digits(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
