package translator

import (
	"regexp"
	"strings"
)

var (
	reCTE         = regexp.MustCompile(`(?is)(WITH\s+\w+\s+AS\s*\(.+?(?:LIMIT\s+\d+|;\s*$|\z))`)
	reSelectBlock = regexp.MustCompile(`(?is)(SELECT\s+.+?FROM\s+.+?(?:LIMIT\s+\d+|;\s*$|\z))`)
	reSingleLine  = regexp.MustCompile(`(?i)(SELECT\s+\S.+?\bFROM\b\s+\S+)`)
)

// ExtractSQL pulls SQL out of free-form model text using, in order:
//  1. a ```sql fenced block
//  2. any fenced block whose body starts with SELECT or WITH
//  3. a CTE or multi-line SELECT ending at LIMIT n, a final ';' or end of text
//  4. a single-line SELECT ... FROM table
//
// It returns "" when nothing looks like SQL.
func ExtractSQL(text string) string {
	if sql := fencedSQL(text); sql != "" {
		return trimStatement(sql)
	}

	parts := strings.Split(text, "```")
	for i := 1; i < len(parts); i += 2 {
		candidate := strings.TrimSpace(parts[i])
		// drop a language tag line such as "sqlite"
		if nl := strings.Index(candidate, "\n"); nl != -1 {
			first := strings.ToUpper(strings.TrimSpace(candidate[:nl]))
			if !strings.Contains(first, "SELECT") && !strings.Contains(first, "WITH") {
				candidate = strings.TrimSpace(candidate[nl:])
			}
		}
		if startsWithQuery(candidate) {
			return trimStatement(candidate)
		}
	}

	if m := reCTE.FindString(text); m != "" {
		return trimStatement(m)
	}
	if m := reSelectBlock.FindString(text); m != "" {
		candidate := trimStatement(m)
		if strings.Contains(strings.ToUpper(candidate), " FROM ") {
			return candidate
		}
	}
	if m := reSingleLine.FindString(text); m != "" {
		return trimStatement(m)
	}
	return ""
}

func fencedSQL(text string) string {
	idx := strings.Index(strings.ToLower(text), "```sql")
	if idx == -1 {
		return ""
	}
	body := text[idx+len("```sql"):]
	if body != "" && body[0] != '\n' && body[0] != '\r' && body[0] != ' ' {
		return ""
	}
	body = strings.TrimLeft(body, " \r\n")
	end := strings.Index(body, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(body[:end])
}

func startsWithQuery(s string) bool {
	up := strings.ToUpper(s)
	return strings.HasPrefix(up, "SELECT") || strings.HasPrefix(up, "WITH")
}

func trimStatement(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ";")
}
