package chunk

import (
	"regexp"
	"sort"
	"strings"
)

// Role vocabulary found across security policies. Longest-first so that
// "system administrator" claims its text before "administrator" can.
var roleTerms = []string{
	"chief information security officer",
	"data protection officer",
	"incident response team",
	"system administrator",
	"compliance officer",
	"security officer",
	"network engineer",
	"administrator",
	"third party",
	"contractor",
	"supervisor",
	"developer",
	"employee",
	"engineer",
	"auditor",
	"manager",
	"vendor",
	"CISO",
	"DPO",
	"CTO",
	"CIO",
	"HR",
}

var rolePatterns = compileRolePatterns()

func compileRolePatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(roleTerms))
	for i, term := range roleTerms {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `s?\b`)
	}
	return patterns
}

// Roles reports which known role terms the text mentions, sorted and unique.
// A match blanks its span so shorter terms cannot re-match inside it.
func Roles(text string) []string {
	found := make(map[string]bool)
	remaining := text
	for i, pattern := range rolePatterns {
		if !pattern.MatchString(remaining) {
			continue
		}
		found[canonicalRole(roleTerms[i])] = true
		remaining = pattern.ReplaceAllString(remaining, " ")
	}
	if len(found) == 0 {
		return nil
	}
	roles := make([]string, 0, len(found))
	for role := range found {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

func canonicalRole(term string) string {
	if term == strings.ToUpper(term) {
		return term //acronyms stay as-is
	}
	return strings.ToLower(term)
}
