package css

import (
	"strings"
)

// Parse parses a primitive CSS file: blocks of "key: value;" under comma-separated selectors.
// A selector is .class, #id or a node type such as slider. No combinators, no @rules.
// Later rules override earlier ones.
func Parse(content string) *Stylesheet {
	sheet := &Stylesheet{}
	content = stripComments(content)
	for {
		rule, rest, ok := parseOneRule(content)
		if !ok {
			break
		}
		if len(rule.Selectors) > 0 {
			sheet.Rules = append(sheet.Rules, rule)
		}
		content = rest
	}
	return sheet
}

func stripComments(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if i+1 < len(s) && s[i] == '/' && s[i+1] == '*' {
			j := strings.Index(s[i+2:], "*/")
			if j < 0 {
				break
			}
			i += j + 4
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// parseOneRule finds the next "selectors { ... }" and returns the rule and the rest of the string.
// Invalid selectors are dropped; a rule with none left is returned empty so the caller skips it.
func parseOneRule(s string) (Rule, string, bool) {
	open := strings.Index(s, "{")
	if open == -1 {
		return Rule{}, "", false
	}
	end := findMatchingBrace(s, open)
	if end == -1 {
		return Rule{}, "", false
	}
	var sels []string
	for _, sel := range strings.Split(s[:open], ",") {
		if sel = strings.TrimSpace(sel); validSelector(sel) {
			sels = append(sels, sel)
		}
	}
	rule := Rule{Selectors: sels}
	if len(sels) > 0 {
		rule.Props = parseDeclarations(s[open+1 : end])
	}
	return rule, s[end+1:], true
}

func validSelector(sel string) bool {
	if sel == "" || strings.ContainsAny(sel, " \t\n>+~:") {
		return false
	}
	if sel[0] == '.' || sel[0] == '#' {
		return len(sel) > 1
	}
	return true
}

func findMatchingBrace(s string, openIdx int) int {
	depth := 1
	for i := openIdx + 1; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseDeclarations(body string) map[string]string {
	props := make(map[string]string)
	for _, part := range strings.Split(body, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		if k = strings.TrimSpace(k); k != "" {
			props[k] = strings.TrimSpace(v)
		}
	}
	return props
}
