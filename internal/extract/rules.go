package extract

import "regexp"

// Rule is one candidate pattern for a logical field. Rules are evaluated in
// declared order and the first one that matches wins; a miss is not an error,
// it just falls through to the next candidate.
type Rule struct {
	Name  string
	Apply func(text string) (string, bool)
}

// captureRule matches re against the text and returns its first capture
// group. The first occurrence in document order wins; no semantic
// disambiguation is attempted.
func captureRule(name string, expr string) Rule {
	re := regexp.MustCompile(expr)
	return Rule{
		Name: name,
		Apply: func(text string) (string, bool) {
			m := re.FindStringSubmatch(text)
			if m == nil {
				return "", false
			}
			return m[1], true
		},
	}
}

// spanRule captures everything between the end of the start marker and the
// beginning of the next boundary marker, or to the end of the text when the
// boundary never occurs. It stands in for lookahead-style patterns, which the
// regexp engine does not support.
func spanRule(name string, start, boundary string) Rule {
	startRE := regexp.MustCompile(start)
	boundaryRE := regexp.MustCompile(boundary)
	return Rule{
		Name: name,
		Apply: func(text string) (string, bool) {
			loc := startRE.FindStringIndex(text)
			if loc == nil {
				return "", false
			}
			rest := text[loc[1]:]
			if b := boundaryRE.FindStringIndex(rest); b != nil {
				rest = rest[:b[0]]
			}
			return rest, true
		},
	}
}

// firstMatch runs the cascade and reports which rule (if any) produced the
// value. The empty name means every candidate missed.
func firstMatch(rules []Rule, text string) (value string, rule string, ok bool) {
	for _, r := range rules {
		if v, matched := r.Apply(text); matched {
			return v, r.Name, true
		}
	}
	return "", "", false
}
