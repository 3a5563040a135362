// Package criteria matches chat messages, commands and item names against
// configured rules such as Contains[a,b] or Any.
package criteria

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Predicate is the kind of comparison a rule makes.
type Predicate int

const (
	Any Predicate = iota
	Contains
	ContainsSubstring
	StartsWith
	EndsWith
	Equals
)

var predicateNames = map[Predicate]string{
	Any:               "Any",
	Contains:          "Contains",
	ContainsSubstring: "ContainsSubstring",
	StartsWith:        "StartsWith",
	EndsWith:          "EndsWith",
	Equals:            "Equals",
}

func (p Predicate) String() string {
	if s, ok := predicateNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Predicate(%d)", int(p))
}

// parsePredicate accepts "StartsWith", "starts with", "STARTS_WITH" and so on.
func parsePredicate(s string) (Predicate, bool) {
	switch squash(s) {
	case "any":
		return Any, true
	case "contains":
		return Contains, true
	case "containssubstring":
		return ContainsSubstring, true
	case "startswith":
		return StartsWith, true
	case "endswith":
		return EndsWith, true
	case "equals":
		return Equals, true
	}
	return 0, false
}

func squash(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Rule is a predicate over a list of literals; literals are OR'd.
type Rule struct {
	Predicate     Predicate
	Literals      []string
	CaseSensitive bool
}

// Parse reads a rule key of the form Predicate[a,b,...] or the bare word Any.
// Parsed rules are case-insensitive.
func Parse(key string) (Rule, error) {
	key = strings.TrimSpace(key)

	open := strings.IndexByte(key, '[')
	if open < 0 {
		p, ok := parsePredicate(key)
		if !ok || p != Any {
			return Rule{}, fmt.Errorf("criteria %q: expected Any or Predicate[...]", key)
		}
		return Rule{Predicate: Any}, nil
	}
	if !strings.HasSuffix(key, "]") {
		return Rule{}, fmt.Errorf("criteria %q: missing ']'", key)
	}

	p, ok := parsePredicate(key[:open])
	if !ok {
		return Rule{}, fmt.Errorf("criteria %q: unknown predicate %q", key, key[:open])
	}
	if p == Any {
		return Rule{Predicate: Any}, nil
	}

	var literals []string
	for _, lit := range strings.Split(key[open+1:len(key)-1], ",") {
		if lit = strings.TrimSpace(lit); lit != "" {
			literals = append(literals, lit)
		}
	}
	if len(literals) == 0 {
		return Rule{}, fmt.Errorf("criteria %q: no literals", key)
	}
	return Rule{Predicate: p, Literals: literals}, nil
}

// MustParse is Parse that panics; for tests and static tables.
func MustParse(key string) Rule {
	r, err := Parse(key)
	if err != nil {
		panic(err)
	}
	return r
}

// ForCategory builds the rule of a chat/command filter category:
// "Starts With", "Ends With", "Contains", "Contains SubString",
// "Equals Exactly" (case-sensitive) or "Equals Ignore Case".
func ForCategory(category, literal string) (Rule, error) {
	lit := []string{literal}
	switch squash(category) {
	case "startswith":
		return Rule{Predicate: StartsWith, Literals: lit}, nil
	case "endswith":
		return Rule{Predicate: EndsWith, Literals: lit}, nil
	case "contains":
		return Rule{Predicate: Contains, Literals: lit}, nil
	case "containssubstring":
		return Rule{Predicate: ContainsSubstring, Literals: lit}, nil
	case "equalsexactly":
		return Rule{Predicate: Equals, Literals: lit, CaseSensitive: true}, nil
	case "equalsignorecase", "equals":
		return Rule{Predicate: Equals, Literals: lit}, nil
	}
	return Rule{}, fmt.Errorf("unknown criteria category %q", category)
}

// Match reports whether subject satisfies the rule.
func (r Rule) Match(subject string) bool {
	if r.Predicate == Any {
		return true
	}
	if !r.CaseSensitive {
		subject = strings.ToLower(subject)
	}
	for _, lit := range r.Literals {
		if !r.CaseSensitive {
			lit = strings.ToLower(lit)
		}
		if r.matchOne(subject, lit) {
			return true
		}
	}
	return false
}

func (r Rule) matchOne(subject, lit string) bool {
	switch r.Predicate {
	case Contains:
		return containsWord(subject, lit)
	case ContainsSubstring:
		return strings.Contains(subject, lit)
	case StartsWith:
		return strings.HasPrefix(subject, lit)
	case EndsWith:
		return strings.HasSuffix(subject, lit)
	case Equals:
		return subject == lit
	}
	return false
}

func (r Rule) String() string {
	if r.Predicate == Any {
		return "Any"
	}
	return r.Predicate.String() + "[" + strings.Join(r.Literals, ",") + "]"
}

// containsWord reports whether lit occurs in s delimited by non-word
// characters or the ends of s. Underscores delimit too, so WOOL matches
// WHITE_WOOL.
func containsWord(s, lit string) bool {
	if lit == "" {
		return false
	}
	for from := 0; from <= len(s)-len(lit); {
		i := strings.Index(s[from:], lit)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(lit)

		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(s) || !isWordRune(after)) {
			return true
		}

		_, size := utf8.DecodeRuneInString(s[start:])
		from = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
