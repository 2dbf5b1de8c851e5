package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PhonePattern accepts 10 to 15 digits mixed with + - ( ) . and spaces.
var PhonePattern = regexp.MustCompile(`^[+\-(). ]*(?:[0-9][+\-(). ]*){10,15}$`)

type ruleKind int

const (
	kindRequired ruleKind = iota
	kindOptional
	kindNormalize
	kindCheck
)

// Rule is one composable constraint on a field.
type Rule struct {
	kind      ruleKind
	tag       string
	pattern   *regexp.Regexp
	message   string
	normalize func(string) string
}

// Required rejects a missing or blank value.
func Required() Rule {
	return Rule{kind: kindRequired}
}

// Optional lets a missing or blank value through without further checks.
func Optional() Rule {
	return Rule{kind: kindOptional}
}

// Trimmed strips surrounding whitespace before any check runs.
func Trimmed() Rule {
	return Rule{kind: kindNormalize, normalize: strings.TrimSpace}
}

func MinLength(n int) Rule {
	return Rule{
		kind:    kindCheck,
		tag:     fmt.Sprintf("min=%d", n),
		message: "%s must be at least " + fmt.Sprint(n) + " characters",
	}
}

func MaxLength(n int) Rule {
	return Rule{
		kind:    kindCheck,
		tag:     fmt.Sprintf("max=%d", n),
		message: "%s must be at most " + fmt.Sprint(n) + " characters",
	}
}

// Email checks address syntax; the stored value is trimmed and lowercased.
func Email() Rule {
	return Rule{
		kind:      kindCheck,
		tag:       "email",
		message:   "%s must be a valid email address",
		normalize: func(s string) string { return strings.ToLower(strings.TrimSpace(s)) },
	}
}

// Digits accepts only 0-9.
func Digits() Rule {
	return Rule{kind: kindCheck, tag: "number", message: "%s must be a whole number"}
}

// MatchesPattern rejects values the expression does not match.
func MatchesPattern(re *regexp.Regexp, message string) Rule {
	return Rule{kind: kindCheck, pattern: re, message: message}
}

func (r Rule) check(value string) bool {
	if r.pattern != nil {
		return r.pattern.MatchString(value)
	}
	return validate.Var(value, r.tag) == nil
}
