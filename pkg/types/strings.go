package types

import (
	"regexp"
	"strings"
)

var (
	identRe    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	alphanumRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	latinRe    = regexp.MustCompile(`^[A-Za-z]+$`)
)

var longString = strings.Repeat("a", 1000)

// String is any Go string.
type String struct{}

func (String) String() string { return "String" }

func (t String) Test(v any) error {
	if _, ok := v.(string); !ok {
		return violation(t, v, "non-string passed")
	}
	return nil
}

func (String) Generate() ([]any, error) {
	return []any{
		"",
		"a",
		longString,
		" ",
		"abc123",
		"Two words sentence.",
		`\`,
		"%s",
		"2",
		"баклажан",
	}, nil
}

// Identifier is a non-empty string of ASCII letters, digits,
// underscores and hyphens.
type Identifier struct{}

func (Identifier) String() string { return "Identifier" }

func (t Identifier) Test(v any) error {
	return testPattern(t, v, identRe, "invalid identifier characters")
}

func (Identifier) Generate() ([]any, error) {
	return []any{
		"_",
		"-",
		"a",
		longString,
		"abc123",
		"2",
		"test_underscore",
		"test-underscore",
		"-hyphenstart",
		"_underscorestart",
		"hyphenend-",
		"underscoreend_",
	}, nil
}

// Alphanumeric is a non-empty string of ASCII letters and digits.
type Alphanumeric struct{}

func (Alphanumeric) String() string { return "Alphanumeric" }

func (t Alphanumeric) Test(v any) error {
	return testPattern(t, v, alphanumRe, "invalid alphanumeric characters")
}

func (Alphanumeric) Generate() ([]any, error) {
	return []any{"a", longString, "abc123", "2"}, nil
}

// Latin is a non-empty string of ASCII letters.
type Latin struct{}

func (Latin) String() string { return "Latin" }

func (t Latin) Test(v any) error {
	return testPattern(t, v, latinRe, "invalid latin characters")
}

func (Latin) Generate() ([]any, error) {
	return []any{"a", "P", "tree", "TfadFftsF", longString}, nil
}

func testPattern(t Type, v any, re *regexp.Regexp, reason string) error {
	s, ok := v.(string)
	if !ok {
		return violation(t, v, "non-string passed")
	}
	if !re.MatchString(s) {
		return violation(t, v, "%s", reason)
	}
	return nil
}
