package tutor

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Equivalent reports whether answer is obviously the exercise's correct
// answer. Normalization rules:
//   - case, surrounding whitespace, accents and trailing punctuation are ignored
//   - numbers compare by value; "3,5" and "3.50" match "3.5"
//   - fractions compare by value; "2/4" matches "1/2" and "0.5"
//   - for multiple choice, the option letter ("b", "b)") or 1-based index
//     selects the option text
//
// A false result means "not obviously equal", not "wrong"; the model
// decides those.
func Equivalent(answer string, ex Exercise) bool {
	a := fold(answer)
	c := fold(ex.CorrectAnswer)
	if a == "" || c == "" || c == fold(PlaceholderAnswer) {
		return false
	}
	if sameValue(a, c) {
		return true
	}
	if len(ex.Options) == 0 {
		return false
	}

	// The student picked an option by letter or index. An answer that is
	// itself an option's text is never read as an index.
	if !isOption(a, ex.Options) {
		if i, ok := optionIndex(a, len(ex.Options)); ok && sameValue(fold(ex.Options[i]), c) {
			return true
		}
	}
	// The model gave the correct answer as a letter or index, unless it is
	// already an option's text.
	if isOption(c, ex.Options) {
		return false
	}
	if i, ok := optionIndex(c, len(ex.Options)); ok && sameValue(a, fold(ex.Options[i])) {
		return true
	}
	return false
}

func isOption(a string, options []string) bool {
	for _, o := range options {
		if sameValue(a, fold(o)) {
			return true
		}
	}
	return false
}

func sameValue(a, b string) bool {
	if a == b {
		return true
	}
	x, okA := parseNumber(a)
	y, okB := parseNumber(b)
	return okA && okB && math.Abs(x-y) < 1e-9
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lower-cases s, strips accents and trailing sentence punctuation,
// and collapses inner whitespace.
func fold(s string) string {
	if out, _, err := transform.String(accentStripper, s); err == nil {
		s = out
	}
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.TrimRight(s, ".!;")
}

// parseNumber reads integers, decimals with either separator, and a/b
// fractions.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(s, " ", "")
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(strings.ReplaceAll(num, ",", "."), 64)
		d, err2 := strconv.ParseFloat(strings.ReplaceAll(den, ",", "."), 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// optionIndex reads "b", "b)", "(b)", "opcion b" or "2" as a 0-based
// option index.
func optionIndex(s string, n int) (int, bool) {
	s = strings.TrimPrefix(s, "opcion ")
	s = strings.Trim(s, "() .")
	if len(s) == 1 && s[0] >= 'a' && s[0] <= 'z' {
		i := int(s[0] - 'a')
		return i, i < n
	}
	if i, err := strconv.Atoi(s); err == nil && i >= 1 && i <= n {
		return i - 1, true
	}
	return 0, false
}
