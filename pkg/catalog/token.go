package catalog

import "strconv"

// CombineCode folds a generation and season into one ordered code
func CombineCode(generation, season int64) int64 {
	return generation*CodeBase + season
}

// ParseVersion scans a "G<digits>S<digits>" prefix of token and returns the
// generation, the season and whatever follows the prefix.
func ParseVersion(token string) (generation, season int64, rest string, ok bool) {
	if len(token) == 0 || token[0] != 'G' {
		return 0, 0, "", false
	}
	generation, rest, ok = scanNumber(token[1:])
	if !ok || len(rest) == 0 || rest[0] != 'S' {
		return 0, 0, "", false
	}
	season, rest, ok = scanNumber(rest[1:])
	if !ok {
		return 0, 0, "", false
	}
	return generation, season, rest, true
}

// ParseCode is ParseVersion folded into one code
func ParseCode(token string) (code int64, rest string, ok bool) {
	gen, season, rest, ok := ParseVersion(token)
	if !ok {
		return 0, "", false
	}
	return CombineCode(gen, season), rest, true
}

// MatchLocaleCode parses a "G<digits>S<digits>@<locale>" token and reports
// whether its locale equals locale exactly.
func MatchLocaleCode(token, locale string) (int64, bool) {
	code, rest, ok := ParseCode(token)
	if !ok || len(rest) == 0 || rest[0] != '@' {
		return 0, false
	}
	if rest[1:] != locale {
		return 0, false
	}
	return code, true
}

// DefaultCode derives the default enable code of a feature from its default
// token, or NeverCode when the token has no leading version.
func DefaultCode(token string) int64 {
	code, _, ok := ParseCode(token)
	if !ok {
		return NeverCode
	}
	return code
}

// FormatCode renders a code back into "G<generation>S<season>" form
func FormatCode(code int64) string {
	if code == NeverCode {
		return "never"
	}
	return "G" + strconv.FormatInt(code/CodeBase, 10) + "S" + strconv.FormatInt(code%CodeBase, 10)
}

// scanNumber consumes one or more ASCII digits. Values that do not fit in
// an int32 are rejected.
func scanNumber(s string) (int64, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.ParseInt(s[:i], 10, 32)
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}
