package matching

import "strings"

// Vocabulary mined from request free text. Matching is case-insensitive;
// single-word keywords match on word boundaries so that e.g. "ac" never
// matches inside "space".
var roomTypeKeywords = []string{
	"single", "double", "twin", "studio", "sharing", "ensuite",
	"putra", "putri", "campur",
}

var amenityKeywords = []string{
	"wifi", "ac", "parking", "laundry", "kitchen", "furnished",
	"balcony", "cctv", "water heater",
}

// landmarksByArea maps a campus area to landmarks students name in requests.
// A listing in the area is considered adjacent to a request naming one of the
// landmarks, and vice versa.
var landmarksByArea = map[string][]string{
	"tembalang":  {"undip", "polines"},
	"sekaran":    {"unnes"},
	"jatinangor": {"unpad", "ipdn"},
	"depok":      {"ui", "gunadarma"},
	"jebres":     {"uns"},
	"ciputat":    {"uin"},
}

var wildcardLocations = map[string]bool{
	"any":          true,
	"anywhere":     true,
	"any location": true,
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isWildcard(loc string) bool {
	return wildcardLocations[loc]
}

func isWordChar(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
}

// textHasKeyword reports whether normalized text contains the keyword:
// substring match for multi-word keywords, whole-word match otherwise.
func textHasKeyword(text, kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(text, kw)
	}
	for _, w := range strings.FieldsFunc(text, func(r rune) bool { return !isWordChar(r) }) {
		if w == kw {
			return true
		}
	}
	return false
}

// extractKeywords returns the vocabulary entries present in the text.
func extractKeywords(text string, vocab []string) []string {
	text = normalize(text)
	if text == "" {
		return nil
	}
	var found []string
	for _, kw := range vocab {
		if textHasKeyword(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}
