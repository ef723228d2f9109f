package compose

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maskWord replaces whole-word, case-insensitive occurrences of word in
// sentence with Blank. It reports whether anything was replaced.
//
// regexp's \b only knows ASCII word characters, so word boundaries are
// checked here with unicode instead.
func maskWord(sentence, word string) (string, bool) {
	word = strings.TrimSpace(word)
	if word == "" || sentence == "" {
		return sentence, false
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(word))
	if err != nil {
		return sentence, false
	}

	var b strings.Builder
	last, found := 0, false
	for _, loc := range re.FindAllStringIndex(sentence, -1) {
		if !boundaryBefore(sentence, loc[0]) || !boundaryAfter(sentence, loc[1]) {
			continue
		}
		b.WriteString(sentence[last:loc[0]])
		b.WriteString(Blank)
		last = loc[1]
		found = true
	}
	if !found {
		return sentence, false
	}
	b.WriteString(sentence[last:])
	return b.String(), true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}
