package translate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// standalonePageNumberPattern matches lines containing only a page number.
	standalonePageNumberPattern = regexp.MustCompile(`^\d+\s*$`)

	// ojHeaderPattern matches Official Journal running headers repeated at
	// page boundaries in PDF-extracted text, e.g.
	// "EN Official Journal of the European Union L 183/15" or its
	// language-neutral celex form "OJ L 183, 17.5.2025".
	ojHeaderPattern = regexp.MustCompile(`(?i)^(?:[A-Z]{2}\s+)?(?:Official Journal|Amtsblatt|Journal officiel|Diario Oficial|Gazzetta ufficiale|Publicatieblad|Jornal Oficial|Dziennik Urzędowy)\b`)

	// ojCiteLinePattern matches bare OJ citation lines ("L 183/15", "OJ L 183").
	ojCiteLinePattern = regexp.MustCompile(`^(?:OJ\s+)?[LC]\s*\d+(?:/\d+)?\s*$`)

	// hyphenatedLineEndPattern matches lines ending in a word break hyphen.
	hyphenatedLineEndPattern = regexp.MustCompile(`\pL-$`)
)

// preprocess cleans PDF-extracted text lines before structural parsing:
// standalone page numbers, Official Journal running headers and bare
// citation lines are dropped, and words hyphenated across line breaks are
// rejoined. Pasted plain text passes through mostly untouched.
func preprocess(lines []string) []string {
	var cleaned []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if standalonePageNumberPattern.MatchString(trimmed) {
			continue
		}
		if ojHeaderPattern.MatchString(trimmed) {
			continue
		}
		if ojCiteLinePattern.MatchString(trimmed) {
			continue
		}

		cleaned = append(cleaned, line)
	}

	return rejoinHyphenated(cleaned)
}

// rejoinHyphenated merges lines where a word is split across a line break
// with a hyphen. The next line must start with a lowercase letter, which
// indicates a word continuation rather than a heading or a new sentence.
func rejoinHyphenated(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}

	var result []string
	for i := 0; i < len(lines); i++ {
		current := strings.TrimRight(lines[i], " \t")

		if i+1 < len(lines) && hyphenatedLineEndPattern.MatchString(current) {
			next := strings.TrimSpace(lines[i+1])
			if next != "" && isLowerStart(next) {
				result = append(result, current[:len(current)-1]+next)
				i++
				continue
			}
		}

		result = append(result, lines[i])
	}

	return result
}

// isLowerStart reports whether s begins with a lowercase letter.
func isLowerStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}
