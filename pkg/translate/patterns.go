// Package translate provides heuristic parsing and validation of translated
// regulatory documents prior to import. It splits an opaque blob of extracted
// text into structural units (articles, recitals, definitions, annexes,
// footnotes) using multilingual marker patterns, and cross-references the
// result against the English source document.
package translate

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarkerFamily identifies a class of structural marker.
type MarkerFamily string

const (
	FamilyArticle  MarkerFamily = "article"
	FamilyChapter  MarkerFamily = "chapter"
	FamilyAnnex    MarkerFamily = "annex"
	FamilyFootnote MarkerFamily = "footnote"
)

// MarkerPattern pairs a language tag with a compiled heading pattern.
// Patterns are consulted in registration order, so earlier languages take
// priority when two patterns would match the same line.
type MarkerPattern struct {
	Language string
	Family   MarkerFamily
	Pattern  *regexp.Regexp
}

// PatternSet holds the marker patterns for all supported languages.
// Adding a language is a data change: either append to the defaults here or
// load additional patterns from a YAML file via LoadYAML.
type PatternSet struct {
	articles []*MarkerPattern
	chapters []*MarkerPattern
	annexes  []*MarkerPattern
}

// patternSpec is the YAML shape for user-supplied marker patterns.
type patternSpec struct {
	Patterns []struct {
		Language string `yaml:"language"`
		Family   string `yaml:"family"`
		Regex    string `yaml:"regex"`
	} `yaml:"patterns"`
}

// DefaultPatternSet returns the built-in multilingual marker patterns.
// Article patterns must capture the article number in group 1; annex
// patterns must capture the roman numeral in group 1.
func DefaultPatternSet() *PatternSet {
	ps := &PatternSet{}

	articleWords := []struct{ lang, word string }{
		{"en", "Article"},
		{"de", "Artikel"},
		{"fr", "Article"},
		{"es", "Artículo"},
		{"it", "Articolo"},
		{"nl", "Artikel"},
		{"pt", "Artigo"},
		{"pl", "Artykuł"},
		{"sv", "Artikel"},
		{"da", "Artikel"},
	}
	for _, w := range articleWords {
		ps.articles = append(ps.articles, &MarkerPattern{
			Language: w.lang,
			Family:   FamilyArticle,
			Pattern:  regexp.MustCompile(`(?i)^` + w.word + `\s+(\d+)\s*\.?\s*(?:[–—:-]\s*(\S.*))?$`),
		})
	}

	chapterWords := []struct{ lang, word string }{
		{"en", "CHAPTER"},
		{"de", "KAPITEL"},
		{"fr", "CHAPITRE"},
		{"es", "CAPÍTULO"},
		{"it", "CAPO"},
		{"nl", "HOOFDSTUK"},
		{"pt", "CAPÍTULO"},
		{"pl", "ROZDZIAŁ"},
		{"sv", "KAPITEL"},
		{"da", "KAPITEL"},
	}
	for _, w := range chapterWords {
		ps.chapters = append(ps.chapters, &MarkerPattern{
			Language: w.lang,
			Family:   FamilyChapter,
			Pattern:  regexp.MustCompile(`(?i)^` + w.word + `\s+([IVXLCDM]+|\d+)\s*$`),
		})
	}

	annexWords := []struct{ lang, word string }{
		{"en", "ANNEX"},
		{"de", "ANHANG"},
		{"fr", "ANNEXE"},
		{"es", "ANEXO"},
		{"it", "ALLEGATO"},
		{"nl", "BIJLAGE"},
		{"pt", "ANEXO"},
		{"pl", "ZAŁĄCZNIK"},
		{"sv", "BILAGA"},
		{"da", "BILAG"},
	}
	for _, w := range annexWords {
		ps.annexes = append(ps.annexes, &MarkerPattern{
			Language: w.lang,
			Family:   FamilyAnnex,
			Pattern:  regexp.MustCompile(`(?i)^` + w.word + `\s+([IVXLCDM]+)\s*$`),
		})
	}

	return ps
}

// LoadYAML appends marker patterns from a YAML document. User patterns are
// appended after the defaults, so they extend rather than override.
func (ps *PatternSet) LoadYAML(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading pattern file: %w", err)
	}

	var spec patternSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("parsing pattern file: %w", err)
	}

	for i, p := range spec.Patterns {
		compiled, err := regexp.Compile(p.Regex)
		if err != nil {
			return fmt.Errorf("pattern %d (%s/%s): %w", i, p.Language, p.Family, err)
		}
		mp := &MarkerPattern{
			Language: p.Language,
			Family:   MarkerFamily(p.Family),
			Pattern:  compiled,
		}
		switch mp.Family {
		case FamilyArticle:
			ps.articles = append(ps.articles, mp)
		case FamilyChapter:
			ps.chapters = append(ps.chapters, mp)
		case FamilyAnnex:
			ps.annexes = append(ps.annexes, mp)
		default:
			return fmt.Errorf("pattern %d: unknown family %q", i, p.Family)
		}
	}

	return nil
}

// MatchArticle reports whether line is an article heading, returning the
// article number, any inline title after the number ("Article 1 — Subject
// matter"), and the language of the first matching pattern. Titles on their
// own line after the heading are not recognized: a bare following line is
// body content, and only an explicit dash or colon marks an inline title.
func (ps *PatternSet) MatchArticle(line string) (number int, title string, language string, ok bool) {
	for _, p := range ps.articles {
		if m := p.Pattern.FindStringSubmatch(line); m != nil {
			if len(m) > 2 {
				title = strings.TrimSpace(m[2])
			}
			return mustAtoi(m[1]), title, p.Language, true
		}
	}
	return 0, "", "", false
}

// MatchChapter reports whether line is a chapter heading.
func (ps *PatternSet) MatchChapter(line string) bool {
	for _, p := range ps.chapters {
		if p.Pattern.MatchString(line) {
			return true
		}
	}
	return false
}

// MatchAnnex reports whether line is an annex heading, returning the roman
// numeral and the language of the first matching pattern.
func (ps *PatternSet) MatchAnnex(line string) (roman string, language string, ok bool) {
	for _, p := range ps.annexes {
		if m := p.Pattern.FindStringSubmatch(line); m != nil {
			return strings.ToUpper(m[1]), p.Language, true
		}
	}
	return "", "", false
}

// DetectLanguage guesses the document language from marker vocabulary.
// Annex and chapter words are weighted higher than article words because
// they are more distinctive across languages ("Artikel" alone is ambiguous
// between German, Dutch, Swedish and Danish). Returns "unknown" when no
// language scores strictly above all others.
func (ps *PatternSet) DetectLanguage(lines []string) string {
	scores := make(map[string]int)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		for _, p := range ps.articles {
			if p.Pattern.MatchString(trimmed) {
				scores[p.Language]++
			}
		}
		for _, p := range ps.chapters {
			if p.Pattern.MatchString(trimmed) {
				scores[p.Language] += 2
			}
		}
		for _, p := range ps.annexes {
			if p.Pattern.MatchString(trimmed) {
				scores[p.Language] += 3
			}
		}
	}

	best, bestScore, tied := "unknown", 0, false
	for lang, score := range scores {
		switch {
		case score > bestScore:
			best, bestScore, tied = lang, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return "unknown"
	}
	return best
}

// romanToInt converts a roman numeral to its integer value. Returns 0 for
// an empty or malformed numeral.
func romanToInt(roman string) int {
	values := map[byte]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}

	total := 0
	for i := 0; i < len(roman); i++ {
		v, ok := values[roman[i]]
		if !ok {
			return 0
		}
		if i+1 < len(roman) && values[roman[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	return total
}

// mustAtoi converts a string of digits already validated by a pattern group.
func mustAtoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
