package translate

import (
	"regexp"
	"strings"
)

// ParsedArticle is a candidate article extracted from a translated document.
type ParsedArticle struct {
	ArticleNumber int    `json:"article_number"`
	Title         string `json:"title,omitempty"`
	Content       string `json:"content"`
}

// ParsedRecital is a candidate recital extracted from a translated document.
type ParsedRecital struct {
	RecitalNumber int    `json:"recital_number"`
	Content       string `json:"content"`
}

// ParsedDefinition is a defined term extracted from the definitions article.
type ParsedDefinition struct {
	DefinitionNumber int    `json:"definition_number"`
	Term             string `json:"term"`
	Content          string `json:"content"`
}

// ParsedAnnex is a candidate annex extracted from a translated document.
type ParsedAnnex struct {
	AnnexNumber  int    `json:"annex_number"`
	RomanNumeral string `json:"roman_numeral"`
	Title        string `json:"title,omitempty"`
	Content      string `json:"content"`
}

// ParsedFootnote is a footnote detected in the trailing region of a document.
type ParsedFootnote struct {
	Marker  string `json:"marker"`
	Content string `json:"content"`
}

// ParsedContent holds everything extracted from one uploaded or pasted
// document. Each category is independently possibly empty; an empty category
// is not an error by itself.
type ParsedContent struct {
	Articles         []*ParsedArticle    `json:"articles"`
	Recitals         []*ParsedRecital    `json:"recitals"`
	Definitions      []*ParsedDefinition `json:"definitions"`
	Annexes          []*ParsedAnnex      `json:"annexes"`
	Footnotes        []*ParsedFootnote   `json:"footnotes"`
	DetectedLanguage string              `json:"detected_language"`
}

// Parser extracts structural units from translated regulatory text.
// Parsing never fails: malformed input yields a partial (possibly empty)
// ParsedContent, and document-quality problems surface later through
// validation rather than as parse-time errors.
type Parser struct {
	patterns *PatternSet

	// recitalGapTolerance bounds how many recital numbers may be skipped
	// while still accepting a parenthesized integer as the next recital.
	// Extraction from PDF text loses markers often enough that requiring a
	// strict n+1 sequence drops real recitals.
	recitalGapTolerance int

	// definitionsArticle is the article whose content is scanned for
	// defined terms. Article 2 in this regulation.
	definitionsArticle int

	recitalPattern    *regexp.Regexp
	definitionPattern *regexp.Regexp
	footnotePattern   *regexp.Regexp
	quotedTermPattern *regexp.Regexp
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithPatternSet replaces the default multilingual marker patterns.
func WithPatternSet(ps *PatternSet) ParserOption {
	return func(p *Parser) { p.patterns = ps }
}

// WithRecitalGapTolerance sets the maximum gap accepted between consecutive
// recital numbers.
func WithRecitalGapTolerance(n int) ParserOption {
	return func(p *Parser) { p.recitalGapTolerance = n }
}

// WithDefinitionsArticle sets which article's content is scanned for
// defined terms.
func WithDefinitionsArticle(n int) ParserOption {
	return func(p *Parser) { p.definitionsArticle = n }
}

// NewParser creates a Parser with the default patterns and heuristics.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		patterns:            DefaultPatternSet(),
		recitalGapTolerance: 3,
		definitionsArticle:  2,

		recitalPattern:    regexp.MustCompile(`^\((\d+)\)\s+(\S.*)$`),
		definitionPattern: regexp.MustCompile(`^\((\d+)\)\s+['‘’"\x{201c}\x{201d}]([^'‘’"\x{201c}\x{201d}]+)['‘’"\x{201c}\x{201d}]\s*(.*)$`),
		footnotePattern:   regexp.MustCompile(`^[(\[](\d+)[)\]]\s+(\S.*)$`),
		quotedTermPattern: regexp.MustCompile(`^\(\d+\)\s+['‘’"\x{201c}\x{201d}]`),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseDocument extracts structural units from raw document text. The input
// may come from page-by-page PDF extraction or from pasted plain text.
// Categories are extracted independently: a document with no recitals still
// yields its articles, and vice versa.
func (p *Parser) ParseDocument(rawText string) *ParsedContent {
	lines := preprocess(strings.Split(rawText, "\n"))

	parsed := &ParsedContent{
		Articles:  p.extractArticles(lines),
		Recitals:  p.extractRecitals(lines),
		Annexes:   p.extractAnnexes(lines),
		Footnotes: p.extractFootnotes(lines),
	}
	parsed.Definitions = p.extractDefinitions(parsed.Articles)
	parsed.DetectedLanguage = p.patterns.DetectLanguage(lines)

	return parsed
}

// extractArticles scans for article headings in any supported language.
// Article content runs until the next article heading or a chapter/annex
// boundary. Titles are taken only from inline heading suffixes
// ("Article 1 — Subject matter"); a bare line after the heading is content.
func (p *Parser) extractArticles(lines []string) []*ParsedArticle {
	articles := make([]*ParsedArticle, 0)

	var current *ParsedArticle
	var body strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(body.String())
		articles = append(articles, current)
		current = nil
		body.Reset()
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if num, title, _, ok := p.patterns.MatchArticle(trimmed); ok {
			flush()
			current = &ParsedArticle{ArticleNumber: num, Title: title}
			continue
		}

		if p.patterns.MatchChapter(trimmed) {
			flush()
			continue
		}
		if _, _, ok := p.patterns.MatchAnnex(trimmed); ok {
			flush()
			continue
		}

		if current == nil || trimmed == "" {
			continue
		}

		if body.Len() > 0 {
			body.WriteString("\n")
		}
		body.WriteString(trimmed)
	}
	flush()

	return articles
}

// extractRecitals scans for parenthesized integer markers at line start.
// Incidental numeric parentheses in running text are rejected by two
// heuristics: the marker must sit at line start, and its number must
// continue the accepted sequence within the configured gap tolerance.
// A marker immediately followed by a quoted term is a definition entry,
// never a recital.
func (p *Parser) extractRecitals(lines []string) []*ParsedRecital {
	recitals := make([]*ParsedRecital, 0)

	var current *ParsedRecital
	var body strings.Builder
	lastAccepted := 0

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(body.String())
		recitals = append(recitals, current)
		current = nil
		body.Reset()
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if m := p.recitalPattern.FindStringSubmatch(trimmed); m != nil && !p.quotedTermPattern.MatchString(trimmed) {
			num := mustAtoi(m[1])
			if p.acceptsRecitalNumber(num, lastAccepted) {
				flush()
				current = &ParsedRecital{RecitalNumber: num}
				body.WriteString(m[2])
				lastAccepted = num
				continue
			}
		}

		// A structural heading ends the recital region for the current
		// recital; scanning continues in case extraction interleaved pages.
		if _, _, _, ok := p.patterns.MatchArticle(trimmed); ok {
			flush()
			continue
		}
		if p.patterns.MatchChapter(trimmed) {
			flush()
			continue
		}
		if _, _, ok := p.patterns.MatchAnnex(trimmed); ok {
			flush()
			continue
		}

		if current != nil && trimmed != "" {
			body.WriteString(" ")
			body.WriteString(trimmed)
		}
	}
	flush()

	return recitals
}

// acceptsRecitalNumber applies the sequential-order heuristic. The first
// recital must be numbered within the gap tolerance of 1; each subsequent
// recital must advance the sequence without exceeding the tolerance.
func (p *Parser) acceptsRecitalNumber(num, lastAccepted int) bool {
	if lastAccepted == 0 {
		return num >= 1 && num <= 1+p.recitalGapTolerance
	}
	return num > lastAccepted && num-lastAccepted <= 1+p.recitalGapTolerance
}

// extractDefinitions pulls defined terms out of the definitions article's
// content using the "(n) 'term' ..." sub-pattern. The quote-delimited term
// keeps the pattern language-agnostic: no per-language "means" vocabulary
// is required.
func (p *Parser) extractDefinitions(articles []*ParsedArticle) []*ParsedDefinition {
	definitions := make([]*ParsedDefinition, 0)

	var defArticle *ParsedArticle
	for _, art := range articles {
		if art.ArticleNumber == p.definitionsArticle {
			defArticle = art
			break
		}
	}
	if defArticle == nil || defArticle.Content == "" {
		return definitions
	}

	var current *ParsedDefinition
	var body strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(body.String())
		definitions = append(definitions, current)
		current = nil
		body.Reset()
	}

	for _, line := range strings.Split(defArticle.Content, "\n") {
		if m := p.definitionPattern.FindStringSubmatch(line); m != nil {
			flush()
			current = &ParsedDefinition{
				DefinitionNumber: mustAtoi(m[1]),
				Term:             strings.TrimSpace(m[2]),
			}
			body.WriteString(strings.TrimSpace(m[3]))
			continue
		}
		if current != nil && strings.TrimSpace(line) != "" {
			if body.Len() > 0 {
				body.WriteString(" ")
			}
			body.WriteString(strings.TrimSpace(line))
		}
	}
	flush()

	return definitions
}

// extractAnnexes scans for annex headings keyed by roman numeral. Annex
// content runs until the next annex heading or end of document.
func (p *Parser) extractAnnexes(lines []string) []*ParsedAnnex {
	annexes := make([]*ParsedAnnex, 0)

	var current *ParsedAnnex
	var body strings.Builder
	titlePending := false

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(body.String())
		annexes = append(annexes, current)
		current = nil
		body.Reset()
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if roman, _, ok := p.patterns.MatchAnnex(trimmed); ok {
			flush()
			current = &ParsedAnnex{
				AnnexNumber:  romanToInt(roman),
				RomanNumeral: roman,
			}
			titlePending = true
			continue
		}

		if current == nil || trimmed == "" {
			continue
		}

		if titlePending {
			titlePending = false
			if !startsBodyContent(trimmed) {
				current.Title = trimmed
				continue
			}
		}

		if body.Len() > 0 {
			body.WriteString("\n")
		}
		body.WriteString(trimmed)
	}
	flush()

	return annexes
}

// footnoteRegionDivisor and footnoteRegionMinLines bound the trailing region
// scanned for footnotes: the final fifth of the document, but at least 40
// lines when the document is long enough.
const (
	footnoteRegionDivisor  = 5
	footnoteRegionMinLines = 40
)

// extractFootnotes detects footnotes in the trailing region of the document,
// keyed by their "(n)" or "[n]" marker token.
func (p *Parser) extractFootnotes(lines []string) []*ParsedFootnote {
	footnotes := make([]*ParsedFootnote, 0)

	regionLen := len(lines) / footnoteRegionDivisor
	if regionLen < footnoteRegionMinLines {
		regionLen = footnoteRegionMinLines
	}
	if regionLen > len(lines) {
		regionLen = len(lines)
	}
	region := lines[len(lines)-regionLen:]

	var current *ParsedFootnote
	var body strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(body.String())
		footnotes = append(footnotes, current)
		current = nil
		body.Reset()
	}

	for _, line := range region {
		trimmed := strings.TrimSpace(line)

		if m := p.footnotePattern.FindStringSubmatch(trimmed); m != nil {
			// Footnote bodies cite sources; a line that reads like a
			// recital or definition opener is skipped by requiring the
			// marker not to continue into a long prose block already
			// claimed by the recital extractor. Footnotes are best-effort.
			flush()
			current = &ParsedFootnote{Marker: m[1]}
			body.WriteString(m[2])
			continue
		}

		if current != nil && trimmed != "" {
			body.WriteString(" ")
			body.WriteString(trimmed)
		}
	}
	flush()

	return footnotes
}

// startsBodyContent reports whether a line opens article body content
// rather than a title: a numbered paragraph ("1. ..." or with non-breaking
// space padding) or a parenthesized point ("(1) ", "(a) ").
func startsBodyContent(line string) bool {
	if startsWithParagraphNumber(line) {
		return true
	}
	return startsWithPointMarker(line)
}

// startsWithPointMarker checks for "(1) " / "(a) " style openers.
func startsWithPointMarker(line string) bool {
	if len(line) < 4 || line[0] != '(' {
		return false
	}
	closeIdx := strings.Index(line, ")")
	if closeIdx < 2 || closeIdx > 4 {
		return false
	}
	if closeIdx+1 >= len(line) {
		return false
	}
	return line[closeIdx+1] == ' '
}

// startsWithParagraphNumber checks for a leading paragraph number such as
// "1. " or "1.  " (PDF extraction uses non-breaking spaces).
func startsWithParagraphNumber(line string) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) || line[i] != '.' {
		return false
	}
	rest := line[i+1:]
	return strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, " ")
}
