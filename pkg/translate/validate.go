package translate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coolbeans/lexnote/pkg/source"
)

// Expected canonical totals for this regulation.
const (
	DefaultExpectedArticles = 105
	DefaultExpectedRecitals = 115
)

// ExistingNumbers holds the article and recital numbers already imported as
// translations for the target language. Supplied by the caller from the
// translation store.
type ExistingNumbers struct {
	Articles map[int]bool
	Recitals map[int]bool
}

// ValidationResult summarizes parse quality before import. Duplicates and
// count mismatches are warnings so the administrator can make an informed,
// selective import; only blocking problems land in Errors.
type ValidationResult struct {
	ArticleCount    int `json:"article_count"`
	RecitalCount    int `json:"recital_count"`
	DefinitionCount int `json:"definition_count"`
	AnnexCount      int `json:"annex_count"`
	FootnoteCount   int `json:"footnote_count"`

	DuplicateArticles []int `json:"duplicate_articles,omitempty"`
	DuplicateRecitals []int `json:"duplicate_recitals,omitempty"`

	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	// IsValid is derived: true iff Errors is empty. Recomputed on every
	// validation run, never cached across parses.
	IsValid bool `json:"is_valid"`
}

// Validator cross-references parsed content against the English source and
// the already-imported translation set.
type Validator struct {
	ExpectedArticles int
	ExpectedRecitals int
}

// NewValidator creates a Validator with the canonical expected totals.
func NewValidator() *Validator {
	return &Validator{
		ExpectedArticles: DefaultExpectedArticles,
		ExpectedRecitals: DefaultExpectedRecitals,
	}
}

// Validate produces the validation report for one parsed document.
// englishSource and existing may be nil, in which case the corresponding
// checks are skipped.
func (v *Validator) Validate(parsed *ParsedContent, englishSource *source.EnglishSource, existing *ExistingNumbers) *ValidationResult {
	result := &ValidationResult{
		ArticleCount:    len(parsed.Articles),
		RecitalCount:    len(parsed.Recitals),
		DefinitionCount: len(parsed.Definitions),
		AnnexCount:      len(parsed.Annexes),
		FootnoteCount:   len(parsed.Footnotes),
	}

	if result.ArticleCount == 0 && result.RecitalCount == 0 {
		result.Errors = append(result.Errors,
			"no articles or recitals could be extracted from the document")
	}

	if result.ArticleCount != v.ExpectedArticles {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"article count mismatch: found %d, expected %d",
			result.ArticleCount, v.ExpectedArticles))
	}
	if result.RecitalCount != v.ExpectedRecitals {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"recital count mismatch: found %d, expected %d",
			result.RecitalCount, v.ExpectedRecitals))
	}

	if existing != nil {
		for _, art := range parsed.Articles {
			if existing.Articles[art.ArticleNumber] {
				result.DuplicateArticles = append(result.DuplicateArticles, art.ArticleNumber)
			}
		}
		for _, rec := range parsed.Recitals {
			if existing.Recitals[rec.RecitalNumber] {
				result.DuplicateRecitals = append(result.DuplicateRecitals, rec.RecitalNumber)
			}
		}
		sort.Ints(result.DuplicateArticles)
		sort.Ints(result.DuplicateRecitals)

		if len(result.DuplicateArticles) > 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%d article(s) already translated: %s",
				len(result.DuplicateArticles), joinInts(result.DuplicateArticles)))
		}
		if len(result.DuplicateRecitals) > 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%d recital(s) already translated: %s",
				len(result.DuplicateRecitals), joinInts(result.DuplicateRecitals)))
		}
	}

	if englishSource != nil {
		for _, art := range parsed.Articles {
			if !englishSource.HasArticle(art.ArticleNumber) {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"article %d has no English match", art.ArticleNumber))
			}
		}
		for _, rec := range parsed.Recitals {
			if !englishSource.HasRecital(rec.RecitalNumber) {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"recital %d has no English match", rec.RecitalNumber))
			}
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// String renders the validation report as a human-readable checklist for
// the administrator.
func (r *ValidationResult) String() string {
	var b strings.Builder

	b.WriteString("Translation Import Validation\n")
	b.WriteString("=============================\n\n")

	fmt.Fprintf(&b, "  Articles:    %d\n", r.ArticleCount)
	fmt.Fprintf(&b, "  Recitals:    %d\n", r.RecitalCount)
	fmt.Fprintf(&b, "  Definitions: %d\n", r.DefinitionCount)
	fmt.Fprintf(&b, "  Annexes:     %d\n", r.AnnexCount)
	fmt.Fprintf(&b, "  Footnotes:   %d\n", r.FootnoteCount)
	b.WriteString("\n")

	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  ERROR: %s\n", e)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  WARNING: %s\n", w)
	}
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		b.WriteString("  No problems detected.\n")
	}

	status := "READY TO IMPORT"
	if !r.IsValid {
		status = "BLOCKED"
	}
	fmt.Fprintf(&b, "\nStatus: %s\n", status)

	return b.String()
}

// joinInts renders a sorted slice of numbers as a comma-separated list.
func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
