package translate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/coolbeans/lexnote/pkg/source"
)

func englishSourceWithArticles(t *testing.T, n int) *source.EnglishSource {
	t.Helper()

	articles := make([]*source.Article, 0, n)
	for i := 1; i <= n; i++ {
		articles = append(articles, &source.Article{
			ArticleNumber: i,
			Title:         fmt.Sprintf("Article %d title", i),
			Content:       "content",
		})
	}
	return source.New(articles, nil)
}

func parsedWithArticles(nums ...int) *ParsedContent {
	parsed := &ParsedContent{}
	for _, n := range nums {
		parsed.Articles = append(parsed.Articles, &ParsedArticle{
			ArticleNumber: n,
			Content:       "translated content",
		})
	}
	return parsed
}

func TestValidate_CountMismatchIsWarningNotError(t *testing.T) {
	parsed := parsedWithArticles(1, 2, 3)
	src := englishSourceWithArticles(t, 105)

	result := NewValidator().Validate(parsed, src, nil)

	if result.ArticleCount != 3 {
		t.Errorf("article count: got %d, want 3", result.ArticleCount)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a count mismatch warning")
	}
	if !strings.Contains(result.Warnings[0], "expected 105") {
		t.Errorf("warning text: got %q", result.Warnings[0])
	}
	if !result.IsValid {
		t.Error("warnings alone must not invalidate the result")
	}
	if len(result.Errors) != 0 {
		t.Errorf("errors: got %v, want none", result.Errors)
	}
}

func TestValidate_ZeroCategoryStillWarns(t *testing.T) {
	// A recitals-only document has no articles at all; that is still a
	// count mismatch worth flagging, not a silently skipped check.
	parsed := &ParsedContent{}
	for i := 1; i <= DefaultExpectedRecitals; i++ {
		parsed.Recitals = append(parsed.Recitals, &ParsedRecital{RecitalNumber: i, Content: "x"})
	}

	result := NewValidator().Validate(parsed, nil, nil)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "article count mismatch: found 0") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing zero-article warning, got %v", result.Warnings)
	}
	if len(result.Errors) != 0 || !result.IsValid {
		t.Errorf("zero articles with recitals present must not be an error: %v", result.Errors)
	}
}

func TestValidate_EmptyDocumentIsError(t *testing.T) {
	result := NewValidator().Validate(&ParsedContent{}, nil, nil)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for zero articles and zero recitals")
	}
	if result.IsValid {
		t.Error("IsValid must be false when errors exist")
	}
}

func TestValidate_IsValidInvariant(t *testing.T) {
	// IsValid must equal (len(Errors) == 0) across reruns with different
	// inputs; it is derived, never cached.
	v := NewValidator()

	cases := []*ParsedContent{
		{},
		parsedWithArticles(1),
		{Recitals: []*ParsedRecital{{RecitalNumber: 1, Content: "x"}}},
	}
	for i, parsed := range cases {
		result := v.Validate(parsed, nil, nil)
		if result.IsValid != (len(result.Errors) == 0) {
			t.Errorf("case %d: IsValid=%v but %d errors", i, result.IsValid, len(result.Errors))
		}
	}
}

func TestValidate_Duplicates(t *testing.T) {
	parsed := parsedWithArticles(1, 2, 3)
	parsed.Recitals = []*ParsedRecital{{RecitalNumber: 7, Content: "x"}}

	existing := &ExistingNumbers{
		Articles: map[int]bool{2: true, 3: true},
		Recitals: map[int]bool{7: true},
	}

	result := NewValidator().Validate(parsed, nil, existing)

	if got, want := result.DuplicateArticles, []int{2, 3}; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("duplicate articles: got %v, want %v", got, want)
	}
	if len(result.DuplicateRecitals) != 1 || result.DuplicateRecitals[0] != 7 {
		t.Errorf("duplicate recitals: got %v, want [7]", result.DuplicateRecitals)
	}
	if !result.IsValid {
		t.Error("duplicates are warnings, not errors")
	}
}

func TestValidate_NoEnglishMatchIsWarning(t *testing.T) {
	parsed := parsedWithArticles(1, 200)
	src := englishSourceWithArticles(t, 105)

	result := NewValidator().Validate(parsed, src, nil)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "article 200 has no English match") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing no-English-match warning, got %v", result.Warnings)
	}
	if !result.IsValid {
		t.Error("missing English counterpart must not block import")
	}
}

func TestValidationResult_Checklist(t *testing.T) {
	result := NewValidator().Validate(&ParsedContent{}, nil, nil)

	report := result.String()
	if !strings.Contains(report, "ERROR") {
		t.Errorf("checklist missing error line:\n%s", report)
	}
	if !strings.Contains(report, "BLOCKED") {
		t.Errorf("checklist missing blocked status:\n%s", report)
	}
}
