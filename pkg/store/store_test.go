package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/coolbeans/lexnote/pkg/highlight"
	"github.com/coolbeans/lexnote/pkg/translate"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:", nil)
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndQueryTranslations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	articles := []*translate.ArticleTranslation{
		{ArticleNumber: 1, Title: "Gegenstand", Content: "Inhalt eins"},
		{ArticleNumber: 3, Content: "Inhalt drei"},
	}
	if err := s.InsertArticleTranslations(ctx, "de", articles); err != nil {
		t.Fatalf("inserting articles: %v", err)
	}

	recitals := []*translate.RecitalTranslation{
		{RecitalNumber: 2, Content: "Erwägungsgrund zwei"},
	}
	if err := s.InsertRecitalTranslations(ctx, "de", recitals); err != nil {
		t.Fatalf("inserting recitals: %v", err)
	}

	nums, err := s.ExistingArticleNumbers(ctx, "de")
	if err != nil {
		t.Fatalf("querying article numbers: %v", err)
	}
	if !reflect.DeepEqual(nums, []int{1, 3}) {
		t.Errorf("article numbers: got %v, want [1 3]", nums)
	}

	nums, err = s.ExistingRecitalNumbers(ctx, "de")
	if err != nil {
		t.Fatalf("querying recital numbers: %v", err)
	}
	if !reflect.DeepEqual(nums, []int{2}) {
		t.Errorf("recital numbers: got %v, want [2]", nums)
	}

	// Another language sees nothing.
	nums, err = s.ExistingArticleNumbers(ctx, "fr")
	if err != nil {
		t.Fatalf("querying fr numbers: %v", err)
	}
	if len(nums) != 0 {
		t.Errorf("fr article numbers: got %v, want none", nums)
	}
}

func TestInsertTranslations_DuplicateRollsBackCategory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []*translate.ArticleTranslation{{ArticleNumber: 1, Content: "eins"}}
	if err := s.InsertArticleTranslations(ctx, "de", first); err != nil {
		t.Fatalf("seeding article 1: %v", err)
	}

	// Article 1 collides with the unique constraint; article 2 must not
	// survive the failed batch.
	batch := []*translate.ArticleTranslation{
		{ArticleNumber: 2, Content: "zwei"},
		{ArticleNumber: 1, Content: "eins nochmal"},
	}
	if err := s.InsertArticleTranslations(ctx, "de", batch); err == nil {
		t.Fatal("expected a unique constraint error")
	}

	nums, err := s.ExistingArticleNumbers(ctx, "de")
	if err != nil {
		t.Fatalf("querying article numbers: %v", err)
	}
	if !reflect.DeepEqual(nums, []int{1}) {
		t.Errorf("after rollback: got %v, want [1]", nums)
	}
}

func TestTranslatedLanguages(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, lang := range []string{"fr", "de"} {
		rows := []*translate.RecitalTranslation{{RecitalNumber: 1, Content: "x"}}
		if err := s.InsertRecitalTranslations(ctx, lang, rows); err != nil {
			t.Fatalf("inserting %s: %v", lang, err)
		}
	}

	langs, err := s.TranslatedLanguages(ctx)
	if err != nil {
		t.Fatalf("querying languages: %v", err)
	}
	if !reflect.DeepEqual(langs, []string{"de", "fr"}) {
		t.Errorf("languages: got %v, want [de fr]", langs)
	}
}

func testAnnotation() *highlight.Annotation {
	return &highlight.Annotation{
		ContentType:  highlight.ContentArticle,
		ContentID:    "art-14",
		SelectedText: "electronic health data",
		StartOffset:  10,
		EndOffset:    32,
		Color:        highlight.ColorYellow,
		Comment:      "key definition",
		TagIDs:       []string{"tag-a", "tag-b"},
	}
}

func TestAnnotationLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved, err := s.CreateAnnotation(ctx, testAnnotation())
	if err != nil {
		t.Fatalf("creating annotation: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("ID and timestamp not filled in: %+v", saved)
	}

	got, err := s.GetAnnotation(ctx, saved.ID)
	if err != nil {
		t.Fatalf("getting annotation: %v", err)
	}
	if got.SelectedText != "electronic health data" || got.Color != highlight.ColorYellow {
		t.Errorf("round trip: got %+v", got)
	}
	if !reflect.DeepEqual(got.TagIDs, []string{"tag-a", "tag-b"}) {
		t.Errorf("tags: got %v", got.TagIDs)
	}

	if err := s.UpdateAnnotationComment(ctx, saved.ID, "revised"); err != nil {
		t.Fatalf("updating comment: %v", err)
	}
	got, err = s.GetAnnotation(ctx, saved.ID)
	if err != nil {
		t.Fatalf("re-getting annotation: %v", err)
	}
	if got.Comment != "revised" {
		t.Errorf("comment: got %q, want %q", got.Comment, "revised")
	}

	if err := s.DeleteAnnotation(ctx, saved.ID); err != nil {
		t.Fatalf("deleting annotation: %v", err)
	}
	if _, err := s.GetAnnotation(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
}

func TestCreateAnnotation_RejectsInvalid(t *testing.T) {
	s := openTestStore(t)

	a := testAnnotation()
	a.SelectedText = "   "

	_, err := s.CreateAnnotation(context.Background(), a)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	var invalid *highlight.InvalidAnnotationError
	if !errors.As(err, &invalid) {
		t.Errorf("error type: got %T", err)
	}
}

func TestListAnnotations_ScopedToUnit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := testAnnotation()
	if _, err := s.CreateAnnotation(ctx, first); err != nil {
		t.Fatalf("creating first: %v", err)
	}

	other := testAnnotation()
	other.ContentID = "art-15"
	if _, err := s.CreateAnnotation(ctx, other); err != nil {
		t.Fatalf("creating second: %v", err)
	}

	list, err := s.ListAnnotations(ctx, highlight.ContentArticle, "art-14")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(list) != 1 || list[0].ContentID != "art-14" {
		t.Errorf("list: got %d annotations %+v, want one for art-14", len(list), list)
	}
}

func TestNotFoundOperations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpdateAnnotationComment(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("update: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteAnnotation(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: got %v, want ErrNotFound", err)
	}
}
