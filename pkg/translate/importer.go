package translate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// ArticleTranslation is one article row to be persisted for a language.
type ArticleTranslation struct {
	ArticleNumber int
	Title         string
	Content       string
}

// RecitalTranslation is one recital row to be persisted for a language.
type RecitalTranslation struct {
	RecitalNumber int
	Content       string
}

// TranslationStore is the persistence boundary for translation rows.
type TranslationStore interface {
	ExistingArticleNumbers(ctx context.Context, languageCode string) ([]int, error)
	ExistingRecitalNumbers(ctx context.Context, languageCode string) ([]int, error)
	InsertArticleTranslations(ctx context.Context, languageCode string, rows []*ArticleTranslation) error
	InsertRecitalTranslations(ctx context.Context, languageCode string, rows []*RecitalTranslation) error
}

// CategoryOutcome reports the import outcome for one category. A failed
// category records the error and how many rows were attempted so the
// administrator can retry just that part.
type CategoryOutcome struct {
	Attempted int
	Saved     int
	Err       error
}

// ImportResult reports the per-category outcome of one import commit.
// Articles and recitals are reported distinctly: a partial failure is never
// collapsed into an overall success.
type ImportResult struct {
	LanguageCode string
	Articles     CategoryOutcome
	Recitals     CategoryOutcome
}

// Succeeded reports whether every attempted category was saved.
func (r *ImportResult) Succeeded() bool {
	return r.Articles.Err == nil && r.Recitals.Err == nil
}

// Importer commits selected parsed units as translation rows. The parsed
// preview is owned by the caller and is not modified or discarded here, so
// a failed commit can be retried without re-uploading the document.
type Importer struct {
	store  TranslationStore
	logger *zap.Logger
}

// NewImporter creates an Importer. A nil logger defaults to a no-op logger.
func NewImporter(store TranslationStore, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{store: store, logger: logger}
}

// ExistingNumbers loads the already-imported article and recital numbers
// for a language, for use by the validator's duplicate detection.
func (imp *Importer) ExistingNumbers(ctx context.Context, languageCode string) (*ExistingNumbers, error) {
	articleNums, err := imp.store.ExistingArticleNumbers(ctx, languageCode)
	if err != nil {
		return nil, fmt.Errorf("loading existing article numbers: %w", err)
	}
	recitalNums, err := imp.store.ExistingRecitalNumbers(ctx, languageCode)
	if err != nil {
		return nil, fmt.Errorf("loading existing recital numbers: %w", err)
	}

	existing := &ExistingNumbers{
		Articles: make(map[int]bool, len(articleNums)),
		Recitals: make(map[int]bool, len(recitalNums)),
	}
	for _, n := range articleNums {
		existing.Articles[n] = true
	}
	for _, n := range recitalNums {
		existing.Recitals[n] = true
	}
	return existing, nil
}

// ImportTranslations persists the explicitly selected subset of the parsed
// preview as translation rows tagged with languageCode. Each category is
// committed independently: a recital failure does not roll back saved
// articles, and both outcomes are reported.
func (imp *Importer) ImportTranslations(ctx context.Context, parsed *ParsedContent, languageCode string, selectedArticles, selectedRecitals []int) (*ImportResult, error) {
	tag, err := language.Parse(languageCode)
	if err != nil {
		return nil, fmt.Errorf("invalid language code %q: %w", languageCode, err)
	}
	code := tag.String()

	result := &ImportResult{LanguageCode: code}

	articleRows := selectArticles(parsed.Articles, selectedArticles)
	result.Articles.Attempted = len(articleRows)
	if len(articleRows) > 0 {
		if err := imp.store.InsertArticleTranslations(ctx, code, articleRows); err != nil {
			result.Articles.Err = fmt.Errorf("saving %d article translation(s): %w", len(articleRows), err)
			imp.logger.Error("article import failed",
				zap.String("language", code),
				zap.Int("attempted", len(articleRows)),
				zap.Error(err))
		} else {
			result.Articles.Saved = len(articleRows)
		}
	}

	recitalRows := selectRecitals(parsed.Recitals, selectedRecitals)
	result.Recitals.Attempted = len(recitalRows)
	if len(recitalRows) > 0 {
		if err := imp.store.InsertRecitalTranslations(ctx, code, recitalRows); err != nil {
			result.Recitals.Err = fmt.Errorf("saving %d recital translation(s): %w", len(recitalRows), err)
			imp.logger.Error("recital import failed",
				zap.String("language", code),
				zap.Int("attempted", len(recitalRows)),
				zap.Error(err))
		} else {
			result.Recitals.Saved = len(recitalRows)
		}
	}

	imp.logger.Info("import finished",
		zap.String("language", code),
		zap.Int("articles_saved", result.Articles.Saved),
		zap.Int("recitals_saved", result.Recitals.Saved))

	return result, nil
}

// selectArticles filters the parsed articles down to the selected numbers.
func selectArticles(articles []*ParsedArticle, selected []int) []*ArticleTranslation {
	want := make(map[int]bool, len(selected))
	for _, n := range selected {
		want[n] = true
	}

	rows := make([]*ArticleTranslation, 0, len(selected))
	for _, art := range articles {
		if want[art.ArticleNumber] {
			rows = append(rows, &ArticleTranslation{
				ArticleNumber: art.ArticleNumber,
				Title:         art.Title,
				Content:       art.Content,
			})
		}
	}
	return rows
}

// selectRecitals filters the parsed recitals down to the selected numbers.
func selectRecitals(recitals []*ParsedRecital, selected []int) []*RecitalTranslation {
	want := make(map[int]bool, len(selected))
	for _, n := range selected {
		want[n] = true
	}

	rows := make([]*RecitalTranslation, 0, len(selected))
	for _, rec := range recitals {
		if want[rec.RecitalNumber] {
			rows = append(rows, &RecitalTranslation{
				RecitalNumber: rec.RecitalNumber,
				Content:       rec.Content,
			})
		}
	}
	return rows
}
