package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coolbeans/lexnote/pkg/translate"
)

// ExistingArticleNumbers returns the article numbers already translated for
// the language, in ascending order.
func (s *Store) ExistingArticleNumbers(ctx context.Context, languageCode string) ([]int, error) {
	return s.existingNumbers(ctx, languageCode, "article")
}

// ExistingRecitalNumbers returns the recital numbers already translated for
// the language, in ascending order.
func (s *Store) ExistingRecitalNumbers(ctx context.Context, languageCode string) ([]int, error) {
	return s.existingNumbers(ctx, languageCode, "recital")
}

func (s *Store) existingNumbers(ctx context.Context, languageCode, unitType string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT unit_number FROM translations
		 WHERE language_code = ? AND unit_type = ?
		 ORDER BY unit_number`,
		languageCode, unitType)
	if err != nil {
		return nil, fmt.Errorf("query existing %s numbers: %w", unitType, err)
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan %s number: %w", unitType, err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s numbers: %w", unitType, err)
	}
	return numbers, nil
}

// InsertArticleTranslations saves article rows for one language inside a
// single transaction: either every row in the category commits or none do.
func (s *Store) InsertArticleTranslations(ctx context.Context, languageCode string, translations []*translate.ArticleTranslation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO translations (id, language_code, unit_type, unit_number, title, content)
		 VALUES (?, ?, 'article', ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range translations {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), languageCode, t.ArticleNumber, t.Title, t.Content); err != nil {
			return fmt.Errorf("insert article %d: %w", t.ArticleNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("article translations saved",
		zap.String("language", languageCode),
		zap.Int("count", len(translations)))
	return nil
}

// InsertRecitalTranslations saves recital rows for one language inside a
// single transaction.
func (s *Store) InsertRecitalTranslations(ctx context.Context, languageCode string, translations []*translate.RecitalTranslation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO translations (id, language_code, unit_type, unit_number, content)
		 VALUES (?, ?, 'recital', ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range translations {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), languageCode, t.RecitalNumber, t.Content); err != nil {
			return fmt.Errorf("insert recital %d: %w", t.RecitalNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("recital translations saved",
		zap.String("language", languageCode),
		zap.Int("count", len(translations)))
	return nil
}

// TranslatedLanguages returns the distinct language codes with at least one
// translation row.
func (s *Store) TranslatedLanguages(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT language_code FROM translations ORDER BY language_code`)
	if err != nil {
		return nil, fmt.Errorf("query languages: %w", err)
	}
	defer rows.Close()

	var langs []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		langs = append(langs, code)
	}
	return langs, rows.Err()
}
