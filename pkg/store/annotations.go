package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coolbeans/lexnote/pkg/highlight"
)

// ErrNotFound is returned when an annotation does not exist.
var ErrNotFound = errors.New("annotation not found")

// CreateAnnotation validates and saves a new annotation, returning it with
// its generated ID and creation timestamp filled in. Validation happens
// here, at the creation boundary, so render-time code never sees malformed
// records.
func (s *Store) CreateAnnotation(ctx context.Context, a *highlight.Annotation) (*highlight.Annotation, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	saved := *a
	saved.ID = uuid.NewString()
	saved.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO annotations
		 (id, content_type, content_id, selected_text, start_offset, end_offset, highlight_color, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, string(saved.ContentType), saved.ContentID, saved.SelectedText,
		saved.StartOffset, saved.EndOffset, string(saved.Color), saved.Comment,
		saved.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert annotation: %w", err)
	}

	for _, tagID := range saved.TagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO annotation_tags (annotation_id, tag_id) VALUES (?, ?)`,
			saved.ID, tagID); err != nil {
			return nil, fmt.Errorf("insert annotation tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("annotation created",
		zap.String("id", saved.ID),
		zap.String("content_type", string(saved.ContentType)),
		zap.String("content_id", saved.ContentID))
	return &saved, nil
}

// ListAnnotations returns all annotations for one document unit, oldest
// first.
func (s *Store) ListAnnotations(ctx context.Context, contentType highlight.ContentType, contentID string) ([]*highlight.Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content_type, content_id, selected_text, start_offset, end_offset, highlight_color, comment, created_at
		 FROM annotations
		 WHERE content_type = ? AND content_id = ?
		 ORDER BY created_at`,
		string(contentType), contentID)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var annotations []*highlight.Annotation
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotations: %w", err)
	}

	for _, a := range annotations {
		tagIDs, err := s.annotationTags(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		a.TagIDs = tagIDs
	}
	return annotations, nil
}

// GetAnnotation returns one annotation by ID, or ErrNotFound.
func (s *Store) GetAnnotation(ctx context.Context, id string) (*highlight.Annotation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content_type, content_id, selected_text, start_offset, end_offset, highlight_color, comment, created_at
		 FROM annotations WHERE id = ?`, id)

	a, err := scanAnnotation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tagIDs, err := s.annotationTags(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.TagIDs = tagIDs
	return a, nil
}

// UpdateAnnotationComment replaces the comment of an existing annotation.
func (s *Store) UpdateAnnotationComment(ctx context.Context, id, comment string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE annotations SET comment = ? WHERE id = ?`, comment, id)
	if err != nil {
		return fmt.Errorf("update annotation comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update annotation comment: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAnnotation removes an annotation and its tag links.
func (s *Store) DeleteAnnotation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM annotations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete annotation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete annotation: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("annotation deleted", zap.String("id", id))
	return nil
}

func (s *Store) annotationTags(ctx context.Context, annotationID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag_id FROM annotation_tags WHERE annotation_id = ? ORDER BY tag_id`,
		annotationID)
	if err != nil {
		return nil, fmt.Errorf("query annotation tags: %w", err)
	}
	defer rows.Close()

	var tagIDs []string
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}
	return tagIDs, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAnnotation(row scanner) (*highlight.Annotation, error) {
	var a highlight.Annotation
	var contentType, color, createdAt string

	err := row.Scan(&a.ID, &contentType, &a.ContentID, &a.SelectedText,
		&a.StartOffset, &a.EndOffset, &color, &a.Comment, &createdAt)
	if err != nil {
		return nil, err
	}

	a.ContentType = highlight.ContentType(contentType)
	a.Color = highlight.Color(color)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		a.CreatedAt = ts
	}
	return &a, nil
}
