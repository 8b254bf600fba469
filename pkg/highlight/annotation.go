// Package highlight renders annotated document text as a lossless sequence
// of plain and highlighted runs, and captures new text selections as
// character offsets relative to a content container. Re-matching of saved
// annotations is by literal text search at render time; stored offsets are
// a best-effort snapshot and are never used to reposition highlights after
// content changes.
package highlight

import (
	"fmt"
	"strings"
	"time"
)

// ContentType identifies the kind of document unit an annotation belongs to.
type ContentType string

const (
	ContentArticle         ContentType = "article"
	ContentRecital         ContentType = "recital"
	ContentImplementingAct ContentType = "implementing_act"
)

// Valid reports whether the content type is one of the known kinds.
func (c ContentType) Valid() bool {
	switch c {
	case ContentArticle, ContentRecital, ContentImplementingAct:
		return true
	}
	return false
}

// Color is a highlight color from the fixed palette.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPink   Color = "pink"
	ColorOrange Color = "orange"
)

// Valid reports whether the color belongs to the palette.
func (c Color) Valid() bool {
	switch c {
	case ColorYellow, ColorGreen, ColorBlue, ColorPink, ColorOrange:
		return true
	}
	return false
}

// Annotation is a user-created highlight plus optional comment and tags,
// anchored to a literal text snippet within a document unit.
type Annotation struct {
	ID           string      `json:"id"`
	ContentType  ContentType `json:"content_type"`
	ContentID    string      `json:"content_id"`
	SelectedText string      `json:"selected_text"`
	StartOffset  int         `json:"start_offset"`
	EndOffset    int         `json:"end_offset"`
	Color        Color       `json:"highlight_color"`
	Comment      string      `json:"comment,omitempty"`
	TagIDs       []string    `json:"tag_ids,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// InvalidAnnotationError reports a precondition violation detected when an
// annotation is created. Render-time code never rejects annotations: a
// malformed record simply contributes no match.
type InvalidAnnotationError struct {
	Reason string
}

func (e *InvalidAnnotationError) Error() string {
	return fmt.Sprintf("invalid annotation: %s", e.Reason)
}

// Validate checks the creation-time preconditions. Empty selected text is
// rejected here so the matcher never sees it: matching an empty string
// against every position would be undefined behavior.
func (a *Annotation) Validate() error {
	if strings.TrimSpace(a.SelectedText) == "" {
		return &InvalidAnnotationError{Reason: "selected_text must not be empty"}
	}
	if !a.ContentType.Valid() {
		return &InvalidAnnotationError{Reason: fmt.Sprintf("unknown content_type %q", a.ContentType)}
	}
	if a.ContentID == "" {
		return &InvalidAnnotationError{Reason: "content_id must not be empty"}
	}
	if !a.Color.Valid() {
		return &InvalidAnnotationError{Reason: fmt.Sprintf("unknown highlight_color %q", a.Color)}
	}
	if a.EndOffset < a.StartOffset {
		return &InvalidAnnotationError{Reason: "end_offset precedes start_offset"}
	}
	return nil
}
