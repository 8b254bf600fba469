package highlight

import (
	"strings"
	"unicode/utf8"
)

// Selection length bounds, in characters of trimmed selected text.
const (
	MinSelectionLen = 4
	MaxSelectionLen = 500
)

// Rect is a bounding rectangle. CaptureSelection returns it in document
// coordinates (viewport rectangle plus the current scroll offset).
type Rect struct {
	X, Y, Width, Height float64
}

// Range is a platform text selection resolved against a content container.
// Node IDs refer to the container's text nodes; offsets are byte offsets
// within the node's text.
type Range struct {
	StartNodeID string
	StartOffset int
	EndNodeID   string
	EndOffset   int
	Collapsed   bool

	// ViewportRect is the selection's bounding rectangle in viewport
	// coordinates, as reported by the platform.
	ViewportRect Rect
}

// SelectionProvider abstracts the platform selection APIs so offset capture
// can be unit-tested without a rendering environment. GetCurrentSelection
// returns nil when nothing is selected. Clear drops the platform selection;
// CaptureSelection never calls it, clearing is a separate explicit action.
type SelectionProvider interface {
	GetCurrentSelection() *Range
	ScrollOffset() (x, y float64)
	Clear()
}

// TextNode is one text child of a content container.
type TextNode struct {
	ID   string
	Text string
}

// Container is the content block selections are captured against. Its
// rendered text is the concatenation of its text nodes in order.
type Container struct {
	Nodes []*TextNode
}

// Text returns the container's full concatenated text.
func (c *Container) Text() string {
	var b strings.Builder
	for _, n := range c.Nodes {
		b.WriteString(n.Text)
	}
	return b.String()
}

// nodeStart returns the byte offset of the node's text within the
// container's concatenated text, or -1 if the node is not in the container.
func (c *Container) nodeStart(nodeID string) int {
	offset := 0
	for _, n := range c.Nodes {
		if n.ID == nodeID {
			return offset
		}
		offset += len(n.Text)
	}
	return -1
}

// SelectionCapture is the result of capturing a finalized text selection.
// Offsets are byte offsets into the container's current concatenated text.
// They are a best-effort snapshot: content edits invalidate them, and
// consumers persisting them must not rely on them for later re-matching.
type SelectionCapture struct {
	Text        string
	StartOffset int
	EndOffset   int
	Rect        Rect
}

// CaptureSelection resolves the provider's current selection against the
// container and returns the trimmed selected text with its offsets, or nil
// when no capture is possible: no selection, a collapsed selection, a
// selection outside the container, or a trimmed length outside [4, 500].
// Failure is always a silent decline, never an error surfaced to the user.
// The platform selection is left untouched.
func CaptureSelection(provider SelectionProvider, container *Container) *SelectionCapture {
	r := provider.GetCurrentSelection()
	if r == nil || r.Collapsed {
		return nil
	}

	startBase := container.nodeStart(r.StartNodeID)
	endBase := container.nodeStart(r.EndNodeID)
	if startBase < 0 || endBase < 0 {
		return nil // selection lies outside the container
	}

	full := container.Text()
	start := startBase + r.StartOffset
	end := endBase + r.EndOffset
	if start < 0 || end > len(full) || end <= start {
		return nil
	}

	raw := full[start:end]
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	length := utf8.RuneCountInString(trimmed)
	if length < MinSelectionLen || length > MaxSelectionLen {
		return nil
	}

	// Advance the start offset past any leading whitespace that trimming
	// removed, so full[StartOffset:EndOffset] equals the trimmed text.
	start += strings.Index(raw, trimmed)

	scrollX, scrollY := provider.ScrollOffset()
	rect := r.ViewportRect
	rect.X += scrollX
	rect.Y += scrollY

	return &SelectionCapture{
		Text:        trimmed,
		StartOffset: start,
		EndOffset:   start + len(trimmed),
		Rect:        rect,
	}
}
