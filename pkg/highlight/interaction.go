package highlight

import (
	"time"
)

// State is the annotation interaction state.
type State int

const (
	// StateIdle: no toolbar or popover is open.
	StateIdle State = iota
	// StateToolbarOpen: a selection was captured and the creation toolbar
	// is showing, awaiting a highlight/comment/tag action or cancel.
	StateToolbarOpen
	// StatePopoverOpen: an existing highlight was clicked and its detail
	// popover is showing.
	StatePopoverOpen
)

// OpenSuppressionWindow is how long after opening the toolbar or popover an
// outside click is ignored. The click that opens either surface would
// otherwise also be seen by the document-level outside-click handler and
// immediately close what it just opened.
const OpenSuppressionWindow = 100 * time.Millisecond

// Point is a pointer position in client coordinates, used to place the
// popover at the click location.
type Point struct {
	X, Y float64
}

// Interaction drives the toolbar/popover state machine. It is event-driven
// and single-threaded: callers feed it pointer events from the UI loop.
// The clock is injectable so the suppression window is testable.
type Interaction struct {
	provider SelectionProvider
	now      func() time.Time

	state          State
	openedAt       time.Time
	capture        *SelectionCapture
	activeID       string
	popoverAt      Point
	editingComment bool
}

// InteractionOption configures an Interaction.
type InteractionOption func(*Interaction)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) InteractionOption {
	return func(i *Interaction) { i.now = now }
}

// NewInteraction creates an idle interaction controller.
func NewInteraction(provider SelectionProvider, opts ...InteractionOption) *Interaction {
	i := &Interaction{
		provider: provider,
		now:      time.Now,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// State returns the current state.
func (i *Interaction) State() State { return i.state }

// Capture returns the selection captured when the toolbar opened, or nil.
func (i *Interaction) Capture() *SelectionCapture { return i.capture }

// ActiveAnnotationID returns the annotation whose popover is open, or "".
func (i *Interaction) ActiveAnnotationID() string { return i.activeID }

// EditingComment reports whether the popover is in comment-edit mode.
func (i *Interaction) EditingComment() bool { return i.editingComment }

// PointerUp handles pointer release inside the content container. A
// successful capture opens the toolbar; otherwise the state is unchanged.
func (i *Interaction) PointerUp(container *Container) {
	capture := CaptureSelection(i.provider, container)
	if capture == nil {
		return
	}
	i.capture = capture
	i.activeID = ""
	i.editingComment = false
	i.state = StateToolbarOpen
	i.openedAt = i.now()
}

// HighlightClicked handles a click on an existing highlight run and opens
// its popover at the pointer position. The caller must stop the click's
// propagation to the document-level outside-click handler; the suppression
// window here guards against handlers that fire anyway.
func (i *Interaction) HighlightClicked(annotationID string, at Point) {
	i.activeID = annotationID
	i.popoverAt = at
	i.capture = nil
	i.editingComment = false
	i.state = StatePopoverOpen
	i.openedAt = i.now()
}

// PopoverPosition returns where the popover should be placed.
func (i *Interaction) PopoverPosition() Point { return i.popoverAt }

// OutsideClick handles a click outside both the toolbar and popover. Clicks
// within the suppression window of opening are ignored so the opening click
// cannot immediately close the surface it opened.
func (i *Interaction) OutsideClick() {
	if i.state == StateIdle {
		return
	}
	if i.now().Sub(i.openedAt) < OpenSuppressionWindow {
		return
	}
	i.reset()
}

// ConfirmCreate finalizes annotation creation from the toolbar, returning
// the capture the annotation should be built from.
func (i *Interaction) ConfirmCreate() *SelectionCapture {
	if i.state != StateToolbarOpen {
		return nil
	}
	capture := i.capture
	i.reset()
	return capture
}

// CancelCreate dismisses the toolbar and clears the platform selection.
func (i *Interaction) CancelCreate() {
	if i.state != StateToolbarOpen {
		return
	}
	i.reset()
	i.provider.Clear()
}

// BeginCommentEdit switches the popover into comment-edit mode.
func (i *Interaction) BeginCommentEdit() {
	if i.state != StatePopoverOpen {
		return
	}
	i.editingComment = true
}

// FinishCommentEdit leaves comment-edit mode; the popover stays open.
func (i *Interaction) FinishCommentEdit() {
	i.editingComment = false
}

// DeleteActive closes the popover after the active annotation was deleted,
// returning the annotation ID that should be removed.
func (i *Interaction) DeleteActive() string {
	if i.state != StatePopoverOpen {
		return ""
	}
	id := i.activeID
	i.reset()
	return id
}

func (i *Interaction) reset() {
	i.state = StateIdle
	i.capture = nil
	i.activeID = ""
	i.editingComment = false
}
