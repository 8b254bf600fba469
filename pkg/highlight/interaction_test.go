package highlight

import (
	"testing"
	"time"
)

// testClock is a manually advanced clock for suppression-window tests.
type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func selectedProvider(text string) (*fakeProvider, *Container) {
	container := singleNodeContainer(text)
	provider := &fakeProvider{selection: rangeOver("n1", 0, len(text))}
	return provider, container
}

func TestInteraction_PointerUpOpensToolbar(t *testing.T) {
	provider, container := selectedProvider("selected passage")
	i := NewInteraction(provider)

	i.PointerUp(container)

	if i.State() != StateToolbarOpen {
		t.Fatalf("state: got %v, want toolbar open", i.State())
	}
	if i.Capture() == nil || i.Capture().Text != "selected passage" {
		t.Errorf("capture: got %+v", i.Capture())
	}
}

func TestInteraction_PointerUpWithoutCaptureStaysPut(t *testing.T) {
	provider := &fakeProvider{} // nothing selected
	i := NewInteraction(provider)

	i.PointerUp(singleNodeContainer("content"))

	if i.State() != StateIdle {
		t.Errorf("state: got %v, want idle", i.State())
	}
}

func TestInteraction_OutsideClickSuppressedAfterOpen(t *testing.T) {
	clock := newTestClock()
	provider, container := selectedProvider("selected passage")
	i := NewInteraction(provider, WithClock(clock.now))

	i.PointerUp(container)

	// The opening click's own bubble arrives within the window.
	clock.advance(50 * time.Millisecond)
	i.OutsideClick()
	if i.State() != StateToolbarOpen {
		t.Fatal("outside click within suppression window must be ignored")
	}

	// A later genuine outside click closes the toolbar.
	clock.advance(100 * time.Millisecond)
	i.OutsideClick()
	if i.State() != StateIdle {
		t.Errorf("state after outside click: got %v, want idle", i.State())
	}
	if i.Capture() != nil {
		t.Error("capture not discarded on dismiss")
	}
}

func TestInteraction_HighlightClickOpensPopover(t *testing.T) {
	clock := newTestClock()
	i := NewInteraction(&fakeProvider{}, WithClock(clock.now))

	i.HighlightClicked("ann-7", Point{X: 120, Y: 340})

	if i.State() != StatePopoverOpen {
		t.Fatalf("state: got %v, want popover open", i.State())
	}
	if i.ActiveAnnotationID() != "ann-7" {
		t.Errorf("active ID: got %q", i.ActiveAnnotationID())
	}
	if i.PopoverPosition() != (Point{X: 120, Y: 340}) {
		t.Errorf("popover position: got %+v", i.PopoverPosition())
	}

	clock.advance(150 * time.Millisecond)
	i.OutsideClick()
	if i.State() != StateIdle {
		t.Errorf("state after outside click: got %v, want idle", i.State())
	}
}

func TestInteraction_ToolbarToPopoverSwitch(t *testing.T) {
	provider, container := selectedProvider("selected passage")
	i := NewInteraction(provider)

	i.PointerUp(container)
	i.HighlightClicked("ann-1", Point{})

	if i.State() != StatePopoverOpen {
		t.Fatalf("state: got %v, want popover open", i.State())
	}
	if i.Capture() != nil {
		t.Error("stale capture retained after switching to popover")
	}
}

func TestInteraction_ConfirmCreate(t *testing.T) {
	provider, container := selectedProvider("selected passage")
	i := NewInteraction(provider)
	i.PointerUp(container)

	capture := i.ConfirmCreate()

	if capture == nil || capture.Text != "selected passage" {
		t.Fatalf("confirm capture: got %+v", capture)
	}
	if i.State() != StateIdle {
		t.Errorf("state after confirm: got %v, want idle", i.State())
	}
	if provider.cleared {
		t.Error("confirm must not clear the selection; the caller decides")
	}

	if i.ConfirmCreate() != nil {
		t.Error("confirm outside toolbar state must return nil")
	}
}

func TestInteraction_CancelCreateClearsSelection(t *testing.T) {
	provider, container := selectedProvider("selected passage")
	i := NewInteraction(provider)
	i.PointerUp(container)

	i.CancelCreate()

	if i.State() != StateIdle {
		t.Errorf("state after cancel: got %v, want idle", i.State())
	}
	if !provider.cleared {
		t.Error("cancel must clear the platform selection")
	}
}

func TestInteraction_CommentEditMode(t *testing.T) {
	i := NewInteraction(&fakeProvider{})

	i.BeginCommentEdit()
	if i.EditingComment() {
		t.Error("comment edit outside popover must be a no-op")
	}

	i.HighlightClicked("ann-2", Point{})
	i.BeginCommentEdit()
	if !i.EditingComment() {
		t.Error("comment edit not entered")
	}

	i.FinishCommentEdit()
	if i.EditingComment() {
		t.Error("comment edit not left")
	}
	if i.State() != StatePopoverOpen {
		t.Error("finishing a comment edit must keep the popover open")
	}
}

func TestInteraction_DeleteActive(t *testing.T) {
	i := NewInteraction(&fakeProvider{})

	if got := i.DeleteActive(); got != "" {
		t.Errorf("delete with no popover: got %q, want empty", got)
	}

	i.HighlightClicked("ann-3", Point{})
	if got := i.DeleteActive(); got != "ann-3" {
		t.Errorf("deleted ID: got %q, want ann-3", got)
	}
	if i.State() != StateIdle {
		t.Errorf("state after delete: got %v, want idle", i.State())
	}
}
