package highlight

import (
	"strings"
	"testing"
)

// fakeProvider implements SelectionProvider for tests.
type fakeProvider struct {
	selection *Range
	scrollX   float64
	scrollY   float64
	cleared   bool
}

func (f *fakeProvider) GetCurrentSelection() *Range  { return f.selection }
func (f *fakeProvider) ScrollOffset() (x, y float64) { return f.scrollX, f.scrollY }
func (f *fakeProvider) Clear()                       { f.cleared = true }

func singleNodeContainer(text string) *Container {
	return &Container{Nodes: []*TextNode{{ID: "n1", Text: text}}}
}

func rangeOver(nodeID string, start, end int) *Range {
	return &Range{
		StartNodeID: nodeID,
		StartOffset: start,
		EndNodeID:   nodeID,
		EndOffset:   end,
	}
}

func TestCaptureSelection_OffsetRoundTrip(t *testing.T) {
	container := singleNodeContainer("The quick brown fox jumps")
	provider := &fakeProvider{selection: rangeOver("n1", 4, 15)}

	got := CaptureSelection(provider, container)
	if got == nil {
		t.Fatal("capture declined")
	}

	if got.Text != "quick brown" {
		t.Errorf("text: got %q", got.Text)
	}
	full := container.Text()
	if full[got.StartOffset:got.EndOffset] != got.Text {
		t.Errorf("offsets do not round-trip: full[%d:%d] = %q, want %q",
			got.StartOffset, got.EndOffset, full[got.StartOffset:got.EndOffset], got.Text)
	}
}

func TestCaptureSelection_TrimAdjustsOffsets(t *testing.T) {
	container := singleNodeContainer("ab   padded text   cd")
	provider := &fakeProvider{selection: rangeOver("n1", 2, 19)}

	got := CaptureSelection(provider, container)
	if got == nil {
		t.Fatal("capture declined")
	}

	if got.Text != "padded text" {
		t.Errorf("text: got %q, want trimmed", got.Text)
	}
	full := container.Text()
	if full[got.StartOffset:got.EndOffset] != "padded text" {
		t.Errorf("offsets not advanced past trimmed whitespace: full[%d:%d] = %q",
			got.StartOffset, got.EndOffset, full[got.StartOffset:got.EndOffset])
	}
}

func TestCaptureSelection_LengthBounds(t *testing.T) {
	tests := []struct {
		name   string
		length int
		wantOK bool
	}{
		{"below minimum", 3, false},
		{"at minimum", 4, true},
		{"at maximum", 500, true},
		{"above maximum", 501, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("x", tt.length)
			container := singleNodeContainer(text + " trailer")
			provider := &fakeProvider{selection: rangeOver("n1", 0, tt.length)}

			got := CaptureSelection(provider, container)
			if (got != nil) != tt.wantOK {
				t.Errorf("length %d: capture = %v, want ok=%v", tt.length, got, tt.wantOK)
			}
		})
	}
}

func TestCaptureSelection_LengthCountsRunesNotBytes(t *testing.T) {
	// Four runes, twelve bytes: must clear the minimum.
	container := singleNodeContainer("ééééé")
	provider := &fakeProvider{selection: rangeOver("n1", 0, 8)}

	if got := CaptureSelection(provider, container); got == nil {
		t.Error("four-rune selection declined; length must count characters")
	}
}

func TestCaptureSelection_Declines(t *testing.T) {
	container := singleNodeContainer("some selectable content")

	tests := []struct {
		name      string
		selection *Range
	}{
		{"no selection", nil},
		{"collapsed", &Range{StartNodeID: "n1", StartOffset: 3, EndNodeID: "n1", EndOffset: 3, Collapsed: true}},
		{"outside container", rangeOver("other-node", 0, 10)},
		{"whitespace only", rangeOver("n1", 4, 5)},
		{"end before start", rangeOver("n1", 10, 5)},
		{"end past text", rangeOver("n1", 0, 9999)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{selection: tt.selection}

			if got := CaptureSelection(provider, container); got != nil {
				t.Errorf("expected silent decline, got %+v", got)
			}
			if provider.cleared {
				t.Error("capture must not clear the platform selection")
			}
		})
	}
}

func TestCaptureSelection_SpansNodes(t *testing.T) {
	container := &Container{Nodes: []*TextNode{
		{ID: "n1", Text: "first part "},
		{ID: "n2", Text: "second part"},
	}}
	provider := &fakeProvider{selection: &Range{
		StartNodeID: "n1",
		StartOffset: 6,
		EndNodeID:   "n2",
		EndOffset:   6,
	}}

	got := CaptureSelection(provider, container)
	if got == nil {
		t.Fatal("capture declined")
	}
	if got.Text != "part second" {
		t.Errorf("cross-node text: got %q", got.Text)
	}
}

func TestCaptureSelection_RectInDocumentCoordinates(t *testing.T) {
	container := singleNodeContainer("scrolled content here")
	provider := &fakeProvider{
		selection: rangeOver("n1", 0, 8),
		scrollX:   10,
		scrollY:   250,
	}
	provider.selection.ViewportRect = Rect{X: 40, Y: 60, Width: 120, Height: 18}

	got := CaptureSelection(provider, container)
	if got == nil {
		t.Fatal("capture declined")
	}

	want := Rect{X: 50, Y: 310, Width: 120, Height: 18}
	if got.Rect != want {
		t.Errorf("rect: got %+v, want %+v", got.Rect, want)
	}
}
