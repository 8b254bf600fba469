package highlight

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Run is one segment of rendered text. Highlighted runs carry the owning
// annotation's identity, color and comment; plain runs carry only text.
// Concatenating Run.Text over a render result reproduces the input exactly.
type Run struct {
	Text        string
	Start       int
	Highlighted bool

	AnnotationID string
	Color        Color
	Comment      string
}

// Node is one child of a rendered content block. The highlighter rewrites
// only TextRun variants; opaque children pass through untouched, which
// preserves paragraph, list and emphasis boundaries.
type Node interface {
	node()
}

// TextRun is a literal string child eligible for highlighting.
type TextRun string

func (TextRun) node() {}

// Opaque is a non-text child the highlighter must not inspect or alter.
type Opaque struct {
	Value any
}

func (Opaque) node() {}

// Highlighted is a TextRun replaced by its highlight run sequence.
type Highlighted []Run

func (Highlighted) node() {}

// candidate is one occurrence of an annotation's snippet within the text.
type candidate struct {
	start, end int
	order      int // annotation position, breaks ties deterministically
	ann        *Annotation
}

// foldedText is a lowercased copy of a text together with a map from folded
// byte offsets back to original ones. Lowercasing can change a rune's byte
// length (ẞ shrinks to ß, İ to i), so indices found in the folded text must
// not be used to slice the original directly.
type foldedText struct {
	folded string
	orig   []int // orig[i] is the original offset of folded byte i
}

func foldText(text string) *foldedText {
	var b strings.Builder
	b.Grow(len(text))
	orig := make([]int, 0, len(text)+1)

	for i, r := range text {
		lower := unicode.ToLower(r)
		for j := 0; j < utf8.RuneLen(lower); j++ {
			orig = append(orig, i)
		}
		b.WriteRune(lower)
	}
	orig = append(orig, len(text))

	return &foldedText{folded: b.String(), orig: orig}
}

// RenderHighlighted splits text into plain and highlighted runs for the
// given annotations. Matching is case-insensitive with original casing
// preserved in the output. Overlaps are resolved by a single left-to-right
// sweep over all candidate matches sorted by start: the first-starting
// match wins, and any later-starting match that overlaps a kept one is
// dropped entirely, even when it belongs to a different annotation.
//
// The result is deterministic for a fixed text and annotation order, runs
// never overlap, and concatenating run texts reproduces the input.
func RenderHighlighted(text string, annotations []*Annotation) []Run {
	if len(annotations) == 0 || text == "" {
		return []Run{{Text: text}}
	}

	ft := foldText(text)

	var candidates []candidate
	for order, ann := range annotations {
		needle := strings.ToLower(ann.SelectedText)
		if needle == "" || len(needle) > len(ft.folded) {
			continue
		}

		// Every occurrence that does not overlap a previous occurrence of
		// the same annotation competes independently in the sweep.
		from := 0
		for {
			idx := strings.Index(ft.folded[from:], needle)
			if idx < 0 {
				break
			}
			foldStart := from + idx
			foldEnd := foldStart + len(needle)
			candidates = append(candidates, candidate{
				start: ft.orig[foldStart],
				end:   ft.orig[foldEnd],
				order: order,
				ann:   ann,
			})
			from = foldEnd
		}
	}

	if len(candidates) == 0 {
		return []Run{{Text: text}}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		return candidates[i].order < candidates[j].order
	})

	runs := make([]Run, 0, len(candidates)*2+1)
	pos := 0
	for _, c := range candidates {
		if c.start < pos {
			continue // overlaps a kept match
		}
		if c.start > pos {
			runs = append(runs, Run{Text: text[pos:c.start], Start: pos})
		}
		runs = append(runs, Run{
			Text:         text[c.start:c.end],
			Start:        c.start,
			Highlighted:  true,
			AnnotationID: c.ann.ID,
			Color:        c.ann.Color,
			Comment:      c.ann.Comment,
		})
		pos = c.end
	}
	if pos < len(text) {
		runs = append(runs, Run{Text: text[pos:], Start: pos})
	}

	return runs
}

// RenderNodes applies RenderHighlighted to every TextRun child, leaving
// opaque children untouched and in place.
func RenderNodes(nodes []Node, annotations []*Annotation) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		if tr, ok := n.(TextRun); ok {
			out[i] = Highlighted(RenderHighlighted(string(tr), annotations))
			continue
		}
		out[i] = n
	}
	return out
}
