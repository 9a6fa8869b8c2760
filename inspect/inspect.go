// Package inspect provides pure, read-only utilities for examining an
// hl7.Message: a summary of its header and segment counts, an indented
// tree rendering for debugging output, case-insensitive text search
// returning matched locations, and a segment-level diff between two
// messages. Nothing in this package mutates the messages it inspects.
package inspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/healthbridge/hl7v2/hl7"
)

// Summary reports message-level header values and per-segment-type
// occurrence counts.
type Summary struct {
	MessageType   string
	ControlID     string
	Version       string
	SegmentCount  int
	SegmentCounts map[string]int
}

// Summarize builds a Summary for msg.
func Summarize(msg hl7.Message) Summary {
	segs := msg.AllSegments()
	counts := make(map[string]int)
	for _, seg := range segs {
		counts[seg.Name()]++
	}
	return Summary{
		MessageType:   msg.Type(),
		ControlID:     msg.ControlID(),
		Version:       msg.Version(),
		SegmentCount:  len(segs),
		SegmentCounts: counts,
	}
}

// RenderOption configures Render.
type RenderOption func(*renderConfig)

type renderConfig struct {
	maxFieldLength int
}

// WithMaxFieldLength truncates rendered field values longer than n
// characters, appending "...". 0 (the default) disables truncation.
func WithMaxFieldLength(n int) RenderOption {
	return func(c *renderConfig) { c.maxFieldLength = n }
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Render produces an indented, human-readable tree of msg: one line
// per segment occurrence, one indented line per field, and a further
// indented line per component when a field has more than one.
func Render(msg hl7.Message, opts ...RenderOption) string {
	cfg := &renderConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	indices := make(map[string]int)
	for _, seg := range msg.AllSegments() {
		idx := indices[seg.Name()]
		indices[seg.Name()]++
		fmt.Fprintf(&b, "%s[%d]\n", seg.Name(), idx)

		for _, f := range seg.AllFields() {
			fmt.Fprintf(&b, "  .%d: %s\n", f.SeqNum(), truncate(f.Value(), cfg.maxFieldLength))
			comps := f.Components()
			if len(comps) <= 1 {
				continue
			}
			for ci, c := range comps {
				fmt.Fprintf(&b, "    .%d.%d: %s\n", f.SeqNum(), ci+1, truncate(c.Value(), cfg.maxFieldLength))
			}
		}
	}
	return b.String()
}

// Match is one text-search hit: the location it occurred at and the
// full (untruncated) field value it was found in.
type Match struct {
	Location string
	Value    string
}

// SearchOption configures Search.
type SearchOption func(*searchConfig)

type searchConfig struct {
	caseSensitive bool
}

// WithCaseSensitive makes Search case-sensitive. Search is
// case-insensitive by default.
func WithCaseSensitive(sensitive bool) SearchOption {
	return func(c *searchConfig) { c.caseSensitive = sensitive }
}

// Search scans every field value in msg for text, returning one Match
// per field whose value contains it, in segment order.
func Search(msg hl7.Message, text string, opts ...SearchOption) []Match {
	cfg := &searchConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	needle := text
	if !cfg.caseSensitive {
		needle = strings.ToLower(needle)
	}

	var matches []Match
	indices := make(map[string]int)
	for _, seg := range msg.AllSegments() {
		idx := indices[seg.Name()]
		indices[seg.Name()]++

		for _, f := range seg.AllFields() {
			val := f.Value()
			hay := val
			if !cfg.caseSensitive {
				hay = strings.ToLower(hay)
			}
			if strings.Contains(hay, needle) {
				matches = append(matches, Match{
					Location: fmt.Sprintf("%s[%d].%d", seg.Name(), idx, f.SeqNum()),
					Value:    val,
				})
			}
		}
	}
	return matches
}

// DiffKind classifies a DiffEntry.
type DiffKind string

const (
	Added        DiffKind = "added"
	Removed      DiffKind = "removed"
	FieldChanged DiffKind = "field_changed"
)

// DiffEntry describes one difference found between two messages.
type DiffEntry struct {
	Kind     DiffKind
	Location string
	Old      string
	New      string
}

type segmentKey struct {
	name string
	idx  int
}

func indexSegments(segs []hl7.Segment) map[segmentKey]hl7.Segment {
	byKey := make(map[segmentKey]hl7.Segment, len(segs))
	counts := make(map[string]int)
	for _, seg := range segs {
		idx := counts[seg.Name()]
		counts[seg.Name()]++
		byKey[segmentKey{name: seg.Name(), idx: idx}] = seg
	}
	return byKey
}

func (k segmentKey) String() string {
	return fmt.Sprintf("%s[%d]", k.name, k.idx)
}

// Diff compares two messages segment-by-segment (matched by segment
// name and occurrence index) and field-by-field within matched
// segments, producing added, removed, and field_changed entries.
// Entries are returned in a stable, location-sorted order.
func Diff(a, b hl7.Message) []DiffEntry {
	aSegs := indexSegments(a.AllSegments())
	bSegs := indexSegments(b.AllSegments())

	var entries []DiffEntry

	for key, aSeg := range aSegs {
		bSeg, ok := bSegs[key]
		if !ok {
			entries = append(entries, DiffEntry{Kind: Removed, Location: key.String()})
			continue
		}
		entries = append(entries, diffFields(key, aSeg, bSeg)...)
	}
	for key := range bSegs {
		if _, ok := aSegs[key]; !ok {
			entries = append(entries, DiffEntry{Kind: Added, Location: key.String()})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Location != entries[j].Location {
			return entries[i].Location < entries[j].Location
		}
		return entries[i].Kind < entries[j].Kind
	})
	return entries
}

func diffFields(key segmentKey, a, b hl7.Segment) []DiffEntry {
	max := a.FieldCount()
	if b.FieldCount() > max {
		max = b.FieldCount()
	}

	var entries []DiffEntry
	for seq := 1; seq <= max; seq++ {
		var oldVal, newVal string
		if f, ok := a.Field(seq); ok {
			oldVal = f.Value()
		}
		if f, ok := b.Field(seq); ok {
			newVal = f.Value()
		}
		if oldVal != newVal {
			entries = append(entries, DiffEntry{
				Kind:     FieldChanged,
				Location: fmt.Sprintf("%s.%d", key.String(), seq),
				Old:      oldVal,
				New:      newVal,
			})
		}
	}
	return entries
}
