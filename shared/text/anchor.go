package text

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// anchorRegex matches an escaped ">>N" or ">>N-M" reference.
var anchorRegex = regexp.MustCompile(`&gt;&gt;(\d+)(-\d+)?`)

type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentAnchor
	SegmentBreak
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentAnchor:
		return "anchor"
	case SegmentBreak:
		return "break"
	default:
		return "text"
	}
}

func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SegmentKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "anchor":
		*k = SegmentAnchor
	case "break":
		*k = SegmentBreak
	case "text":
		*k = SegmentText
	default:
		return fmt.Errorf("unknown segment kind %q", b)
	}
	return nil
}

// Segment is one piece of a rendered post body.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	// Escaped text as stored. For anchors this is the matched "&gt;&gt;N-M".
	Text string `json:"text,omitempty"`
	// Target is the first number of an anchor; the link points there.
	Target int `json:"target,omitempty"`
	// Ref is the reference as written: "N" or "N-M".
	Ref string `json:"ref,omitempty"`
	// Resolved is set by ResolveAnchors when Target exists in the thread.
	Resolved bool `json:"resolved,omitempty"`
}

// Plain returns the segment text with escaping undone, for renderers that
// escape on output.
func (s Segment) Plain() string {
	return Unescape(s.Text)
}

// Linkify splits escaped text into text and anchor segments. Matching is
// purely lexical: anchors are produced whether or not the target exists.
func Linkify(escaped string) []Segment {
	var segs []Segment
	last := 0
	for _, m := range anchorRegex.FindAllStringSubmatchIndex(escaped, -1) {
		if m[0] > last {
			segs = append(segs, Segment{Kind: SegmentText, Text: escaped[last:m[0]]})
		}
		first := escaped[m[2]:m[3]]
		ref := first
		if m[4] >= 0 {
			ref += escaped[m[4]:m[5]]
		}
		target, err := strconv.Atoi(first)
		if err != nil {
			target = 0 // overflow; still rendered, never resolved
		}
		segs = append(segs, Segment{
			Kind:   SegmentAnchor,
			Text:   escaped[m[0]:m[1]],
			Target: target,
			Ref:    ref,
		})
		last = m[1]
	}
	if last < len(escaped) {
		segs = append(segs, Segment{Kind: SegmentText, Text: escaped[last:]})
	}
	return segs
}

// FormatBody linkifies escaped text and then turns newlines into break
// segments. Newlines are handled after linkify so they never split a match.
func FormatBody(escaped string) []Segment {
	linked := Linkify(strings.ReplaceAll(escaped, "\r\n", "\n"))
	out := make([]Segment, 0, len(linked))
	for _, seg := range linked {
		if seg.Kind != SegmentText || !strings.Contains(seg.Text, "\n") {
			out = append(out, seg)
			continue
		}
		for i, line := range strings.Split(seg.Text, "\n") {
			if i > 0 {
				out = append(out, Segment{Kind: SegmentBreak})
			}
			if line != "" {
				out = append(out, Segment{Kind: SegmentText, Text: line})
			}
		}
	}
	return out
}

// ResolveAnchors marks anchors whose target is a response number in
// 1..resCount. Dangling anchors stay in place, unresolved.
func ResolveAnchors(segs []Segment, resCount int) []Segment {
	for i := range segs {
		if segs[i].Kind == SegmentAnchor {
			segs[i].Resolved = segs[i].Target >= 1 && segs[i].Target <= resCount
		}
	}
	return segs
}

// Anchors returns the referenced response numbers, first number of each
// anchor, in order of appearance.
func Anchors(segs []Segment) []int {
	var targets []int
	for _, s := range segs {
		if s.Kind == SegmentAnchor && s.Target > 0 {
			targets = append(targets, s.Target)
		}
	}
	return targets
}
