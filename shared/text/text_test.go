package text

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"all special characters", `<script>&"'`, "&lt;script&gt;&amp;&quot;&#039;"},
		{"empty", "", ""},
		{"plain text untouched", "こんにちは world", "こんにちは world"},
		{"existing entity is escaped again", "&amp;", "&amp;amp;"},
		{"anchor", ">>12", "&gt;&gt;12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Escape(tt.input))
		})
	}
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	in := `a<b>"c"&'d'`
	assert.Equal(t, in, Unescape(Escape(in)))
}

func TestLinkify(t *testing.T) {
	segs := Linkify(Escape(">>5 hello >>10-12"))

	require.Len(t, segs, 3)
	assert.Equal(t, Segment{Kind: SegmentAnchor, Text: "&gt;&gt;5", Target: 5, Ref: "5"}, segs[0])
	assert.Equal(t, Segment{Kind: SegmentText, Text: " hello "}, segs[1])
	assert.Equal(t, Segment{Kind: SegmentAnchor, Text: "&gt;&gt;10-12", Target: 10, Ref: "10-12"}, segs[2])
}

func TestLinkifyPassThrough(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no anchors", "just text"},
		{"single angle", "&gt;5 is greentext"},
		{"no digits", "&gt;&gt;abc"},
		{"raw unescaped text is not matched", ">>5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Linkify(tt.input)
			require.Len(t, segs, 1)
			assert.Equal(t, SegmentText, segs[0].Kind)
			assert.Equal(t, tt.input, segs[0].Text)
		})
	}

	assert.Empty(t, Linkify(""))
}

func TestLinkifyEdgeCases(t *testing.T) {
	t.Run("dangling hyphen is not part of the range", func(t *testing.T) {
		segs := Linkify("&gt;&gt;3-x")
		require.Len(t, segs, 2)
		assert.Equal(t, "3", segs[0].Ref)
		assert.Equal(t, "-x", segs[1].Text)
	})

	t.Run("adjacent anchors", func(t *testing.T) {
		segs := Linkify("&gt;&gt;1&gt;&gt;2")
		require.Len(t, segs, 2)
		assert.Equal(t, []int{1, 2}, Anchors(segs))
	})

	t.Run("overflowing number keeps the text", func(t *testing.T) {
		segs := Linkify("&gt;&gt;99999999999999999999999")
		require.Len(t, segs, 1)
		assert.Equal(t, SegmentAnchor, segs[0].Kind)
		assert.Equal(t, 0, segs[0].Target)
		assert.Equal(t, "99999999999999999999999", segs[0].Ref)
	})
}

func TestFormatBody(t *testing.T) {
	segs := FormatBody(Escape(">>1\nthanks\r\n\n<b>"))

	kinds := make([]SegmentKind, len(segs))
	for i, s := range segs {
		kinds[i] = s.Kind
	}
	assert.Equal(t, []SegmentKind{SegmentAnchor, SegmentBreak, SegmentText, SegmentBreak, SegmentBreak, SegmentText}, kinds)
	assert.Equal(t, "thanks", segs[2].Text)
	assert.Equal(t, "&lt;b&gt;", segs[5].Text)
	assert.Equal(t, "<b>", segs[5].Plain())
}

func TestResolveAnchors(t *testing.T) {
	segs := ResolveAnchors(Linkify("&gt;&gt;1 &gt;&gt;7 &gt;&gt;0"), 5)

	assert.True(t, segs[0].Resolved)
	assert.False(t, segs[2].Resolved, "target beyond the thread stays dangling")
	assert.False(t, segs[4].Resolved, "zero is never a response number")
	assert.Equal(t, []int{1, 7}, Anchors(segs))
}

func TestSegmentJSON(t *testing.T) {
	segs := ResolveAnchors(FormatBody(Escape(">>1\nhi")), 1)
	b, err := json.Marshal(segs)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"kind":"anchor"`)

	var back []Segment
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, segs, back)

	var k SegmentKind
	assert.Error(t, k.UnmarshalText([]byte("bogus")))
}
