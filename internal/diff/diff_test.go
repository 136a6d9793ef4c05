package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlocks(t *testing.T) {
	cases := []struct {
		name   string
		before []string
		after  []string
	}{
		{
			name:   "SimpleReplacement",
			before: []string{"intro", "old body", "outro"},
			after:  []string{"intro", "new body", "outro"},
		},
		{
			name:   "PureCreation",
			before: nil,
			after:  []string{"a", "b", "c"},
		},
		{
			name:   "PureDeletion",
			before: []string{"a", "b", "c"},
			after:  nil,
		},
		{
			name:   "InsertInMiddle",
			before: []string{"a", "c"},
			after:  []string{"a", "b", "c"},
		},
		{
			name:   "MovedBlock",
			before: []string{"a", "b", "c", "d"},
			after:  []string{"b", "c", "d", "a"},
		},
		{
			name:   "CompletelyDifferent",
			before: []string{"x", "y"},
			after:  []string{"p", "q", "r"},
		},
		{
			name:   "RepeatedBlocks",
			before: []string{"a", "a", "b", "a"},
			after:  []string{"a", "b", "a", "a"},
		},
		{
			name:   "BothEmpty",
			before: nil,
			after:  nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ops := Blocks(tc.before, tc.after)

			// Replaying the script against before must reproduce after.
			assert.Equal(t, tc.after, Apply(tc.before, ops))
		})
	}
}

func TestBlocksEqualInputs(t *testing.T) {
	blocks := []string{"one", "two", "three"}
	ops := Blocks(blocks, blocks)

	require.Len(t, ops, 3)
	for _, op := range ops {
		assert.Equal(t, OpEqual, op.Type)
	}
}

func TestBlocksDeterministic(t *testing.T) {
	before := []string{"a", "b", "c", "b"}
	after := []string{"b", "c", "a", "b"}

	first := Blocks(before, after)
	second := Blocks(before, after)
	assert.Equal(t, first, second)
}

func TestBlocksMinimality(t *testing.T) {
	// One replaced block should cost exactly one delete plus one insert.
	ops := Blocks([]string{"a", "b", "c"}, []string{"a", "x", "c"})

	var inserts, deletes int
	for _, op := range ops {
		switch op.Type {
		case OpInsert:
			inserts++
		case OpDelete:
			deletes++
		}
	}
	assert.Equal(t, 1, inserts)
	assert.Equal(t, 1, deletes)
}

func TestDecorations(t *testing.T) {
	t.Run("InsertAndDelete", func(t *testing.T) {
		ops := Blocks([]string{"a", "b", "c"}, []string{"a", "x", "c"})
		decorations := Decorations(ops)

		require.Len(t, decorations, 2)
		for _, d := range decorations {
			switch d.Type {
			case DecorationInsert:
				assert.Equal(t, "x", d.Block)
				assert.Equal(t, 1, d.Index)
			case DecorationDelete:
				assert.Equal(t, "b", d.Block)
			}
		}
	})

	t.Run("NoChanges", func(t *testing.T) {
		ops := Blocks([]string{"a"}, []string{"a"})
		assert.Empty(t, Decorations(ops))
	})
}

func TestRevealer(t *testing.T) {
	t.Run("RevealsOneBlockPerStep", func(t *testing.T) {
		r := NewRevealer("", "first\n\nsecond\n\nthird")

		content, done := r.Step()
		assert.Equal(t, "first", content)
		assert.False(t, done)

		content, done = r.Step()
		assert.Equal(t, "first\n\nsecond", content)
		assert.False(t, done)

		content, done = r.Step()
		assert.Equal(t, "first\n\nsecond\n\nthird", content)
		assert.True(t, done)

		// Further steps keep returning the final content.
		content, done = r.Step()
		assert.Equal(t, "first\n\nsecond\n\nthird", content)
		assert.True(t, done)
	})

	t.Run("PureDeletion", func(t *testing.T) {
		r := NewRevealer("only\n\nparagraphs", "")

		var content string
		done := false
		for !done {
			content, done = r.Step()
		}
		assert.Equal(t, "", content)
	})

	t.Run("ReplacementKeepsUntouchedTail", func(t *testing.T) {
		r := NewRevealer("a\n\nb\n\nc", "x\n\nb\n\nc")

		content, done := r.Step()
		assert.False(t, done)
		// The first step has not yet removed "a".
		assert.Contains(t, content, "b")
		assert.Contains(t, content, "c")

		for !done {
			content, done = r.Step()
		}
		assert.Equal(t, "x\n\nb\n\nc", content)
	})
}

func TestSplitBlocks(t *testing.T) {
	t.Run("ParagraphsAndHeadings", func(t *testing.T) {
		blocks := SplitBlocks("# Title\n\nfirst paragraph\n\nsecond paragraph")
		require.Len(t, blocks, 3)
		assert.Equal(t, "first paragraph", blocks[1])
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Nil(t, SplitBlocks(""))
		assert.Nil(t, SplitBlocks("  \n \n"))
	})

	t.Run("MultilineParagraphStaysOneBlock", func(t *testing.T) {
		blocks := SplitBlocks("line one\nline two\n\nnext")
		require.Len(t, blocks, 2)
		assert.Equal(t, "line one\nline two", blocks[0])
	})
}

func TestLineSummary(t *testing.T) {
	lines := LineSummary("a\nb\nc\n", "a\nx\nc\n")

	var added, removed int
	for _, line := range lines {
		switch line.Type {
		case LineAdded:
			added++
			assert.Equal(t, "x", line.Text)
		case LineRemoved:
			removed++
			assert.Equal(t, "b", line.Text)
		}
	}
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
}
