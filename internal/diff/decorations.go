package diff

import "strings"

// DecorationType marks how a block is rendered in the visual diff.
type DecorationType string

const (
	// DecorationInsert marks a block that exists only in the after version.
	DecorationInsert DecorationType = "insert"
	// DecorationDelete renders a removed block as a non-destructive inline
	// annotation anchored at its position in the after version.
	DecorationDelete DecorationType = "delete"
)

// Decoration marks one changed block. Index is the block position in the
// after version the decoration anchors to; the live document itself is
// never mutated by rendering decorations.
type Decoration struct {
	Type  DecorationType `json:"type"`
	Index int            `json:"index"`
	Block string         `json:"block"`
}

// Decorations builds the visual decoration set for an edit script. Inserted
// blocks are marked in place, deleted blocks become annotations at the
// position where they used to be.
func Decorations(ops []Op) []Decoration {
	var decorations []Decoration
	afterIdx := 0
	for _, op := range ops {
		switch op.Type {
		case OpEqual:
			afterIdx++
		case OpInsert:
			decorations = append(decorations, Decoration{Type: DecorationInsert, Index: afterIdx, Block: op.Block})
			afterIdx++
		case OpDelete:
			decorations = append(decorations, Decoration{Type: DecorationDelete, Index: afterIdx, Block: op.Block})
		}
	}
	return decorations
}

// Revealer drives the typewriter adoption of a proposed after version: each
// Step applies one more operation of the edit script, so a caller can
// animate the transition from the current content to the proposal before
// committing to it. Handles pure creation (empty before) and pure deletion
// (empty after).
type Revealer struct {
	before []string
	ops    []Op
	step   int
}

// NewRevealer prepares a reveal sequence from before to after content.
func NewRevealer(before, after string) *Revealer {
	beforeBlocks := SplitBlocks(before)
	return &Revealer{
		before: beforeBlocks,
		ops:    Blocks(beforeBlocks, SplitBlocks(after)),
	}
}

// Step advances by one operation and returns the intermediate content plus
// whether more steps remain. Once all operations are applied it keeps
// returning the final content with done=true.
func (r *Revealer) Step() (string, bool) {
	if r.step < len(r.ops) {
		r.step++
	}

	var out []string
	idx := 0
	for _, op := range r.ops[:r.step] {
		switch op.Type {
		case OpEqual:
			out = append(out, r.before[idx])
			idx++
		case OpDelete:
			idx++
		case OpInsert:
			out = append(out, op.Block)
		}
	}
	// Blocks not yet reached by the script stay as they are.
	out = append(out, r.before[idx:]...)

	return strings.Join(out, "\n\n"), r.step >= len(r.ops)
}
