// Package diff computes minimal edit scripts between block-structured text
// versions. The engine has two consumers: the reconciler builds change
// summaries from it, and clients use decorations and the revealer to
// visualize and animate a proposed change before committing to it.
package diff

// OpType tags one operation of an edit script.
type OpType string

const (
	OpEqual  OpType = "equal"
	OpInsert OpType = "insert"
	OpDelete OpType = "delete"
)

// Op is one line-granular operation of an edit script. Replaying all ops in
// order against the "before" sequence reproduces the "after" sequence.
type Op struct {
	Type  OpType `json:"type"`
	Block string `json:"block"`
}

// Blocks computes a shortest edit script between two block sequences using
// the greedy O(ND) algorithm: for increasing edit distance d, track the
// furthest x reached on every diagonal k = x - y, extend diagonal snakes of
// equal blocks, and backtrack through the recorded per-d frontiers once both
// sequences are consumed. Ties prefer the diagonal with the larger x reach,
// so identical inputs always produce identical scripts.
func Blocks(before, after []string) []Op {
	n := len(before)
	m := len(after)
	if n == 0 && m == 0 {
		return nil
	}

	max := n + m
	// v[k+max] holds the furthest x on diagonal k for the current d.
	v := make([]int, 2*max+2)
	trace := make([][]int, 0, max+1)

	var found bool
	for d := 0; d <= max && !found; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[k-1+max] < v[k+1+max]) {
				x = v[k+1+max] // move down: insertion from after
			} else {
				x = v[k-1+max] + 1 // move right: deletion from before
			}
			y := x - k
			for x < n && y < m && before[x] == after[y] {
				x++
				y++
			}
			v[k+max] = x
			if x >= n && y >= m {
				found = true
				break
			}
		}
	}

	return backtrack(before, after, trace, max)
}

// backtrack walks the recorded frontiers from the end state to the origin,
// emitting operations in reverse, then flips them into forward order.
func backtrack(before, after []string, trace [][]int, max int) []Op {
	var reversed []Op
	x := len(before)
	y := len(after)

	for d := len(trace) - 1; d > 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[k-1+max] < v[k+1+max]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[prevK+max]
		prevY := prevX - prevK

		// Unwind the snake first.
		for x > prevX && y > prevY {
			reversed = append(reversed, Op{Type: OpEqual, Block: before[x-1]})
			x--
			y--
		}

		if x == prevX {
			reversed = append(reversed, Op{Type: OpInsert, Block: after[y-1]})
			y--
		} else {
			reversed = append(reversed, Op{Type: OpDelete, Block: before[x-1]})
			x--
		}
	}

	// d == 0: whatever remains is a leading snake of equal blocks.
	for x > 0 && y > 0 {
		reversed = append(reversed, Op{Type: OpEqual, Block: before[x-1]})
		x--
		y--
	}

	ops := make([]Op, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		ops = append(ops, reversed[i])
	}
	return ops
}

// Apply replays an edit script against a before sequence and returns the
// after sequence. It is the inverse check of Blocks.
func Apply(before []string, ops []Op) []string {
	var out []string
	idx := 0
	for _, op := range ops {
		switch op.Type {
		case OpEqual:
			out = append(out, before[idx])
			idx++
		case OpDelete:
			idx++
		case OpInsert:
			out = append(out, op.Block)
		}
	}
	return out
}
