package btf

import "github.com/sparsekit/sparsekit/csc"

// Unmatched marks a row with no matched column in a matching returned by
// MaxTransversal.
const Unmatched = -1

// MaxTransversal computes a maximum matching of rows to columns of the
// square pattern a. It returns the number of matched rows and a slice
// match of length n where match[row] is the matched column, or Unmatched.
// A return of n means a zero-free diagonal exists under some permutation.
func MaxTransversal(a csc.Pattern) (int, []int) {
	n := a.N()
	match := make([]int, n)
	for i := range match {
		match[i] = Unmatched
	}

	ws := newMatchWorkspace(a)

	nmatch := 0
	for col := 0; col < n; col++ {
		if augment(a, col, match, ws) {
			nmatch++
		}
	}

	return nmatch, match
}

// matchWorkspace holds the per-column cursors and explicit DFS stacks for
// the augmenting-path search. Allocated once per MaxTransversal call.
type matchWorkspace struct {
	// cheap[j] points at the next untried entry of column j for greedy
	// matching; it only ever advances, which caps total cheap work at nnz.
	cheap []int
	// visited[j] == c means column j was reached during the search rooted
	// at column c, so revisiting it within the same search is a cycle.
	visited []int

	rowStack []int
	colStack []int
	posStack []int
}

func newMatchWorkspace(a csc.Pattern) *matchWorkspace {
	n := a.N()
	ws := &matchWorkspace{
		cheap:    make([]int, n),
		visited:  make([]int, n),
		rowStack: make([]int, n),
		colStack: make([]int, n),
		posStack: make([]int, n),
	}
	for j := 0; j < n; j++ {
		ws.cheap[j] = a.ColStart(j)
		ws.visited[j] = -1
	}

	return ws
}

// augment tries to match column root, first by the cheap greedy scan, then
// by an augmenting path that reassigns earlier matches. On success the whole
// path is flipped into match and true is returned.
func augment(a csc.Pattern, root int, match []int, ws *matchWorkspace) bool {
	found := false
	head := 0
	ws.colStack[0] = root

	for head >= 0 {
		col := ws.colStack[head]
		end := a.ColEnd(col)

		if ws.visited[col] != root {
			ws.visited[col] = root

			// 1. Cheap scan: first entry whose row is still free.
			p := ws.cheap[col]
			row := 0
			for p < end && !found {
				row = a.RowIndex(p)
				found = match[row] == Unmatched
				p++
			}
			ws.cheap[col] = p

			if found {
				ws.rowStack[head] = row
				break
			}
			// 2. No free row: walk the column's matched rows depth-first.
			ws.posStack[head] = a.ColStart(col)
		}

		p := ws.posStack[head]
		for p < end {
			row := a.RowIndex(p)
			next := match[row]
			if ws.visited[next] != root {
				// descend into the column currently holding this row
				ws.posStack[head] = p + 1
				ws.rowStack[head] = row
				head++
				ws.colStack[head] = next

				break
			}
			p++
			ws.posStack[head] = p
		}

		if p == end {
			head--
		}
	}

	if !found {
		return false
	}

	// Flip the augmenting path: every (col,row) pair on the stack becomes a
	// match, rematching the rows stolen from columns deeper in the path.
	for ; head >= 0; head-- {
		match[ws.rowStack[head]] = ws.colStack[head]
	}

	return true
}
