package btf

import "github.com/sparsekit/sparsekit/csc"

// visited states; values >= 0 are final block assignments.
const (
	sccUnvisited  = -1
	sccUnassigned = -2
)

// sccWorkspace carries Tarjan state across the per-root DFS calls.
type sccWorkspace struct {
	// disc[j] is the DFS discovery index of node j, 1-based; 0 means unset.
	disc []int
	// low[j] is the smallest discovery index reachable from j's subtree.
	low []int
	// visited[j]: sccUnvisited, sccUnassigned (on the component stack), or
	// the final block index.
	visited []int

	compStack []int
	colStack  []int
	posStack  []int

	time    int
	nblocks int
}

// scc runs Tarjan's algorithm over the matched graph of the square pattern
// a: node j's out-edges are the rows of column matchedCol[j]. matchedCol
// must be a total map (every row assigned a column). It returns the number
// of components, a node permutation perm (new index → old node, components
// contiguous and in topological order of the component DAG, natural node
// order inside each), and boundaries blocks of length nblocks+1.
func scc(a csc.Pattern, matchedCol []int) (nblocks int, perm, blocks []int) {
	n := a.N()
	ws := &sccWorkspace{
		disc:      make([]int, n),
		low:       make([]int, n),
		visited:   make([]int, n),
		compStack: make([]int, n+1),
		colStack:  make([]int, n),
		posStack:  make([]int, n),
	}
	for j := 0; j < n; j++ {
		ws.visited[j] = sccUnvisited
	}

	for j := 0; j < n; j++ {
		if ws.visited[j] == sccUnvisited {
			sccFromRoot(a, matchedCol, j, ws)
		}
	}

	nblocks = ws.nblocks

	// 1. Count nodes per block into the boundary array.
	blocks = make([]int, nblocks+1)
	for j := 0; j < n; j++ {
		blocks[ws.visited[j]+1]++
	}

	// 2. Prefix-sum into block start offsets.
	for b := 0; b < nblocks; b++ {
		blocks[b+1] += blocks[b]
	}

	// 3. Scatter nodes into their blocks in natural order.
	perm = make([]int, n)
	next := make([]int, nblocks)
	copy(next, blocks[:nblocks])
	for j := 0; j < n; j++ {
		b := ws.visited[j]
		perm[next[b]] = j
		next[b]++
	}

	return nblocks, perm, blocks
}

// sccFromRoot performs one iterative Tarjan DFS rooted at the given node.
func sccFromRoot(a csc.Pattern, matchedCol []int, root int, ws *sccWorkspace) {
	compHead := -1
	head := 0
	ws.colStack[0] = root

	for head >= 0 {
		j := ws.colStack[head]
		adjCol := matchedCol[j]
		end := a.ColEnd(adjCol)

		if ws.visited[j] == sccUnvisited {
			compHead++
			ws.compStack[compHead] = j
			ws.time++
			ws.disc[j] = ws.time
			ws.low[j] = ws.time
			ws.visited[j] = sccUnassigned
			ws.posStack[head] = a.ColStart(adjCol)
		}

		p := ws.posStack[head]
		for p < end {
			i := a.RowIndex(p)
			if ws.visited[i] == sccUnvisited {
				// descend
				ws.posStack[head] = p + 1
				head++
				ws.colStack[head] = i

				break
			}
			if ws.visited[i] == sccUnassigned {
				// back/cross edge to a node still on the component stack
				if ws.disc[i] < ws.low[j] {
					ws.low[j] = ws.disc[i]
				}
			}
			p++
			ws.posStack[head] = p
		}

		if p == end {
			// all edges of j examined
			head--

			if ws.low[j] == ws.disc[j] {
				// j is the root of a component: pop it off the stack
				for {
					i := ws.compStack[compHead]
					compHead--
					ws.visited[i] = ws.nblocks
					if i == j {
						break
					}
				}
				ws.nblocks++
			}

			if head >= 0 {
				parent := ws.colStack[head]
				if ws.low[j] < ws.low[parent] {
					ws.low[parent] = ws.low[j]
				}
			}
		}
	}
}
