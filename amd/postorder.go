package amd

// postorderAssemblyTree orders the supernodal assembly tree depth-first,
// writing into order the rank of each element (empty for non-elements).
// parent holds parent pointers (empty at roots), nv the supernode sizes
// (0 for non-principal nodes), fsize the front size of each element used
// to place the largest child last. child, sibling, and stack are size-n
// workspaces.
//
// Largest-child-last matters downstream: numbering the biggest subtree
// immediately before its parent keeps the active working set of a
// left-looking factorization contiguous.
func postorderAssemblyTree(n int, parent, nv, fsize, order, child, sibling, stack []int) {
	for j := 0; j < n; j++ {
		child[j] = empty
		sibling[j] = empty
	}

	// build child lists; scanning high to low leaves children in
	// ascending order within each list
	for j := n - 1; j >= 0; j-- {
		if nv[j] > 0 && parent[j] != empty {
			sibling[j] = child[parent[j]]
			child[parent[j]] = j
		}
	}

	// move the largest child of every node to the end of its child list
	for i := 0; i < n; i++ {
		if nv[i] <= 0 || child[i] == empty {
			continue
		}

		fprev, bigfprev := empty, empty
		maxfrsize, bigf := empty, empty
		for f := child[i]; f != empty; f = sibling[f] {
			if fsize[f] >= maxfrsize {
				maxfrsize = fsize[f]
				bigfprev = fprev
				bigf = f
			}
			fprev = f
		}

		fnext := sibling[bigf]
		if fnext == empty {
			continue // bigf is already last
		}
		if bigfprev == empty {
			child[i] = fnext
		} else {
			sibling[bigfprev] = fnext
		}
		sibling[bigf] = empty
		sibling[fprev] = bigf
	}

	for i := 0; i < n; i++ {
		order[i] = empty
	}

	k := 0
	for i := 0; i < n; i++ {
		if parent[i] == empty && nv[i] > 0 {
			k = postorderTree(i, k, child, sibling, order, stack)
		}
	}
}

// postorderTree numbers one tree iteratively, children before parents,
// starting at rank k. Returns the next free rank. child lists are consumed.
func postorderTree(root, k int, child, sibling, order, stack []int) int {
	head := 0
	stack[0] = root

	for head >= 0 {
		i := stack[head]

		if child[i] != empty {
			// push the children so the last (largest) child pops last
			for f := child[i]; f != empty; f = sibling[f] {
				head++
			}
			h := head
			for f := child[i]; f != empty; f = sibling[f] {
				stack[h] = f
				h--
			}
			// i gets ordered the next time it surfaces
			child[i] = empty
		} else {
			head--
			order[i] = k
			k++
		}
	}

	return k
}
