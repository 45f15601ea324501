package dag

// TreeNode is one node of a strict hierarchy. Leaves have nil Children.
type TreeNode struct {
	Node     *Node
	Children []*TreeNode
}

// IsLeaf reports whether the node has no children.
func (t *TreeNode) IsLeaf() bool { return len(t.Children) == 0 }

// Tree is a strict hierarchy derived from a DAG, rooted at Root.
// Trees are produced by the tree reducer and never mutate the source graph.
type Tree struct {
	Root *TreeNode
}

// Walk visits every node in depth-first pre-order, passing its depth
// (root = 0). Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(n *TreeNode, depth int) bool) {
	if t == nil || t.Root == nil {
		return
	}
	var walk func(n *TreeNode, depth int)
	walk = func(n *TreeNode, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(t.Root, 0)
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(*TreeNode, int) bool { n++; return true })
	return n
}

// Depth returns the depth of the deepest node (0 for a root-only tree).
func (t *Tree) Depth() int {
	d := 0
	t.Walk(func(_ *TreeNode, depth int) bool {
		d = max(d, depth)
		return true
	})
	return d
}

// Find returns the tree node with the given ID.
func (t *Tree) Find(id string) (*TreeNode, bool) {
	var found *TreeNode
	t.Walk(func(n *TreeNode, _ int) bool {
		if found != nil {
			return false
		}
		if n.Node.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Parent returns the parent of the node with the given ID. The root has no parent.
func (t *Tree) Parent(id string) (*TreeNode, bool) {
	var parent *TreeNode
	t.Walk(func(n *TreeNode, _ int) bool {
		if parent != nil {
			return false
		}
		for _, c := range n.Children {
			if c.Node.ID == id {
				parent = n
				return false
			}
		}
		return true
	})
	return parent, parent != nil
}
