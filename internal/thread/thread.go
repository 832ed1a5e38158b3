// Package thread builds the nested reply forest for a task's comments.
package thread

import (
	"strings"

	"taskdeck-cli/internal/model"
)

// Node is one comment plus its direct replies, recursively nested.
// Nodes are derived fresh on every build; they have no identity beyond the
// underlying comment id.
type Node struct {
	Comment model.Comment `json:"comment"`
	Replies []*Node       `json:"replies"`
}

// Build converts a flat comment list into a forest of root nodes.
//
// The pass is order-preserving: roots and sibling replies keep the relative
// order they had in the input. Callers that want oldest-first threads must
// pass an oldest-first slice (store indexes are newest-first; see BuildOldestFirst).
//
// A comment whose ReplyToID does not resolve within the input set (parent
// deleted, partial fetch) is kept as a root rather than dropped. Duplicate
// ids are not rejected; the last occurrence wins in the id map.
func Build(comments []model.Comment) []*Node {
	if len(comments) == 0 {
		return nil
	}

	byID := make(map[string]*Node, len(comments))
	nodes := make([]*Node, 0, len(comments))
	for _, c := range comments {
		n := &Node{Comment: c, Replies: []*Node{}}
		nodes = append(nodes, n)
		if id := strings.TrimSpace(c.ID); id != "" {
			byID[id] = n
		}
	}

	roots := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		parent := ""
		if n.Comment.ReplyToID != nil {
			parent = strings.TrimSpace(*n.Comment.ReplyToID)
		}
		if p, ok := byID[parent]; ok && parent != "" && p != n {
			p.Replies = append(p.Replies, n)
			continue
		}
		roots = append(roots, n)
	}
	return roots
}

// BuildOldestFirst reverses a newest-first slice before building, which is
// how the store hands comments out.
func BuildOldestFirst(newestFirst []model.Comment) []*Node {
	if len(newestFirst) == 0 {
		return nil
	}
	ordered := make([]model.Comment, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		ordered = append(ordered, newestFirst[i])
	}
	return Build(ordered)
}

// Count returns the total number of comments in the forest, nested replies
// included.
func Count(forest []*Node) int {
	n := 0
	for _, node := range forest {
		if node == nil {
			continue
		}
		n += 1 + Count(node.Replies)
	}
	return n
}

// Row is one comment in a flattened depth-first traversal of the forest,
// for indent-style rendering.
type Row struct {
	Comment model.Comment
	Depth   int
}

// Flatten walks the forest depth-first. maxDepth caps the *reported* depth
// (indentation only); deeper replies are still visited, clamped to maxDepth.
// maxDepth <= 0 means unbounded.
//
// The seen guard makes traversal safe even against malformed input that the
// builder's "parents are strictly older" invariant should rule out.
func Flatten(forest []*Node, maxDepth int) []Row {
	out := make([]Row, 0, Count(forest))
	seen := map[string]bool{}
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if n == nil {
			return
		}
		id := strings.TrimSpace(n.Comment.ID)
		if id != "" {
			if seen[id] {
				return
			}
			seen[id] = true
		}
		d := depth
		if maxDepth > 0 && d > maxDepth {
			d = maxDepth
		}
		out = append(out, Row{Comment: n.Comment, Depth: d})
		for _, kid := range n.Replies {
			walk(kid, depth+1)
		}
	}
	for _, r := range forest {
		walk(r, 0)
	}
	return out
}
