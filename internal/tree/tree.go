package tree

import (
	"bytes"
	"errors"
)

// Tree orders files by size, then by content digest among files of equal
// size. Files proven identical are chained behind the node that holds the
// first of them instead of getting a node of their own.
//
// The tree is never rebalanced; sorted input degrades it to a list.
// A Tree is not safe for concurrent use: callers must serialize Insert.
type Tree struct {
	root   *Node
	hasher Hasher

	nodes  int
	files  int
	hashed int
}

// New returns an empty tree that computes digests with h.
func New(h Hasher) *Tree {
	return &Tree{
		root:   &Node{},
		hasher: h,
	}
}

// Root returns the root node, or nil while the tree is empty.
func (t *Tree) Root() *Node {
	if t.root.File == nil {
		return nil
	}
	return t.root
}

// Len returns the number of tree-visible nodes.
func (t *Tree) Len() int { return t.nodes }

// Files returns the number of inserted descriptors, chain members included.
func (t *Tree) Files() int { return t.files }

// Hashed returns how many digests have been computed.
func (t *Tree) Hashed() int { return t.hashed }

// Insert places f in the tree, or chains it behind an existing node whose
// file has the same size and digest.
//
// A *HashError for f aborts the insertion and leaves the tree as it was,
// apart from digests already stored. A *HashError for the occupant of a
// size tie evicts it: f takes its slot, the error has Evicted set and
// names the occupant's path.
func (t *Tree) Insert(f *File) error {
	if f == nil {
		return errors.New("nil file")
	}

	node := t.root
	for {
		if node.File == nil {
			node.File = f
			t.nodes++
			t.files++
			return nil
		}

		occupant := node.File
		if occupant == f {
			return errors.New("file already inserted")
		}
		var next **Node

		switch {
		case f.Size > occupant.Size:
			next = &node.Larger
		case f.Size < occupant.Size:
			next = &node.Smaller
		default:
			if err := t.computeHash(occupant); err != nil {
				// An occupant without a digest never won a tie, so nothing
				// below it has its size and f can take the slot.
				node.File = f
				var hashErr *HashError
				if errors.As(err, &hashErr) {
					hashErr.Evicted = true
				}
				return err
			}
			if err := t.computeHash(f); err != nil {
				return err
			}

			switch c := bytes.Compare(f.Hash, occupant.Hash); {
			case c > 0:
				next = &node.Larger
			case c < 0:
				next = &node.Smaller
			default:
				for cur := occupant; cur != nil; cur = cur.Next {
					if cur == f {
						return errors.New("file already inserted")
					}
				}
				occupant.link(f)
				t.files++
				return nil
			}
		}

		if *next == nil {
			*next = &Node{}
		}
		node = *next
	}
}

func (t *Tree) computeHash(f *File) error {
	if f.Hash != nil {
		return nil
	}
	if err := f.ComputeHash(t.hasher); err != nil {
		return err
	}
	t.hashed++
	return nil
}

// Walk visits tree-visible nodes in order (ascending size, then digest)
// until fn returns false.
func (t *Tree) Walk(fn func(*Node) bool) {
	var stack []*Node
	node := t.Root()
	for node != nil || len(stack) > 0 {
		for node != nil {
			stack = append(stack, node)
			node = node.Smaller
		}
		node = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.File != nil && !fn(node) {
			return
		}
		node = node.Larger
	}
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *Tree) Height() int {
	type level struct {
		node  *Node
		depth int
	}

	root := t.Root()
	if root == nil {
		return 0
	}

	height := 0
	stack := []level{{root, 1}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.depth > height {
			height = cur.depth
		}
		if cur.node.Smaller != nil {
			stack = append(stack, level{cur.node.Smaller, cur.depth + 1})
		}
		if cur.node.Larger != nil {
			stack = append(stack, level{cur.node.Larger, cur.depth + 1})
		}
	}
	return height
}

// Group is a set of files proven to share size and content.
type Group struct {
	Size  int64
	Hash  []byte
	Files []*File
}

// Wasted returns the bytes that would be freed by keeping a single copy.
func (g Group) Wasted() int64 {
	return g.Size * int64(len(g.Files)-1)
}

// Duplicates returns every duplicate chain in tree order.
func (t *Tree) Duplicates() []Group {
	var groups []Group
	t.Walk(func(n *Node) bool {
		if n.File.HasDupes {
			groups = append(groups, Group{
				Size:  n.File.Size,
				Hash:  n.File.Hash,
				Files: n.File.Chain(),
			})
		}
		return true
	})
	return groups
}
