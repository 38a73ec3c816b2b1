package tree

// Node is one slot of the comparison tree. A node without a File only
// exists transiently while an insertion descends into it.
type Node struct {
	File    *File
	Smaller *Node
	Larger  *Node
}
