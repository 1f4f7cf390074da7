package chunktree

// node is a single position in the commitment tree. Leaves pin chunk
// digests, branches pin an ordered pair of subtrees.
type node interface {
	id() [HashSize]byte
	byteRange() (min, max uint64)
}

type (
	// leafNode commits to one chunk. The digest of the chunk bytes and the
	// chunk's end offset both feed the leaf id.
	leafNode struct {
		hash     [HashSize]byte
		dataHash [HashSize]byte
		min, max uint64
	}

	// branchNode joins two subtrees. split is the left child's end offset
	// and routes offset lookups during proof generation and validation.
	branchNode struct {
		hash        [HashSize]byte
		left, right node
		min, max    uint64
		split       uint64
	}
)

var (
	_ node = (*leafNode)(nil)
	_ node = (*branchNode)(nil)
)

func (n *leafNode) id() [HashSize]byte { return n.hash }

func (n *leafNode) byteRange() (uint64, uint64) { return n.min, n.max }

func (n *branchNode) id() [HashSize]byte { return n.hash }

func (n *branchNode) byteRange() (uint64, uint64) { return n.min, n.max }
