// Package chunktree deterministically splits byte payloads into bounded
// chunks and commits to them with an offset-annotated binary Merkle tree.
// The root digest identifies the payload, and every chunk carries a compact
// path that proves, against that root alone, both its content and its exact
// byte position. Layouts, roots and proofs depend only on the payload bytes,
// never on host or configuration, so independently built trees agree bit for
// bit.
package chunktree

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
)

var (
	ErrIndexOutOfRange  = errors.New("chunk index out of range")
	ErrOffsetOutOfRange = errors.New("byte offset out of range")
)

// Tree is the commitment tree over one payload. It is immutable once built
// and safe for concurrent readers.
type Tree struct {
	data   []byte
	chunks []Chunk
	leaves []*leafNode
	root   node
}

// Options configure tree construction.
type Options struct {
	// Workers bounds the goroutines hashing chunks and branch levels.
	Workers int
}

type Option func(*Options)

// Workers sets the number of hashing goroutines. Values below one fall back
// to the number of CPUs.
func Workers(count int) Option {
	return func(opts *Options) {
		opts.Workers = count
	}
}

// New splits data and builds its commitment tree. It accepts any payload,
// including an empty one, and cannot fail. The tree keeps a reference to
// data for proof and submission assembly, so the caller must not modify the
// payload while the tree is in use.
func New(data []byte, setters ...Option) *Tree {
	opts := &Options{
		Workers: runtime.NumCPU(),
	}
	for _, setter := range setters {
		setter(opts)
	}

	bp := newBatchProcessor(opts.Workers)
	chunks := split(uint64(len(data)))
	digests := bp.chunkDigests(data, chunks)
	leafIDs := bp.leafHashes(digests, chunks)

	leaves := make([]*leafNode, len(chunks))
	for i, c := range chunks {
		leaves[i] = &leafNode{
			hash:     leafIDs[i],
			dataHash: digests[i],
			min:      c.MinByteRange,
			max:      c.MaxByteRange,
		}
	}

	return &Tree{
		data:   data,
		chunks: chunks,
		leaves: leaves,
		root:   buildRoot(bp, leaves),
	}
}

// buildRoot reduces the leaf level pairwise until one node remains. An odd
// node at the end of a level is promoted unmodified, keeping leaf order
// intact. A single leaf is the root itself.
func buildRoot(bp *batchProcessor, leaves []*leafNode) node {
	level := make([]node, len(leaves))
	for i, leaf := range leaves {
		level[i] = leaf
	}

	for len(level) > 1 {
		next := make([]node, 0, (len(level)+1)/2)
		branches := make([]*branchNode, 0, len(level)/2)
		for i := 0; i+1 < len(level); i += 2 {
			left, right := level[i], level[i+1]
			lmin, lmax := left.byteRange()
			_, rmax := right.byteRange()
			b := &branchNode{
				left:  left,
				right: right,
				min:   lmin,
				max:   rmax,
				split: lmax,
			}
			next = append(next, b)
			branches = append(branches, b)
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		bp.hashBranchLevel(branches)
		level = next
	}
	return level[0]
}

// Root returns a copy of the tree's root digest, the payload's data root.
func (t *Tree) Root() []byte {
	root := t.root.id()
	return root[:]
}

// DataSize returns the payload length in bytes.
func (t *Tree) DataSize() uint64 {
	return uint64(len(t.data))
}

// Size returns the number of chunks, which equals the number of leaves.
func (t *Tree) Size() int {
	return len(t.leaves)
}

// Chunks returns a copy of the payload's chunk layout in byte order.
func (t *Tree) Chunks() []Chunk {
	chunks := make([]Chunk, len(t.chunks))
	copy(chunks, t.chunks)
	return chunks
}

// Prove returns the inclusion proof for the chunk at the given index. The
// path holds one record per branch on the way down plus the leaf record.
func (t *Tree) Prove(index int) (Proof, error) {
	if index < 0 || index >= len(t.leaves) {
		return Proof{}, fmt.Errorf("%w: index %d, tree has %d chunks", ErrIndexOutOfRange, index, len(t.leaves))
	}

	offset := chunkOffset(t.leaves[index])
	path := make([]byte, 0, leafRecordSize)
	n := t.root
	for {
		switch v := n.(type) {
		case *branchNode:
			lid, rid := v.left.id(), v.right.id()
			path = append(path, lid[:]...)
			path = append(path, rid[:]...)
			path = append(path, EncodeNote(v.split)...)
			if offset < v.split {
				n = v.left
			} else {
				n = v.right
			}
		case *leafNode:
			path = append(path, v.dataHash[:]...)
			path = append(path, EncodeNote(v.max)...)
			return NewProof(offset, path), nil
		}
	}
}

// ProveOffset returns the inclusion proof for the chunk containing the
// payload byte at the given absolute offset.
func (t *Tree) ProveOffset(offset uint64) (Proof, error) {
	if offset >= t.DataSize() {
		return Proof{}, fmt.Errorf("%w: offset %d, payload is %d bytes", ErrOffsetOutOfRange, offset, t.DataSize())
	}
	return t.Prove(t.chunkIndex(offset))
}

// Proofs returns the inclusion proofs for all chunks in chunk order. The
// result for each index is byte-identical to Prove of that index.
func (t *Tree) Proofs() []Proof {
	proofs := make([]Proof, 0, len(t.leaves))
	resolveProofs(t.root, nil, &proofs)
	return proofs
}

// resolveProofs walks the tree depth first, extending the shared record
// prefix at every branch and emitting one proof per leaf.
func resolveProofs(n node, prefix []byte, proofs *[]Proof) {
	switch v := n.(type) {
	case *leafNode:
		path := make([]byte, 0, len(prefix)+leafRecordSize)
		path = append(path, prefix...)
		path = append(path, v.dataHash[:]...)
		path = append(path, EncodeNote(v.max)...)
		*proofs = append(*proofs, NewProof(chunkOffset(v), path))
	case *branchNode:
		next := make([]byte, 0, len(prefix)+branchRecordSize)
		next = append(next, prefix...)
		lid, rid := v.left.id(), v.right.id()
		next = append(next, lid[:]...)
		next = append(next, rid[:]...)
		next = append(next, EncodeNote(v.split)...)
		resolveProofs(v.left, next, proofs)
		resolveProofs(v.right, next, proofs)
	}
}

// chunkIndex returns the index of the chunk containing the byte at offset.
// The caller bounds offset to the payload.
func (t *Tree) chunkIndex(offset uint64) int {
	return sort.Search(len(t.chunks), func(i int) bool {
		return offset < t.chunks[i].MaxByteRange
	})
}

// chunkOffset is the proof offset of a leaf, the index of the chunk's last
// byte. The zero-length chunk of an empty payload reports offset zero.
func chunkOffset(leaf *leafNode) uint64 {
	if leaf.max == 0 {
		return 0
	}
	return leaf.max - 1
}
