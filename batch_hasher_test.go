package chunktree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkDigestsMatchSerial(t *testing.T) {
	data := makePayload(3*MaxChunkSize + 5)
	chunks := Split(data)
	require.Greater(t, len(chunks), 2)

	h := NewHasher()
	want := make([][HashSize]byte, len(chunks))
	for i, c := range chunks {
		want[i] = h.HashChunk(data[c.MinByteRange:c.MaxByteRange])
	}

	for _, workers := range []int{1, 2, 4, 9} {
		bp := newBatchProcessor(workers)
		assert.Equal(t, want, bp.chunkDigests(data, chunks), "workers %d", workers)
	}
}

// TestLeafHashesMatchHasher pins the vectorized leaf pass to the serial
// definition of a leaf id.
func TestLeafHashesMatchHasher(t *testing.T) {
	data := makePayload(4*MaxChunkSize + 123)
	chunks := Split(data)

	bp := newBatchProcessor(0)
	digests := bp.chunkDigests(data, chunks)

	h := NewHasher()
	want := make([][HashSize]byte, len(chunks))
	for i, c := range chunks {
		want[i] = h.HashLeaf(digests[i], c.MaxByteRange)
	}

	assert.Equal(t, want, bp.leafHashes(digests, chunks))
}

func TestHashBranchLevelMatchesSerial(t *testing.T) {
	h := NewHasher()

	var leaves []*leafNode
	for i := 0; i < 8; i++ {
		min := uint64(i) * MaxChunkSize
		max := min + MaxChunkSize
		dataHash := h.HashChunk([]byte{byte(i)})
		leaves = append(leaves, &leafNode{
			hash:     h.HashLeaf(dataHash, max),
			dataHash: dataHash,
			min:      min,
			max:      max,
		})
	}

	build := func() []*branchNode {
		var branches []*branchNode
		for i := 0; i+1 < len(leaves); i += 2 {
			branches = append(branches, &branchNode{
				left:  leaves[i],
				right: leaves[i+1],
				min:   leaves[i].min,
				max:   leaves[i+1].max,
				split: leaves[i].max,
			})
		}
		return branches
	}

	for _, workers := range []int{1, 3, 8} {
		branches := build()
		newBatchProcessor(workers).hashBranchLevel(branches)
		for i, b := range branches {
			want := h.HashBranch(b.left.id(), b.right.id(), b.split)
			assert.Equal(t, want, b.hash, "workers %d branch %d", workers, i)
		}
	}
}

func TestHashBranchLevelEmpty(t *testing.T) {
	assert.NotPanics(t, func() {
		newBatchProcessor(4).hashBranchLevel(nil)
	})
}
