package chunktree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permadata/chunktree"
)

// payloadBytes builds a deterministic payload of n bytes.
func payloadBytes(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*31 + 7)
	}
	return data
}

func TestProofAccessors(t *testing.T) {
	p := chunktree.NewProof(7, []byte{1, 2, 3})
	assert.Equal(t, uint64(7), p.Offset())
	assert.Equal(t, []byte{1, 2, 3}, p.Path())
}

// TestVerifyInclusionAllChunks builds trees over a spread of payload shapes
// and checks that every generated proof verifies against the tree's own
// root and layout.
func TestVerifyInclusionAllChunks(t *testing.T) {
	sizes := []int{
		0,
		1,
		5,
		chunktree.MinChunkSize,
		chunktree.MaxChunkSize,
		chunktree.MaxChunkSize + 1,
		chunktree.MaxChunkSize + chunktree.MinChunkSize - 1,
		2*chunktree.MaxChunkSize + 1,
		3 * chunktree.MaxChunkSize,
		3*chunktree.MaxChunkSize + 7,
	}
	for _, size := range sizes {
		data := payloadBytes(size)
		tree := chunktree.New(data)
		root := tree.Root()
		chunks := tree.Chunks()
		proofs := tree.Proofs()
		require.Len(t, proofs, len(chunks), "size %d", size)

		for i, c := range chunks {
			ok := proofs[i].VerifyInclusion(root, c, data[c.MinByteRange:c.MaxByteRange])
			assert.True(t, ok, "size %d chunk %d", size, i)
		}
	}
}

func TestVerifyInclusionEmptyPayload(t *testing.T) {
	tree := chunktree.New(nil)
	root := tree.Root()
	p, err := tree.Prove(0)
	require.NoError(t, err)

	assert.True(t, p.VerifyInclusion(root, chunktree.Chunk{}, nil))
	assert.False(t, p.VerifyInclusion(root, chunktree.Chunk{}, []byte{1}))
	assert.False(t, p.VerifyInclusion(root, chunktree.Chunk{MinByteRange: 0, MaxByteRange: 1}, []byte{1}))
}

func TestVerifyInclusionRejects(t *testing.T) {
	data := payloadBytes(3 * chunktree.MaxChunkSize)
	tree := chunktree.New(data)
	root := tree.Root()
	chunks := tree.Chunks()
	proofs := tree.Proofs()

	chunk := chunks[0]
	chunkData := data[chunk.MinByteRange:chunk.MaxByteRange]
	proof := proofs[0]
	require.True(t, proof.VerifyInclusion(root, chunk, chunkData))

	flipPath := func(i int) chunktree.Proof {
		path := append([]byte(nil), proof.Path()...)
		path[i] ^= 0x01
		return chunktree.NewProof(proof.Offset(), path)
	}

	tests := []struct {
		name  string
		root  []byte
		chunk chunktree.Chunk
		data  []byte
		proof chunktree.Proof
	}{
		{
			name: "flipped root byte",
			root: func() []byte {
				r := append([]byte(nil), root...)
				r[5] ^= 0x01
				return r
			}(),
			chunk: chunk, data: chunkData, proof: proof,
		},
		{
			name: "short root",
			root: root[:31], chunk: chunk, data: chunkData, proof: proof,
		},
		{
			name: "flipped byte in branch record",
			root: root, chunk: chunk, data: chunkData, proof: flipPath(10),
		},
		{
			name: "flipped byte in leaf digest",
			root: root, chunk: chunk, data: chunkData,
			proof: flipPath(len(proof.Path()) - 64),
		},
		{
			name: "flipped byte in leaf note",
			root: root, chunk: chunk, data: chunkData,
			proof: flipPath(len(proof.Path()) - 1),
		},
		{
			name: "stray high byte in leaf note",
			root: root, chunk: chunk, data: chunkData,
			proof: func() chunktree.Proof {
				path := append([]byte(nil), proof.Path()...)
				path[len(path)-32] = 1
				return chunktree.NewProof(proof.Offset(), path)
			}(),
		},
		{
			name: "truncated path",
			root: root, chunk: chunk, data: chunkData,
			proof: chunktree.NewProof(proof.Offset(), proof.Path()[:len(proof.Path())-1]),
		},
		{
			name: "extended path",
			root: root, chunk: chunk, data: chunkData,
			proof: chunktree.NewProof(proof.Offset(), append(append([]byte(nil), proof.Path()...), 0)),
		},
		{
			name: "first branch record stripped",
			root: root, chunk: chunk, data: chunkData,
			proof: chunktree.NewProof(proof.Offset(), proof.Path()[96:]),
		},
		{
			name: "empty path",
			root: root, chunk: chunk, data: chunkData,
			proof: chunktree.NewProof(proof.Offset(), nil),
		},
		{
			name: "claimed range shifted forward",
			root: root,
			chunk: chunktree.Chunk{
				MinByteRange: chunk.MinByteRange + 1,
				MaxByteRange: chunk.MaxByteRange + 1,
			},
			data: data[chunk.MinByteRange+1 : chunk.MaxByteRange+1], proof: proof,
		},
		{
			name: "claimed max shrunk",
			root: root,
			chunk: chunktree.Chunk{
				MinByteRange: chunk.MinByteRange,
				MaxByteRange: chunk.MaxByteRange - 1,
			},
			data: chunkData[:len(chunkData)-1], proof: proof,
		},
		{
			name: "claim and data from another chunk",
			root: root, chunk: chunks[1],
			data: data[chunks[1].MinByteRange:chunks[1].MaxByteRange], proof: proof,
		},
		{
			name: "chunk byte flipped",
			root: root, chunk: chunk,
			data: func() []byte {
				d := append([]byte(nil), chunkData...)
				d[100] ^= 0x01
				return d
			}(),
			proof: proof,
		},
		{
			name: "chunk data truncated",
			root: root, chunk: chunk, data: chunkData[:len(chunkData)-1], proof: proof,
		},
		{
			name: "inverted claimed range",
			root: root,
			chunk: chunktree.Chunk{
				MinByteRange: chunk.MaxByteRange,
				MaxByteRange: chunk.MinByteRange,
			},
			data: nil, proof: proof,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.proof.VerifyInclusion(tt.root, tt.chunk, tt.data))
		})
	}
}

// TestVerifyInclusionCrossProof steers each chunk's claim down every other
// chunk's path. The leaf record cannot satisfy both, so only the matching
// pair verifies.
func TestVerifyInclusionCrossProof(t *testing.T) {
	data := payloadBytes(4 * chunktree.MaxChunkSize)
	tree := chunktree.New(data)
	root := tree.Root()
	chunks := tree.Chunks()
	proofs := tree.Proofs()

	for i, c := range chunks {
		chunkData := data[c.MinByteRange:c.MaxByteRange]
		for j := range proofs {
			forged := chunktree.NewProof(proofs[i].Offset(), proofs[j].Path())
			got := forged.VerifyInclusion(root, c, chunkData)
			assert.Equal(t, i == j, got, "claim %d path %d", i, j)
		}
	}
}

// TestVerifyInclusionForeignRoot checks that proofs never verify against
// the root of a different payload of the same shape.
func TestVerifyInclusionForeignRoot(t *testing.T) {
	data := payloadBytes(chunktree.MaxChunkSize + 1)
	other := append([]byte(nil), data...)
	other[0] ^= 0x80

	tree := chunktree.New(data)
	foreign := chunktree.New(other)
	chunks := tree.Chunks()

	for i, p := range tree.Proofs() {
		c := chunks[i]
		assert.False(t, p.VerifyInclusion(foreign.Root(), c, data[c.MinByteRange:c.MaxByteRange]), "chunk %d", i)
	}
}
