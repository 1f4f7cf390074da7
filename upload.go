package chunktree

// UploadChunk is the self-contained submission body for one chunk. It binds
// the chunk bytes to a data root through the proof path, and carries the
// payload size and end offset as decimal strings, matching the wire format
// chunk upload endpoints accept. Binary fields travel as unpadded base64url.
type UploadChunk struct {
	DataRoot Base64 `json:"data_root"`
	DataSize uint64 `json:"data_size,string"`
	DataPath Base64 `json:"data_path"`
	Offset   uint64 `json:"offset,string"`
	Chunk    Base64 `json:"chunk"`
}

// UploadChunks assembles one submission element per chunk, in chunk order.
// An empty payload has a data root but nothing to submit, so it yields no
// elements.
func (t *Tree) UploadChunks() []UploadChunk {
	uploads := make([]UploadChunk, 0, len(t.chunks))
	if t.DataSize() == 0 {
		return uploads
	}

	root := t.Root()
	size := t.DataSize()
	proofs := t.Proofs()
	for i, c := range t.chunks {
		uploads = append(uploads, UploadChunk{
			DataRoot: root,
			DataSize: size,
			DataPath: proofs[i].Path(),
			Offset:   proofs[i].Offset(),
			Chunk:    t.data[c.MinByteRange:c.MaxByteRange],
		})
	}
	return uploads
}

// Verify checks the element against its own data root. The claimed byte
// range is reconstructed from the end offset and the chunk length, the way
// a receiving node derives it.
func (u UploadChunk) Verify() bool {
	max := u.Offset + 1
	if max == 0 || max > u.DataSize {
		return false
	}
	if uint64(len(u.Chunk)) > max {
		return false
	}
	chunk := Chunk{
		MinByteRange: max - uint64(len(u.Chunk)),
		MaxByteRange: max,
	}
	return NewProof(u.Offset, u.DataPath).VerifyInclusion(u.DataRoot, chunk, u.Chunk)
}
