package chunktree

import "math"

// Proof attests that one chunk sits at one exact byte range of the payload
// committed to by a data root. The path is self-contained: it carries both
// child ids of every branch from the root down plus the final leaf record,
// so validation needs nothing but the root, the claimed range and the chunk
// bytes.
type Proof struct {
	// offset is the index of the chunk's last byte, zero for the single
	// zero-length chunk of an empty payload.
	offset uint64
	// path is the concatenation of branch records, left id then right id
	// then the split note, followed by the leaf record, chunk digest then
	// the end offset note.
	path []byte
}

// NewProof constructs a proof from an end offset and raw path bytes.
func NewProof(offset uint64, path []byte) Proof {
	return Proof{offset: offset, path: path}
}

// Offset returns the index of the last byte the proven chunk covers.
func (proof Proof) Offset() uint64 {
	return proof.offset
}

// Path returns the raw path bytes.
func (proof Proof) Path() []byte {
	return proof.path
}

// VerifyInclusion checks the proof against a data root, a claimed byte range
// and the chunk bytes themselves. It walks the path from the root, rehashing
// every record and steering by the claimed end offset, and accepts only if
// the recomputed ids, the recomputed chunk digest and the accumulated offset
// bounds all match the claim. Any malformed record, stray note byte or
// mismatch rejects the whole proof.
func (proof Proof) VerifyInclusion(root []byte, chunk Chunk, data []byte) bool {
	if len(root) != HashSize {
		return false
	}
	if chunk.MaxByteRange < chunk.MinByteRange {
		return false
	}
	if uint64(len(data)) != chunk.Length() {
		return false
	}

	path := proof.path
	if len(path) < leafRecordSize || (len(path)-leafRecordSize)%branchRecordSize != 0 {
		return false
	}

	offset := chunk.MaxByteRange
	if offset > 0 {
		offset--
	}
	if proof.offset != offset {
		return false
	}

	h := NewHasher()
	var want [HashSize]byte
	copy(want[:], root)

	leftBound := uint64(0)
	rightBound := uint64(math.MaxUint64)
	for len(path) > leafRecordSize {
		var left, right [HashSize]byte
		copy(left[:], path[:HashSize])
		copy(right[:], path[HashSize:2*HashSize])
		split, err := DecodeNote(path[2*HashSize:branchRecordSize])
		if err != nil {
			return false
		}
		if h.HashBranch(left, right, split) != want {
			return false
		}

		if offset < split {
			want = left
			if split < rightBound {
				rightBound = split
			}
		} else {
			want = right
			if split > leftBound {
				leftBound = split
			}
		}
		path = path[branchRecordSize:]
	}

	var dataHash [HashSize]byte
	copy(dataHash[:], path[:HashSize])
	endOffset, err := DecodeNote(path[HashSize:leafRecordSize])
	if err != nil {
		return false
	}
	if h.HashLeaf(dataHash, endOffset) != want {
		return false
	}
	if h.HashChunk(data) != dataHash {
		return false
	}

	// The walk pins the chunk's position: the recorded end offset must be
	// the claimed max, the left bound must be the claimed min, and the max
	// must not cross the tightest right bound seen on the way down.
	if endOffset != chunk.MaxByteRange {
		return false
	}
	if chunk.MinByteRange != leftBound {
		return false
	}
	if chunk.MaxByteRange > rightBound {
		return false
	}
	return true
}
