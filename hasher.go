package chunktree

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
)

const (
	// HashSize is the byte length of every digest in the tree.
	HashSize = sha256.Size

	// NoteSize is the byte length of an encoded byte offset. Offsets travel
	// through the tree as 32-byte big-endian values so that they can be
	// hashed and laid out in proofs exactly like digests.
	NoteSize = 32

	// A proof path is a run of branch records followed by one leaf record.
	branchRecordSize = 2*HashSize + NoteSize
	leafRecordSize   = HashSize + NoteSize
)

var (
	ErrInvalidNoteLen = errors.New("invalid note size")
	ErrNoteOverflow   = errors.New("note value exceeds uint64 range")
)

// EncodeNote returns the NoteSize-byte big-endian encoding of offset v.
func EncodeNote(v uint64) []byte {
	note := make([]byte, NoteSize)
	binary.BigEndian.PutUint64(note[NoteSize-8:], v)
	return note
}

// DecodeNote parses a NoteSize-byte big-endian offset. Notes whose value
// does not fit in a uint64 are rejected rather than truncated.
func DecodeNote(note []byte) (uint64, error) {
	if len(note) != NoteSize {
		return 0, fmt.Errorf("%w: got: %v, want: %v", ErrInvalidNoteLen, len(note), NoteSize)
	}
	for _, b := range note[:NoteSize-8] {
		if b != 0 {
			return 0, fmt.Errorf("%w: %x", ErrNoteOverflow, note)
		}
	}
	return binary.BigEndian.Uint64(note[NoteSize-8:]), nil
}

// Hasher computes the digests the tree is built from. Every node id hashes
// each input on its own first and then hashes the concatenation of those
// digests, so no input can bleed into its neighbor. A Hasher is not safe for
// concurrent use; hand each goroutine its own.
type Hasher struct {
	base hash.Hash
	buf  []byte
	note [NoteSize]byte
}

func NewHasher() *Hasher {
	return &Hasher{
		base: sha256.New(),
		buf:  make([]byte, 0, 3*HashSize),
	}
}

// HashChunk returns the digest of a chunk's payload bytes.
func (h *Hasher) HashChunk(data []byte) [HashSize]byte {
	return h.sumOne(data)
}

// HashLeaf returns the id of the leaf committing to a chunk digest and the
// chunk's end offset.
func (h *Hasher) HashLeaf(dataHash [HashSize]byte, maxByteRange uint64) [HashSize]byte {
	hd := h.sumOne(dataHash[:])
	hn := h.sumOne(h.encodeNote(maxByteRange))
	return h.sumPair(hd, hn)
}

// HashBranch returns the id of the branch joining two child ids at the given
// split offset, the end offset of the left subtree.
func (h *Hasher) HashBranch(left, right [HashSize]byte, split uint64) [HashSize]byte {
	hl := h.sumOne(left[:])
	hr := h.sumOne(right[:])
	hn := h.sumOne(h.encodeNote(split))

	h.buf = h.buf[:0]
	h.buf = append(h.buf, hl[:]...)
	h.buf = append(h.buf, hr[:]...)
	h.buf = append(h.buf, hn[:]...)
	return h.sumOne(h.buf)
}

func (h *Hasher) sumOne(data []byte) (digest [HashSize]byte) {
	h.base.Reset()
	//nolint:errcheck
	h.base.Write(data)
	h.base.Sum(digest[:0])
	return digest
}

// sumPair hashes the concatenation of two digests with a single Write on the
// underlying hash.
func (h *Hasher) sumPair(a, b [HashSize]byte) [HashSize]byte {
	h.buf = h.buf[:0]
	h.buf = append(h.buf, a[:]...)
	h.buf = append(h.buf, b[:]...)
	return h.sumOne(h.buf)
}

// encodeNote writes v into the hasher's note scratch. The leading bytes stay
// zero for the lifetime of the Hasher.
func (h *Hasher) encodeNote(v uint64) []byte {
	binary.BigEndian.PutUint64(h.note[NoteSize-8:], v)
	return h.note[:]
}
