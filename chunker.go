package chunktree

const (
	// MaxChunkSize is the number of payload bytes a single chunk can carry.
	MaxChunkSize = 256 * 1024

	// MinChunkSize is the smallest chunk the splitter emits for payloads
	// spanning more than one chunk. A greedy split whose tail falls below
	// this floor is rebalanced against its predecessor.
	MinChunkSize = MaxChunkSize / 2
)

// Chunk is a half-open byte range [MinByteRange, MaxByteRange) of the payload.
type Chunk struct {
	MinByteRange uint64
	MaxByteRange uint64
}

// Length returns the number of payload bytes the chunk covers.
func (c Chunk) Length() uint64 {
	return c.MaxByteRange - c.MinByteRange
}

// Split partitions data into contiguous chunks of at most MaxChunkSize bytes.
// Boundaries depend only on the payload length, so equal-length payloads
// always produce the same layout. An empty payload yields a single [0,0)
// chunk, and a payload that is an exact multiple of MaxChunkSize yields only
// full chunks.
func Split(data []byte) []Chunk {
	return split(uint64(len(data)))
}

func split(n uint64) []Chunk {
	if n == 0 {
		// The empty payload still occupies one zero-length chunk.
		return []Chunk{{}}
	}

	chunks := make([]Chunk, 0, n/MaxChunkSize+1)
	for off := uint64(0); off < n; {
		end := n
		if n-off > MaxChunkSize {
			end = off + MaxChunkSize
		}
		chunks = append(chunks, Chunk{MinByteRange: off, MaxByteRange: end})
		off = end
	}

	// A short tail would leave the last chunk under MinChunkSize. Merge it
	// with its predecessor and cut the result in half, rounding the first
	// half up.
	last := len(chunks) - 1
	if last > 0 && chunks[last].Length() < MinChunkSize {
		start := chunks[last-1].MinByteRange
		half := (chunks[last].MaxByteRange - start + 1) / 2
		chunks[last-1].MaxByteRange = start + half
		chunks[last].MinByteRange = start + half
	}
	return chunks
}
