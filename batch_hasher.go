package chunktree

import (
	"runtime"
	"sync"

	"github.com/prysmaticlabs/gohashtree"
)

// batchProcessor parallelizes the hash passes of tree construction. Chunk
// digests and branch levels run on a bounded worker pool, leaf ids go
// through gohashtree as one vectorized pass over 64-byte blocks.
type batchProcessor struct {
	workers    int
	hasherPool sync.Pool
}

func newBatchProcessor(workers int) *batchProcessor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &batchProcessor{
		workers: workers,
		hasherPool: sync.Pool{
			New: func() interface{} {
				return NewHasher()
			},
		},
	}
}

// chunkDigests hashes every chunk's payload slice. Results are written by
// chunk index, so the output is identical regardless of worker count.
func (bp *batchProcessor) chunkDigests(data []byte, chunks []Chunk) [][HashSize]byte {
	out := make([][HashSize]byte, len(chunks))

	// Small batches skip the pool.
	if len(chunks) <= 2 || bp.workers == 1 {
		h := bp.hasherPool.Get().(*Hasher)
		for i, c := range chunks {
			out[i] = h.HashChunk(data[c.MinByteRange:c.MaxByteRange])
		}
		bp.hasherPool.Put(h)
		return out
	}

	jobs := make(chan int, len(chunks))
	var wg sync.WaitGroup

	workers := bp.workers
	if workers > len(chunks) {
		workers = len(chunks)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := bp.hasherPool.Get().(*Hasher)
			defer bp.hasherPool.Put(h)
			for idx := range jobs {
				c := chunks[idx]
				out[idx] = h.HashChunk(data[c.MinByteRange:c.MaxByteRange])
			}
		}()
	}

	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}

// leafHashes derives leaf ids from chunk digests and end offsets. Each id is
// the digest of one 64-byte block, so the whole level is handed to
// gohashtree in a single call, with a serial fallback through the Hasher.
func (bp *batchProcessor) leafHashes(digests [][HashSize]byte, chunks []Chunk) [][HashSize]byte {
	h := bp.hasherPool.Get().(*Hasher)
	defer bp.hasherPool.Put(h)

	blocks := make([][HashSize]byte, 2*len(chunks))
	for i, c := range chunks {
		blocks[2*i] = h.sumOne(digests[i][:])
		blocks[2*i+1] = h.sumOne(h.encodeNote(c.MaxByteRange))
	}

	out := make([][HashSize]byte, len(chunks))
	if err := gohashtree.Hash(out, blocks); err != nil {
		for i, c := range chunks {
			out[i] = h.HashLeaf(digests[i], c.MaxByteRange)
		}
	}
	return out
}

// hashBranchLevel fills in the ids of one tree level's branches. Each branch
// already carries its children and split offset.
func (bp *batchProcessor) hashBranchLevel(branches []*branchNode) {
	if len(branches) == 0 {
		return
	}

	if len(branches) <= 2 || bp.workers == 1 {
		h := bp.hasherPool.Get().(*Hasher)
		for _, b := range branches {
			b.hash = h.HashBranch(b.left.id(), b.right.id(), b.split)
		}
		bp.hasherPool.Put(h)
		return
	}

	jobs := make(chan *branchNode, len(branches))
	var wg sync.WaitGroup

	workers := bp.workers
	if workers > len(branches) {
		workers = len(branches)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := bp.hasherPool.Get().(*Hasher)
			defer bp.hasherPool.Put(h)
			for b := range jobs {
				b.hash = h.HashBranch(b.left.id(), b.right.id(), b.split)
			}
		}()
	}

	for _, b := range branches {
		jobs <- b
	}
	close(jobs)
	wg.Wait()
}
