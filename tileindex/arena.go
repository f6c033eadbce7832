package tileindex

import "iter"

const defaultChunkSize = 4096

// Arena is an append-only sequence split into fixed-capacity chunks.
// Elements never move once appended, so pointers returned by Append stay
// valid for the lifetime of the arena. Arena is not safe for concurrent use.
type Arena[T any] struct {
	chunkSize int
	chunks    [][]T
	length    int
}

func NewArena[T any](chunkSize int) *Arena[T] {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Arena[T]{chunkSize: chunkSize}
}

// Append stores v and returns its stable address.
func (a *Arena[T]) Append(v T) *T {
	n := len(a.chunks)
	if n == 0 || len(a.chunks[n-1]) == cap(a.chunks[n-1]) {
		a.chunks = append(a.chunks, make([]T, 0, a.chunkSize))
		n++
	}
	chunk := append(a.chunks[n-1], v)
	a.chunks[n-1] = chunk
	a.length++
	return &chunk[len(chunk)-1]
}

func (a *Arena[T]) Len() int {
	return a.length
}

// All returns an iterator over the stored elements in insertion order.
func (a *Arena[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, chunk := range a.chunks {
			for i := range chunk {
				if !yield(&chunk[i]) {
					return
				}
			}
		}
	}
}
