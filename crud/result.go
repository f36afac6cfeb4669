package crud

import (
	"context"
	"iter"
)

// Result presents one flat, single-pass sequence of T over successive page
// fetches. It buffers one page at a time and advances the offset after each
// successful fetch; the server-reported total is memoized lazily.
//
// A Result is a single-consumer cursor: it holds no locks and must not be
// shared between goroutines without external synchronization. Once a fetch
// returns zero entities the sequence is terminally exhausted and issues no
// further requests.
type Result[T any] struct {
	repo  *Repository[T]
	query map[string]string

	buf       []T
	offset    int
	limit     int
	total     int
	haveTotal bool
	exhausted bool
}

// Results starts a paged sequence over this repository at the given offset
// with a fixed page size. The query filter is merged into every underlying
// listing call, reserved keys excepted.
func (r *Repository[T]) Results(offset, limit int, query map[string]string) *Result[T] {
	return &Result[T]{repo: r, query: query, offset: offset, limit: limit}
}

// Next returns the next entity in server order. ok is false once the
// sequence is exhausted; after that Next never issues another request.
// Either the buffer head is returned immediately, or exactly one page is
// fetched first. A page shorter than the limit does not end the sequence;
// only an empty page does, so draining a collection always costs one extra
// trailing request.
func (r *Result[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if r.exhausted {
		return zero, false, nil
	}
	if len(r.buf) == 0 {
		if err := r.fetch(ctx); err != nil {
			return zero, false, err
		}
		if r.exhausted {
			return zero, false, nil
		}
	}

	head := r.buf[0]
	r.buf = r.buf[1:]
	return head, true, nil
}

// fetch pulls the next page into the buffer. The offset advances only after
// a successful fetch, so a failed call can be retried by the consumer simply
// by calling Next again.
func (r *Result[T]) fetch(ctx context.Context) error {
	items, total, err := r.repo.List(ctx, r.offset, r.limit, r.query)
	if err != nil {
		return err
	}

	r.offset += r.limit
	r.buf = append(r.buf, items...)
	r.total, r.haveTotal = total, true

	if len(r.buf) == 0 {
		r.exhausted = true
	}
	return nil
}

// Len reports the server's total count for the sequence's query. If the
// total is not yet known it is resolved with a zero-limit probe (offset 0,
// limit 0) that fetches no entities and leaves the cursor and buffer
// untouched; the server must tolerate limit=0 and still emit the
// x-total-count header. The result is memoized — it is a snapshot, refreshed
// only when a real page fetch reports a newer value.
func (r *Result[T]) Len(ctx context.Context) (int, error) {
	if r.haveTotal {
		return r.total, nil
	}
	_, total, err := r.repo.List(ctx, 0, 0, r.query)
	if err != nil {
		return 0, err
	}
	r.total, r.haveTotal = total, true
	return total, nil
}

// IsEmpty reports whether the collection matching the query has no entities
// at all, resolving the total first if needed.
func (r *Result[T]) IsEmpty(ctx context.Context) (bool, error) {
	total, err := r.Len(ctx)
	if err != nil {
		return false, err
	}
	return total == 0, nil
}

// All exposes the same single-pass cursor as a range-over-func sequence.
// Iteration stops at exhaustion or on the first error, which is yielded as
// the second value. Breaking out early leaves the cursor usable for further
// Next calls.
func (r *Result[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			entity, ok, err := r.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(entity, nil) {
				return
			}
		}
	}
}
