package emu

// PrefetchDepth is the number of instructions the ARM7TDMI pipeline holds
// ahead of the one executing.
const PrefetchDepth = 2

// Fetched is an instruction word together with the address it came from.
type Fetched struct {
	Addr uint32
	Word uint32
}

// PrefetchQueue is the fetch side of the three-stage pipeline: up to
// PrefetchDepth fetched words plus the address of the next fetch.
type PrefetchQueue struct {
	entries [PrefetchDepth]Fetched
	head    int
	n       int
	next    uint32
}

// Len returns the number of queued words.
func (q *PrefetchQueue) Len() int {
	return q.n
}

// Full reports whether the queue holds PrefetchDepth words.
func (q *PrefetchQueue) Full() bool {
	return q.n == PrefetchDepth
}

// Next returns the address of the next fetch.
func (q *PrefetchQueue) Next() uint32 {
	return q.next
}

// Push appends a word fetched from the next fetch address and advances that
// address by width bytes. It panics when the queue is full.
func (q *PrefetchQueue) Push(word uint32, width uint32) {
	if q.Full() {
		panic("emu: prefetch queue overflow")
	}
	q.entries[(q.head+q.n)%PrefetchDepth] = Fetched{Addr: q.next, Word: word}
	q.n++
	q.next += width
}

// Pop removes and returns the oldest queued word. It panics when the queue
// is empty.
func (q *PrefetchQueue) Pop() Fetched {
	if q.n == 0 {
		panic("emu: prefetch queue underflow")
	}
	f := q.entries[q.head]
	q.head = (q.head + 1) % PrefetchDepth
	q.n--
	return f
}

// Peek returns the oldest queued word without removing it.
func (q *PrefetchQueue) Peek() (Fetched, bool) {
	if q.n == 0 {
		return Fetched{}, false
	}
	return q.entries[q.head], true
}

// Flush discards every queued word. Flushing an empty queue does nothing.
func (q *PrefetchQueue) Flush() {
	if q.n == 0 {
		return
	}
	q.head = 0
	q.n = 0
}

// Redirect flushes the queue and restarts fetching at addr.
func (q *PrefetchQueue) Redirect(addr uint32) {
	q.Flush()
	q.next = addr
}
