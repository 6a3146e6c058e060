package world

// QueueKind selects which player queue a script request lands in.
type QueueKind int

const (
	QueueNormal QueueKind = iota
	QueueLong
	QueueEngine
	QueueWeak
	QueueStrong
	QueueSoft
)

// QueueRequest is a deferred script call. ID is the type the queue
// handler is registered under.
type QueueRequest struct {
	Kind    QueueKind
	ID      int
	Args    []int
	Delay   int
	LastInt int
}

// TimerKind separates timers that respect the busy state from soft timers
// that always fire.
type TimerKind int

const (
	TimerNormal TimerKind = iota
	TimerSoft
)

type Timer struct {
	Kind     TimerKind
	ID       int
	Interval int
	Clock    int
}

// drainQueue walks q in order, counting down delays and handing due requests
// to run. A request stays queued when run reports false. The returned slice
// reuses q's backing array.
func drainQueue(q []*QueueRequest, run func(req *QueueRequest) bool) []*QueueRequest {
	kept := q[:0]
	for _, req := range q {
		if req.Delay > 0 {
			req.Delay--
			kept = append(kept, req)
			continue
		}
		if !run(req) {
			kept = append(kept, req)
		}
	}
	clear(q[len(kept):])
	return kept
}
