package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/go-grunt/grunt"
)

// DefaultWindow is the number of in-flight rows a Publish buffers before
// applying backpressure to its producer
const DefaultWindow = 1024

// Publish is a reference-counted shared handle over a Source. It connects
// to the upstream exactly once, on the first subscription, and replays the
// identical event sequence (rows, then completion or a single error) to
// every subscriber regardless of subscribe timing, so upstream side effects
// like opening a file happen once per node no matter the fan-out.
//
// The expected subscriber count comes from the plan's fan-out for the node.
// Until every expected subscriber has attached the full event log is
// retained for replay; afterwards the log is compacted below the slowest
// subscriber's cursor and the producer blocks while the in-flight window
// exceeds the configured bound. The upstream connection is torn down when
// the live subscriber count returns to zero after all expected subscribers
// were seen, or on terminal completion/error.
type Publish struct {
	mu       sync.Mutex
	cond     *sync.Cond
	source   Source
	expected int
	window   int

	started bool
	cancel  context.CancelFunc

	base int // absolute index of log[0]
	log  []*grunt.Row
	done bool
	err  error

	attached int
	live     int
	cursors  map[int]int
	nextID   int
}

// NewPublish wraps source in a multicast handle for the given expected
// subscriber count. expected <= 0 means the fan-out is unknown: the log is
// never compacted and teardown happens the first time the live count
// returns to zero. window <= 0 selects DefaultWindow.
func NewPublish(source Source, expected int, window int) *Publish {
	if window <= 0 {
		window = DefaultWindow
	}
	p := &Publish{
		source:   source,
		expected: expected,
		window:   window,
		cursors:  make(map[int]int),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Source returns the subscription entry point of this Publish as a Source
func (p *Publish) Source() Source { return p.Stream }

// Connected returns true iff the upstream connection has been made
func (p *Publish) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Stream subscribes to the shared upstream, replaying the full event
// sequence from the beginning. The first subscriber triggers the upstream
// connection.
func (p *Publish) Stream(ctx context.Context, emit EmitFunc) error {
	p.mu.Lock()
	if !p.started {
		p.connectLocked()
	}
	id := p.nextID
	p.nextID++
	p.attached++
	p.live++
	cursor := p.base
	p.cursors[id] = cursor
	p.mu.Unlock()

	// wake the wait loop if the subscriber's context is cancelled
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.cond.Broadcast()
			p.mu.Unlock()
		case <-stop:
		}
	}()

	for {
		p.mu.Lock()
		for cursor >= p.base+len(p.log) && !p.done && ctx.Err() == nil {
			p.cond.Wait()
		}
		if err := ctx.Err(); err != nil {
			p.mu.Unlock()
			return p.unsubscribe(id, err)
		}
		if cursor >= p.base+len(p.log) {
			err := p.err
			p.mu.Unlock()
			return p.unsubscribe(id, err)
		}
		row := p.log[cursor-p.base]
		cursor++
		p.cursors[id] = cursor
		p.compactLocked()
		p.cond.Broadcast() // the producer may be blocked on the window
		p.mu.Unlock()
		if err := emit(row); err != nil {
			return p.unsubscribe(id, err)
		}
	}
}

func (p *Publish) connectLocked() {
	p.started = true
	pctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.run(pctx)
}

func (p *Publish) run(ctx context.Context) {
	// wake the backpressure wait loop on teardown; run always cancels ctx
	// before returning, so the watcher cannot outlive the producer
	go func() {
		<-ctx.Done()
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	}()
	err := p.source(ctx, func(row *grunt.Row) error {
		p.mu.Lock()
		for p.windowFullLocked() && ctx.Err() == nil {
			p.cond.Wait()
		}
		if ctx.Err() != nil {
			p.mu.Unlock()
			return ErrStopped
		}
		p.log = append(p.log, row)
		p.cond.Broadcast()
		p.mu.Unlock()
		return nil
	})
	p.mu.Lock()
	p.done = true
	if err != nil && !errors.Is(err, ErrStopped) && ctx.Err() == nil {
		p.err = err
	}
	cancel := p.cancel
	p.cond.Broadcast()
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (p *Publish) unsubscribe(id int, result error) error {
	p.mu.Lock()
	delete(p.cursors, id)
	p.live--
	cancel := context.CancelFunc(nil)
	if p.live == 0 && p.attached >= p.expected {
		cancel = p.cancel
	}
	p.cond.Broadcast()
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return result
}

func (p *Publish) windowFullLocked() bool {
	if p.expected <= 0 || p.attached < p.expected || len(p.cursors) == 0 {
		return false
	}
	return p.base+len(p.log)-p.minCursorLocked() >= p.window
}

func (p *Publish) minCursorLocked() int {
	min := p.base + len(p.log)
	for _, c := range p.cursors {
		if c < min {
			min = c
		}
	}
	return min
}

func (p *Publish) compactLocked() {
	if p.expected <= 0 || p.attached < p.expected || len(p.cursors) == 0 {
		return
	}
	min := p.minCursorLocked()
	if min > p.base {
		p.log = append([]*grunt.Row(nil), p.log[min-p.base:]...)
		p.base = min
	}
}
