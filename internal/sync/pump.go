// Package sync bridges engine events and a day-change clock into the Bubble
// Tea runtime.
package sync

import (
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/onetask/internal/engine"
)

// DefaultInterval is how often the pump checks for a new calendar day.
const DefaultInterval = time.Minute

// EventMsg is a tea.Msg carrying one engine event.
type EventMsg struct {
	Event engine.Event
}

// DayChangedMsg is a tea.Msg sent when the local calendar day rolls over.
type DayChangedMsg struct {
	At time.Time
}

// Pump forwards engine events and day changes to the UI. Change events are
// coalesced while one is still queued; every other message is kept.
type Pump struct {
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	mu       gosync.Mutex
	running  bool

	qmu            gosync.Mutex
	queue          []tea.Msg
	changedPending bool
	ready          chan struct{}
}

// New creates a pump that checks the clock every interval. now defaults to
// time.Now.
func New(interval time.Duration, now func() time.Time) *Pump {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if now == nil {
		now = time.Now
	}
	return &Pump{
		interval: interval,
		now:      now,
		stopCh:   make(chan struct{}),
		ready:    make(chan struct{}, 1),
	}
}

// Publish queues an engine event for the UI. It never blocks; use it as an
// engine subscriber.
func (p *Pump) Publish(ev engine.Event) {
	p.sendResult(EventMsg{Event: ev})
}

// Start returns a tea.Cmd that starts the clock goroutine and subscribes to
// results.
func (p *Pump) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.watchDay(dayOf(p.now()))

	return p.waitForResult()
}

// Stop halts the clock goroutine.
func (p *Pump) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// watchDay sends a DayChangedMsg whenever the local date differs from the
// previous check, starting from last.
func (p *Pump) watchDay(last string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			now := p.now()
			if d := dayOf(now); d != last {
				last = d
				p.sendResult(DayChangedMsg{At: now})
			}
		}
	}
}

func dayOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// sendResult queues msg and wakes a waiting reader. It never blocks. A
// change event is skipped while another one is still queued.
func (p *Pump) sendResult(msg tea.Msg) {
	p.qmu.Lock()
	if isChanged(msg) {
		if p.changedPending {
			p.qmu.Unlock()
			return
		}
		p.changedPending = true
	}
	p.queue = append(p.queue, msg)
	p.qmu.Unlock()

	select {
	case p.ready <- struct{}{}:
	default:
	}
}

// next pops the oldest queued message.
func (p *Pump) next() (tea.Msg, bool) {
	p.qmu.Lock()
	defer p.qmu.Unlock()

	if len(p.queue) == 0 {
		return nil, false
	}
	msg := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	if isChanged(msg) {
		p.changedPending = false
	}
	return msg, true
}

func isChanged(msg tea.Msg) bool {
	em, ok := msg.(EventMsg)
	return ok && em.Event.Kind == engine.EventChanged
}

// waitForResult returns a tea.Cmd that waits for the next queued message.
func (p *Pump) waitForResult() tea.Cmd {
	return func() tea.Msg {
		for {
			if msg, ok := p.next(); ok {
				return msg
			}
			<-p.ready
		}
	}
}

// WaitForNext returns a tea.Cmd that waits for the next message. Call it
// after handling an EventMsg or DayChangedMsg to keep listening.
func (p *Pump) WaitForNext() tea.Cmd {
	return p.waitForResult()
}
