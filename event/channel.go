package event

import (
	"errors"
	"sync"

	"github.com/vplayer/vplayer/log"
)

var (
	// ErrAlreadySubscribed is returned by Listen while another subscription is active.
	ErrAlreadySubscribed = errors.New("event channel already has a subscriber")

	// ErrDetached is returned by Listen once the owning player has been disposed.
	ErrDetached = errors.New("event channel detached")
)

// Channel delivers messages to at most one subscriber, in publish order.
//
// Publish never blocks: messages are queued and handed to the subscriber by a pump goroutine.
// Messages published while nobody listens are dropped.
type Channel struct {
	name string

	mu       sync.Mutex
	queue    []Message
	active   bool
	detached bool
	stop     chan struct{}
	wake     chan struct{}
	onListen func()
}

// New creates a channel identified by name.
func New(name string) *Channel {
	return &Channel{name: name}
}

// Name returns the channel identifier.
func (c *Channel) Name() string {
	return c.name
}

// OnListen installs a hook run after every successful Listen, outside of any channel lock.
func (c *Channel) OnListen(fn func()) {
	c.mu.Lock()
	c.onListen = fn
	c.mu.Unlock()
}

// Listen attaches the subscriber. The returned channel is closed on Cancel or Detach.
func (c *Channel) Listen() (<-chan Message, error) {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return nil, ErrDetached
	}
	if c.active {
		c.mu.Unlock()
		return nil, ErrAlreadySubscribed
	}

	out := make(chan Message)
	c.active = true
	c.queue = nil
	c.stop = make(chan struct{})
	c.wake = make(chan struct{}, 1)
	stop, wake, hook := c.stop, c.wake, c.onListen
	c.mu.Unlock()

	go c.pump(out, stop, wake)
	log.Debugf("event channel %s: subscriber attached", c.name)

	if hook != nil {
		hook()
	}
	return out, nil
}

// Subscribed reports whether a subscriber is attached.
func (c *Channel) Subscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Publish queues m for the subscriber. It reports false when the message was dropped
// because nobody listens or the channel is detached.
func (c *Channel) Publish(m Message) bool {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		log.Tracef("event channel %s: dropped %s", c.name, m.Event)
		return false
	}
	c.queue = append(c.queue, m)
	wake := c.wake
	c.mu.Unlock()

	select {
	case wake <- struct{}{}:
	default:
	}
	return true
}

// Cancel ends the current subscription. Pending messages are discarded. A later Listen is allowed.
func (c *Channel) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked()
}

// Detach ends the current subscription and refuses future ones.
func (c *Channel) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked()
	c.detached = true
	c.onListen = nil
}

func (c *Channel) endLocked() {
	if !c.active {
		return
	}
	close(c.stop)
	c.active = false
	c.queue = nil
	log.Debugf("event channel %s: subscriber detached", c.name)
}

func (c *Channel) pump(out chan<- Message, stop <-chan struct{}, wake <-chan struct{}) {
	defer close(out)

	for {
		c.mu.Lock()
		if len(c.queue) == 0 || c.stop != stop {
			c.mu.Unlock()
			select {
			case <-wake:
				continue
			case <-stop:
				return
			}
		}
		m := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		select {
		case out <- m:
		case <-stop:
			return
		}
	}
}
