// Package session tracks online players, keeps their characters loaded while
// they are present, and delivers roll announcements by visibility.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// DefaultInboxSize is the message buffer of a player's Inbox.
const DefaultInboxSize = 64

// Inbox queues announcement lines for one player. The host's connection
// goroutine drains Messages.
type Inbox struct {
	owner    uuid.UUID
	messages chan string
	mu       sync.Mutex
	closed   bool
}

// NewInbox creates an Inbox for owner. A non-positive size uses DefaultInboxSize.
//
// Postcondition: Returns an Inbox with an open message channel.
func NewInbox(owner uuid.UUID, size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{
		owner:    owner,
		messages: make(chan string, size),
	}
}

// Owner returns the player the inbox belongs to.
func (i *Inbox) Owner() uuid.UUID {
	return i.owner
}

// Push enqueues msg without blocking.
//
// Postcondition: Returns an error if the inbox is closed or its buffer is full.
func (i *Inbox) Push(msg string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return fmt.Errorf("inbox %s is closed", i.owner)
	}
	select {
	case i.messages <- msg:
		return nil
	default:
		return fmt.Errorf("inbox %s buffer full", i.owner)
	}
}

// Messages returns the read-only message channel. It is closed by Close.
func (i *Inbox) Messages() <-chan string {
	return i.messages
}

// Close closes the message channel. Further pushes fail.
func (i *Inbox) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.closed {
		i.closed = true
		close(i.messages)
	}
	return nil
}

// IsClosed reports whether the inbox has been closed.
func (i *Inbox) IsClosed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}
