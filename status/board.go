// Package status serves a read-only view of a running regulator over SSH.
package status

import (
	"sync"
	"time"
)

const maxMessages = 50

type Message struct {
	Time    time.Time
	Blocked bool
	Text    string
}

// Board keeps the current blocking state and the most recent tick
// messages. It is safe for concurrent use.
type Board struct {
	mu       sync.RWMutex
	messages []Message
	blocked  bool
	ticks    int
	now      func() time.Time
}

func NewBoard() *Board {
	return &Board{now: time.Now}
}

// Record implements regulator.Recorder.
func (b *Board) Record(blocked bool, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocked = blocked
	b.ticks++
	b.messages = append(b.messages, Message{Time: b.now(), Blocked: blocked, Text: text})
	if len(b.messages) > maxMessages {
		b.messages = b.messages[len(b.messages)-maxMessages:]
	}
}

// State returns the last recorded state and the number of records so far.
func (b *Board) State() (blocked bool, ticks int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.blocked, b.ticks
}

func (b *Board) Messages() []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}
