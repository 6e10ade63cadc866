package application

import "sync"

// slotLock hands out one mutex per (room, date) key so that concurrent
// creation attempts for the same slot serialize ahead of the conflict check.
// Creation for different rooms or dates shares nothing and proceeds in
// parallel. Mutexes are retained per key; the key space is bounded by the
// distinct (room, date) pairs a deployment ever books.
type slotLock struct {
	mu    sync.Mutex
	slots map[string]*sync.Mutex
}

func newSlotLock() *slotLock {
	return &slotLock{slots: make(map[string]*sync.Mutex)}
}

func (l *slotLock) forKey(roomID, date string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := roomID + "\x00" + date
	m, ok := l.slots[key]
	if !ok {
		m = &sync.Mutex{}
		l.slots[key] = m
	}
	return m
}
