package tuitest

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RunCmd executes cmd and returns every message produced within timeout.
// Batches are flattened and their commands run concurrently, so blocking
// ticks that outlive the timeout are simply dropped.
func RunCmd(cmd tea.Cmd, timeout time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}

	var (
		mu       sync.Mutex
		messages []tea.Msg
		wg       sync.WaitGroup
	)

	var run func(c tea.Cmd)
	run = func(c tea.Cmd) {
		defer wg.Done()
		if c == nil {
			return
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, inner := range batch {
				wg.Add(1)
				go run(inner)
			}
			return
		}
		if msg == nil {
			return
		}
		mu.Lock()
		messages = append(messages, msg)
		mu.Unlock()
	}

	done := make(chan struct{})
	wg.Add(1)
	go run(cmd)
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]tea.Msg(nil), messages...)
}

// FindMsg returns the first message of type T.
func FindMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if typed, ok := msg.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}
