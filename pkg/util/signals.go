package util

import "sync"

// SignalHandler receives the emitting object plus signal-specific params.
type SignalHandler func(sender any, params ...any)

// Signals is a minimal in-process signal bus. Handlers run synchronously in
// emit order; anything slow should spawn its own goroutine.
type Signals struct {
	mu       sync.RWMutex
	handlers map[string][]SignalHandler
}

var sig = &Signals{handlers: make(map[string][]SignalHandler)}

// Sig returns the process-wide signal bus.
func Sig() *Signals { return sig }

func (s *Signals) Connect(name string, h SignalHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = append(s.handlers[name], h)
}

func (s *Signals) Emit(name string, sender any, params ...any) {
	s.mu.RLock()
	hs := make([]SignalHandler, len(s.handlers[name]))
	copy(hs, s.handlers[name])
	s.mu.RUnlock()
	for _, h := range hs {
		h(sender, params...)
	}
}

// Reset drops all registered handlers. Test helper.
func (s *Signals) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = make(map[string][]SignalHandler)
}
