package script

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// Script is one loaded Lua observer.
//
// gopher-lua states are not goroutine-safe, so every entry into the state
// holds mu. Callbacks arrive on whatever goroutine fires the handler.
type Script struct {
	id      uuid.UUID
	name    string
	log     zerolog.Logger
	timeout time.Duration
	maxFail int

	mu     sync.Mutex
	L      *lua.LState
	subs   []string
	closed atomic.Bool

	calls       atomic.Uint64
	failures    atomic.Uint64
	consecutive int
}

func newScript(name string, h *Host) *Script {
	id := uuid.New()
	s := &Script{
		id:      id,
		name:    name,
		log:     h.log.With().Str("script", name).Str("script_id", id.String()).Logger(),
		timeout: h.timeout,
		maxFail: h.maxFailures,
		L:       newState(),
	}
	s.install(h)
	return s
}

// install exposes the events table, log and SCRIPT_ID.
func (s *Script) install(h *Host) {
	L := s.L

	logFn := L.NewFunction(func(L *lua.LState) int {
		s.log.Info().Msg(joinArgs(L))
		return 0
	})
	L.SetGlobal("log", logFn)
	L.SetGlobal("print", logFn)
	L.SetGlobal("SCRIPT_ID", lua.LString(s.id.String()))

	events := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"on": func(L *lua.LState) int {
			name := L.CheckString(1)
			fn := L.CheckFunction(2)
			if err := h.bind(s, name, fn); err != nil {
				L.RaiseError("%v", err)
				return 0
			}
			s.subs = append(s.subs, name)
			return 0
		},
		"names": func(L *lua.LState) int {
			t := L.NewTable()
			for _, n := range Names() {
				t.Append(lua.LString(n))
			}
			L.Push(t)
			return 1
		},
	})
	L.SetGlobal("events", events)
}

// ID returns the script's unique id.
func (s *Script) ID() uuid.UUID { return s.id }

// Name returns the name the script was loaded under.
func (s *Script) Name() string { return s.name }

// Alive reports whether the script is open. It is the liveness probe for
// every subscription the script made.
func (s *Script) Alive() bool { return !s.closed.Load() }

// Calls returns the number of callbacks run.
func (s *Script) Calls() uint64 { return s.calls.Load() }

// Failures returns the number of callbacks that raised an error or timed out.
func (s *Script) Failures() uint64 { return s.failures.Load() }

// Subscriptions returns the category names subscribed to, in order.
func (s *Script) Subscriptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.subs...)
}

// Close kills the script's subscriptions and releases its Lua state.
func (s *Script) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.L.Close()
}

// run executes a chunk at load time.
func (s *Script) run(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrScriptClosed
	}

	fn, err := s.L.LoadString(code)
	if err != nil {
		return err
	}
	cancel := s.withTimeout()
	defer cancel()
	return s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
}

// call runs fn with the argument built by arg and returns its first result.
func (s *Script) call(category string, fn *lua.LFunction, arg func(*lua.LState) lua.LValue) (lua.LValue, error) {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return lua.LNil, ErrScriptClosed
	}

	s.calls.Add(1)
	cancel := s.withTimeout()
	err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, arg(s.L))
	cancel()

	ret := lua.LValue(lua.LNil)
	disable := false
	if err == nil {
		ret = s.L.Get(-1)
		s.L.Pop(1)
		s.consecutive = 0
	} else {
		s.failures.Add(1)
		s.consecutive++
		disable = s.maxFail > 0 && s.consecutive >= s.maxFail
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Str("event", category).Msg("script callback failed")
		if disable {
			s.log.Error().Int("failures", s.maxFail).Msg("script disabled")
			s.Close()
		}
		return lua.LNil, &Error{Script: s.name, Err: err}
	}
	return ret, nil
}

// withTimeout bounds the next Lua call. The returned func must be called
// once the call returns.
func (s *Script) withTimeout() func() {
	if s.timeout <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.L.SetContext(ctx)
	return func() {
		s.L.RemoveContext()
		cancel()
	}
}

func joinArgs(L *lua.LState) string {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	return strings.Join(parts, " ")
}

// String implements fmt.Stringer.
func (s *Script) String() string {
	return fmt.Sprintf("%s (%s)", s.name, s.id)
}
