package sequence

import (
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"
)

// State is the orchestrator's run state.
type State string

const (
	stateIdle    = "idle"
	stateRunning = "running"
	stateBlocked = "blocked"

	// StateIdle means the cursor is the sentinel and Poll does nothing.
	StateIdle State = stateIdle
	// StateRunning means the cursor is on a step that is not holding the run.
	StateRunning State = stateRunning
	// StateBlocked means the current step is blocking and busy.
	StateBlocked State = stateBlocked
)

// Events for the run state machine.
const (
	EventStart   = "START"
	EventStop    = "STOP"
	EventBlock   = "BLOCK"
	EventUnblock = "UNBLOCK"
	EventFinish  = "FINISH"
	EventAbort   = "ABORT"
)

// machineContext is the statekit context; it records when the run last
// became blocked.
type machineContext struct {
	BlockedSince time.Time
}

// runMachine wraps the statekit interpreter for the Idle/Running/Blocked
// lifecycle.
type runMachine struct {
	mu           sync.RWMutex
	interp       *statekit.Interpreter[machineContext]
	blockedSince time.Time
}

func newRunMachine() (*runMachine, error) {
	m := &runMachine{}

	machine, err := statekit.NewMachine[machineContext]("stepwise-run").
		WithInitial(stateIdle).
		WithContext(machineContext{}).
		WithAction("markBlocked", func(_ *machineContext, _ statekit.Event) {
			m.setBlockedSince(time.Now())
		}).
		WithAction("clearBlocked", func(_ *machineContext, _ statekit.Event) {
			m.setBlockedSince(time.Time{})
		}).
		State(stateIdle).
		OnEntry("clearBlocked").
		On(EventStart).Target(stateRunning).Done().
		State(stateRunning).
		OnEntry("clearBlocked").
		On(EventBlock).Target(stateBlocked).
		On(EventStop).Target(stateIdle).
		On(EventFinish).Target(stateIdle).
		On(EventAbort).Target(stateIdle).Done().
		State(stateBlocked).
		OnEntry("markBlocked").
		On(EventUnblock).Target(stateRunning).
		On(EventStart).Target(stateRunning).
		On(EventStop).Target(stateIdle).
		On(EventFinish).Target(stateIdle).
		On(EventAbort).Target(stateIdle).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build run state machine: %w", err)
	}

	m.interp = statekit.NewInterpreter(machine)
	m.interp.Start()
	return m, nil
}

func (m *runMachine) send(event statekit.EventType) {
	m.interp.Send(statekit.Event{Type: event})
}

func (m *runMachine) state() State {
	return State(m.interp.State().Value)
}

func (m *runMachine) setBlockedSince(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockedSince = t
}

func (m *runMachine) BlockedSince() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blockedSince
}
