// Package mocks provides test doubles for testing.
package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// CommandRunner is a thread-safe test double for ports.CommandRunner.
type CommandRunner struct {
	mu      sync.RWMutex
	results map[string]ports.CommandResult
	errors  map[string]error
	hooks   map[string]func()
	calls   []ports.CommandCall
}

// NewCommandRunner creates a new CommandRunner mock.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		results: make(map[string]ports.CommandResult),
		errors:  make(map[string]error),
		hooks:   make(map[string]func()),
		calls:   make([]ports.CommandCall, 0),
	}
}

// AddResult registers an expected command and its result.
func (m *CommandRunner) AddResult(command string, args []string, result ports.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[buildKey(command, args)] = result
}

// AddError registers an expected command that should return an error.
func (m *CommandRunner) AddError(command string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(command, args)] = err
}

// AddHook registers fn to run before the command's result is returned.
// Tests use it to hold an asynchronous command open.
func (m *CommandRunner) AddHook(command string, args []string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[buildKey(command, args)] = fn
}

// Run executes a mock command.
func (m *CommandRunner) Run(_ context.Context, command string, args ...string) (ports.CommandResult, error) {
	key := buildKey(command, args)

	m.mu.Lock()
	m.calls = append(m.calls, ports.CommandCall{Command: command, Args: args})
	hook := m.hooks[key]
	m.mu.Unlock()

	if hook != nil {
		hook()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.errors[key]; ok {
		return ports.CommandResult{}, err
	}
	if result, ok := m.results[key]; ok {
		return result, nil
	}

	return ports.CommandResult{}, fmt.Errorf("no mock result for command: %s %v", command, args)
}

// Calls returns all recorded command invocations.
func (m *CommandRunner) Calls() []ports.CommandCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]ports.CommandCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns how many times command with args was run.
func (m *CommandRunner) CallCount(command string, args ...string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := buildKey(command, args)
	n := 0
	for _, c := range m.calls {
		if buildKey(c.Command, c.Args) == key {
			n++
		}
	}
	return n
}

// Reset clears all registered results, errors, hooks, and recorded calls.
func (m *CommandRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = make(map[string]ports.CommandResult)
	m.errors = make(map[string]error)
	m.hooks = make(map[string]func())
	m.calls = make([]ports.CommandCall, 0)
}

func buildKey(command string, args []string) string {
	return command + ":" + strings.Join(args, ":")
}

var _ ports.CommandRunner = (*CommandRunner)(nil)

// BinaryLocator is a test double for ports.BinaryLocator.
type BinaryLocator struct {
	mu       sync.RWMutex
	binaries map[string]string
}

// NewBinaryLocator creates a locator that finds the given binaries under /usr/bin.
func NewBinaryLocator(names ...string) *BinaryLocator {
	l := &BinaryLocator{binaries: make(map[string]string)}
	for _, n := range names {
		l.binaries[n] = "/usr/bin/" + n
	}
	return l
}

// Add makes name resolvable.
func (l *BinaryLocator) Add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.binaries[name] = "/usr/bin/" + name
}

// LookPath resolves a registered binary.
func (l *BinaryLocator) LookPath(name string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if p, ok := l.binaries[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}

var _ ports.BinaryLocator = (*BinaryLocator)(nil)
