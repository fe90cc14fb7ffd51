// Package testutil provides shared mock implementations and fixtures for
// interfaces defined in pkg/reviewer. Mocks isolate the engine from any real
// analysis capability or terminal rendering in unit tests.
package testutil

import (
	"context"
	"sync"

	"github.com/revpilot/revpilot/pkg/reviewer"
	"github.com/stretchr/testify/mock"
)

// MockFileProcessor provides a mock implementation of reviewer.FileProcessor.
// Either configure expectations with testify (.On("ProcessFile", ...)) or set
// ProcessFunc for ad-hoc behavior; ProcessFunc wins when both are set. Calls
// records every path handed to the processor, in order.
type MockFileProcessor struct {
	mock.Mock
	ProcessFunc func(ctx context.Context, path string) (*reviewer.Outcome, error)

	mu    sync.Mutex
	Calls []string
}

// ProcessFile mocks the ProcessFile method.
func (m *MockFileProcessor) ProcessFile(ctx context.Context, path string) (*reviewer.Outcome, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, path)
	m.mu.Unlock()

	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, path)
	}
	args := m.Called(ctx, path)
	outcome, _ := args.Get(0).(*reviewer.Outcome)
	return outcome, args.Error(1)
}

// CallCount returns how many times ProcessFile ran.
func (m *MockFileProcessor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// RendererEvent is one recorded ProgressRenderer invocation.
type RendererEvent struct {
	Kind    string // "start", "progress", "status", "complete", "error", "cleanup"
	File    string
	Status  reviewer.Status
	Message string
	N       int // total for start, completed for progress
}

// RecordingRenderer captures the full renderer event sequence so tests can
// assert on lifecycle ordering.
type RecordingRenderer struct {
	Events []RendererEvent

	// PanicOn, when non-empty, makes the named method panic. Used to
	// verify that Cleanup still runs when an observer blows up.
	PanicOn string
}

func (r *RecordingRenderer) Start(total int) {
	r.record(RendererEvent{Kind: "start", N: total})
}

func (r *RecordingRenderer) UpdateProgress(file string, completed, total int) {
	r.record(RendererEvent{Kind: "progress", File: file, N: completed})
}

func (r *RecordingRenderer) UpdateFileStatus(file string, status reviewer.Status) {
	r.record(RendererEvent{Kind: "status", File: file, Status: status})
}

func (r *RecordingRenderer) Complete() {
	r.record(RendererEvent{Kind: "complete"})
}

func (r *RecordingRenderer) Error(file, message string) {
	r.record(RendererEvent{Kind: "error", File: file, Message: message})
}

func (r *RecordingRenderer) Cleanup() {
	r.Events = append(r.Events, RendererEvent{Kind: "cleanup"})
}

func (r *RecordingRenderer) record(ev RendererEvent) {
	r.Events = append(r.Events, ev)
	if r.PanicOn == ev.Kind {
		panic("renderer panic: " + ev.Kind)
	}
}

// Kinds returns the ordered list of recorded event kinds.
func (r *RecordingRenderer) Kinds() []string {
	kinds := make([]string, len(r.Events))
	for i, ev := range r.Events {
		kinds[i] = ev.Kind
	}
	return kinds
}
