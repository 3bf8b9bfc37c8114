package tools

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type stubTool struct {
	name string
	call func(ctx context.Context, args json.RawMessage) (*Result, error)
}

func (s *stubTool) Name() string { return s.name }

func (s *stubTool) Definition() Definition {
	return Definition{Name: s.name, InputSchema: map[string]any{"type": "object"}}
}

func (s *stubTool) Call(ctx context.Context, args json.RawMessage) (*Result, error) {
	return s.call(ctx, args)
}

type recordingObserver struct {
	NopObserver
	mu       sync.Mutex
	started  []string
	finished map[string]bool
	failures []error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{finished: make(map[string]bool)}
}

func (o *recordingObserver) ToolStarted(_ context.Context, tool string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, tool)
}

func (o *recordingObserver) ToolFinished(_ context.Context, tool string, _ time.Duration, failed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished[tool] = failed
}

func (o *recordingObserver) ToolFailed(_ context.Context, _ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, err)
}

func newTestDispatcher(observer Observer, tools ...Tool) *Dispatcher {
	registry := NewRegistry()
	registry.Register(tools...)
	return NewDispatcher(registry, observer, zerolog.Nop())
}

func TestDispatcher_RoutesByName(t *testing.T) {
	var gotArgs string
	echo := &stubTool{name: "echo", call: func(_ context.Context, args json.RawMessage) (*Result, error) {
		gotArgs = string(args)
		return TextResult("pong"), nil
	}}

	observer := newRecordingObserver()
	d := newTestDispatcher(observer, echo)

	res := d.Dispatch(context.Background(), "echo", json.RawMessage(`{"a":1}`))

	if res.Text() != "pong" {
		t.Errorf("Expected pong, got %q", res.Text())
	}
	if gotArgs != `{"a":1}` {
		t.Errorf("Expected raw args to be passed through, got %s", gotArgs)
	}
	if failed, ok := observer.finished["echo"]; !ok || failed {
		t.Errorf("Expected successful finish event, got ok=%v failed=%v", ok, failed)
	}
}

func TestDispatcher_UnknownTool(t *testing.T) {
	observer := newRecordingObserver()
	d := newTestDispatcher(observer)

	res := d.Dispatch(context.Background(), "get_everything", nil)

	if len(res.Content) != 1 || res.Content[0].Type != "text" {
		t.Fatalf("Expected a single text block, got %+v", res.Content)
	}
	if res.Text() != "Error: Unknown tool: get_everything" {
		t.Errorf("Unexpected text %q", res.Text())
	}
	if !res.Failed() {
		t.Error("Expected result to be marked failed")
	}

	if len(observer.failures) != 1 {
		t.Fatalf("Expected one failure event, got %d", len(observer.failures))
	}
	var unknown *UnknownToolError
	if !errors.As(observer.failures[0], &unknown) {
		t.Errorf("Expected UnknownToolError, got %T", observer.failures[0])
	}
}

func TestDispatcher_NameMatchIsExact(t *testing.T) {
	tool := &stubTool{name: "analyze_wallet", call: func(context.Context, json.RawMessage) (*Result, error) {
		return TextResult("ok"), nil
	}}
	d := newTestDispatcher(nil, tool)

	res := d.Dispatch(context.Background(), "Analyze_Wallet", nil)
	if res.Text() != "Error: Unknown tool: Analyze_Wallet" {
		t.Errorf("Expected case-sensitive lookup, got %q", res.Text())
	}
}

func TestDispatcher_ToolErrorBecomesText(t *testing.T) {
	broken := &stubTool{name: "broken", call: func(context.Context, json.RawMessage) (*Result, error) {
		return nil, errors.New("boom")
	}}
	d := newTestDispatcher(nil, broken)

	res := d.Dispatch(context.Background(), "broken", nil)
	if res.Text() != "Error: boom" {
		t.Errorf("Expected generic error text, got %q", res.Text())
	}
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	panicky := &stubTool{name: "panicky", call: func(context.Context, json.RawMessage) (*Result, error) {
		panic("nil map write")
	}}
	observer := newRecordingObserver()
	d := newTestDispatcher(observer, panicky)

	res := d.Dispatch(context.Background(), "panicky", nil)
	if res.Text() != "Error: nil map write" {
		t.Errorf("Expected recovered panic text, got %q", res.Text())
	}
	if failed := observer.finished["panicky"]; !failed {
		t.Error("Expected finish event marked failed")
	}
}

func TestDispatcher_NilResult(t *testing.T) {
	empty := &stubTool{name: "empty", call: func(context.Context, json.RawMessage) (*Result, error) {
		return nil, nil
	}}
	d := newTestDispatcher(nil, empty)

	res := d.Dispatch(context.Background(), "empty", nil)
	if len(res.Content) != 1 || !res.Failed() {
		t.Errorf("Expected an error result, got %+v", res)
	}
}

func TestDispatcher_ConcurrentCalls(t *testing.T) {
	slow := &stubTool{name: "slow", call: func(_ context.Context, args json.RawMessage) (*Result, error) {
		time.Sleep(time.Millisecond)
		return TextResult(string(args)), nil
	}}
	d := newTestDispatcher(newRecordingObserver(), slow)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			args, _ := json.Marshal(map[string]int{"i": i})
			res := d.Dispatch(context.Background(), "slow", args)
			if res.Text() != string(args) {
				t.Errorf("Call %d got crossed result %q", i, res.Text())
			}
		}(i)
	}
	wg.Wait()
}
