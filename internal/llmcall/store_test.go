package llmcall

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackzampolin/tamer/internal/completion"
	"github.com/jackzampolin/tamer/internal/providers"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "calls.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestFromResult(t *testing.T) {
	temp := 0.0
	meta := completion.CallMeta{PromptKey: "classify.task", Prompt: "hello", Temperature: &temp, MaxTokens: 500}

	t.Run("success", func(t *testing.T) {
		call := FromResult(meta, completion.Result{
			Text:             "answer",
			RequestID:        "req-1",
			Provider:         "groq",
			Model:            "llama3-70b-8192",
			PromptTokens:     10,
			CompletionTokens: 5,
			Latency:          1500 * time.Millisecond,
			Attempts:         1,
		})
		if call.ID == "" || call.RequestID != "req-1" {
			t.Errorf("ids = %q, %q", call.ID, call.RequestID)
		}
		if !call.Success || call.Error != "" {
			t.Errorf("expected success, got %+v", call)
		}
		if call.LatencyMs != 1500 {
			t.Errorf("LatencyMs = %d", call.LatencyMs)
		}
		if call.PromptHash == "" || call.PromptHash == "hello" {
			t.Errorf("PromptHash = %q", call.PromptHash)
		}
		if call.Temperature == nil || *call.Temperature != 0 {
			t.Errorf("Temperature = %v", call.Temperature)
		}
	})

	t.Run("failure", func(t *testing.T) {
		cl := completion.New(completion.Config{LLM: func() *providers.MockClient {
			m := providers.NewMockClient()
			m.ShouldFail = true
			return m
		}()})
		res := cl.Complete(context.Background(), "hello", completion.Options{})

		call := FromResult(meta, res)
		if call.Success || call.Error == "" {
			t.Errorf("expected failure, got %+v", call)
		}
	})
}

func TestStore_InsertAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	temp := 0.7
	calls := []*Call{
		{ID: "a", Timestamp: base, PromptKey: "complete", Model: "m1", Temperature: &temp, Response: "one", Success: true, Attempts: 1},
		{ID: "b", Timestamp: base.Add(time.Minute), PromptKey: "classify.task", Model: "m1", Success: false, Error: "transport: boom", Attempts: 2},
		{ID: "c", Timestamp: base.Add(2 * time.Minute), PromptKey: "classify.task", Model: "m2", Stream: true, Success: true, Attempts: 1},
	}
	for _, c := range calls {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert(%s) error = %v", c.ID, err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := store.List(ctx, QueryFilter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 || got[0].ID != "c" || got[2].ID != "a" {
			t.Fatalf("List() order = %v", ids(got))
		}
		if got[2].Temperature == nil || *got[2].Temperature != 0.7 {
			t.Errorf("temperature round trip = %v", got[2].Temperature)
		}
		if !got[0].Stream {
			t.Error("stream flag lost")
		}
	})

	t.Run("filters", func(t *testing.T) {
		failed := false
		got, err := store.List(ctx, QueryFilter{Success: &failed})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != "b" || got[0].Error != "transport: boom" {
			t.Errorf("failed calls = %+v", got)
		}

		got, _ = store.List(ctx, QueryFilter{PromptKey: "classify.task", Model: "m2"})
		if len(got) != 1 || got[0].ID != "c" {
			t.Errorf("key+model filter = %v", ids(got))
		}

		after := base.Add(30 * time.Second)
		got, _ = store.List(ctx, QueryFilter{After: &after})
		if len(got) != 2 {
			t.Errorf("after filter = %v", ids(got))
		}
	})

	t.Run("limit and offset", func(t *testing.T) {
		got, err := store.List(ctx, QueryFilter{Limit: 1, Offset: 1})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != "b" {
			t.Errorf("page = %v", ids(got))
		}
	})

	t.Run("get", func(t *testing.T) {
		c, err := store.Get(ctx, "b")
		if err != nil || c == nil || c.Attempts != 2 {
			t.Fatalf("Get(b) = %+v, %v", c, err)
		}
		missing, err := store.Get(ctx, "zzz")
		if err != nil || missing != nil {
			t.Errorf("Get(missing) = %+v, %v", missing, err)
		}
	})

	t.Run("counts", func(t *testing.T) {
		counts, err := store.CountByPromptKey(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if counts["classify.task"] != 2 || counts["complete"] != 1 {
			t.Errorf("counts = %v", counts)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		if err := store.Insert(ctx, calls[0]); err == nil {
			t.Error("expected primary key violation")
		}
	})
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, &Call{ID: "x", Timestamp: time.Now(), Success: true}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	store, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	got, err := store.List(ctx, QueryFilter{})
	if err != nil || len(got) != 1 {
		t.Errorf("after reopen: %v, %v", ids(got), err)
	}
}

func TestRecorder(t *testing.T) {
	store := openTestStore(t)
	mock := providers.NewMockClient()
	mock.ResponseText = "recorded"
	client := completion.New(completion.Config{LLM: mock, Recorder: NewRecorder(store, nil)})

	ctx := context.Background()
	res := client.Complete(ctx, "prompt", completion.Options{PromptKey: "complete"})
	if !res.OK() {
		t.Fatal(res.Err())
	}

	got, err := store.List(ctx, QueryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("recorded %d calls, want 1", len(got))
	}
	if got[0].Response != "recorded" || got[0].PromptKey != "complete" || got[0].RequestID != res.RequestID {
		t.Errorf("recorded call = %+v", got[0])
	}

	// A nil store is a no-op.
	NewRecorder(nil, nil).Record(ctx, completion.CallMeta{}, res)

	if err := store.Insert(ctx, nil); err == nil || errors.Is(err, context.Canceled) {
		t.Errorf("Insert(nil) error = %v", err)
	}
}

func ids(calls []Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.ID
	}
	return out
}
