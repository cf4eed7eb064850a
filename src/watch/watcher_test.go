package watch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"trendwatch/src/broker"
	"trendwatch/src/contracts"
	"trendwatch/src/logger"
	"trendwatch/src/provider"
	"trendwatch/src/result"
	"trendwatch/src/store"
)

// scriptedProvider serves a mutable newest-first build list.
type scriptedProvider struct {
	builds []*provider.Build // index 0 is the newest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) ParseURL(url string) (*provider.BuildRef, error) {
	return nil, provider.ErrInvalidURL
}

func (p *scriptedProvider) FetchBuild(ctx context.Context, ref *provider.BuildRef) (*provider.Build, error) {
	return p.builds[len(p.builds)-1], nil
}

func (p *scriptedProvider) FetchPredecessor(ctx context.Context, build *provider.Build) (*provider.Build, error) {
	for i, b := range p.builds {
		if b.Number == build.Number {
			if i+1 < len(p.builds) {
				return p.builds[i+1], nil
			}
			return nil, nil
		}
	}
	return nil, provider.ErrBuildNotFound
}

func (p *scriptedProvider) FetchLatest(ctx context.Context, build *provider.Build) (*provider.Build, error) {
	return p.builds[0], nil
}

// push prepends a new build to the scripted history.
func (p *scriptedProvider) push(number int, outcome result.Outcome, finished bool) {
	p.builds = append([]*provider.Build{{
		ID:       "b",
		Number:   number,
		JobKey:   "acme/deploy",
		URL:      "https://ci.example.com/acme/deploy/42",
		Outcome:  outcome,
		Finished: finished,
	}}, p.builds...)
}

// capturingBroker records published messages per topic.
type capturingBroker struct {
	published map[string][]broker.Message
}

func newCapturingBroker() *capturingBroker {
	return &capturingBroker{published: make(map[string][]broker.Message)}
}

func (b *capturingBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.published[topic] = append(b.published[topic], broker.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
	return nil
}

func (b *capturingBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan broker.Message, error) {
	ch := make(chan broker.Message)
	close(ch)
	return ch, nil
}

func (b *capturingBroker) Close() error { return nil }

func (b *capturingBroker) trends(t *testing.T) []contracts.TrendEvent {
	t.Helper()
	var events []contracts.TrendEvent
	for _, msg := range b.published[contracts.TopicTrends] {
		var ev contracts.TrendEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			t.Fatalf("unmarshal trend event: %v", err)
		}
		events = append(events, ev)
	}
	return events
}

func newTestWatcher(prov provider.Provider, opts ...Option) (*Watcher, *capturingBroker, store.Store) {
	brk := newCapturingBroker()
	s := store.NewMemoryStore()
	w := NewWatcher(prov, s, brk, logger.NewSilentLogger(), opts...)
	return w, brk, s
}

func TestProcessPublishesTrend(t *testing.T) {
	prov := &scriptedProvider{}
	prov.push(1, result.Failure, true)
	prov.push(2, result.Success, true)
	w, brk, s := newTestWatcher(prov)
	ctx := context.Background()

	for i := len(prov.builds) - 1; i >= 0; i-- {
		if err := w.process(ctx, prov.builds[i]); err != nil {
			t.Fatalf("process #%d: %v", prov.builds[i].Number, err)
		}
	}

	events := brk.trends(t)
	if len(events) != 2 {
		t.Fatalf("published %d trend events, want 2", len(events))
	}
	if events[0].Trend != "FAILURE" {
		t.Errorf("first trend = %q, want FAILURE", events[0].Trend)
	}
	if events[1].Trend != "FIXED" {
		t.Errorf("second trend = %q, want FIXED", events[1].Trend)
	}
	if events[1].PreviousOutcome != "FAILURE" || events[1].PreviousNumber != 1 {
		t.Errorf("second trend previous = %s #%d, want FAILURE #1",
			events[1].PreviousOutcome, events[1].PreviousNumber)
	}

	rec, err := s.GetBuild(ctx, "acme/deploy", 2)
	if err != nil {
		t.Fatalf("GetBuild: %v", err)
	}
	if rec.Trend != result.TrendFixed {
		t.Errorf("stored trend = %v, want %v", rec.Trend, result.TrendFixed)
	}
}

func TestProcessAlwaysAnnouncesCompletion(t *testing.T) {
	prov := &scriptedProvider{}
	prov.push(1, result.Success, true)
	w, brk, _ := newTestWatcher(prov, WithChangesOnly())

	if err := w.process(context.Background(), prov.builds[0]); err != nil {
		t.Fatalf("process: %v", err)
	}

	if got := len(brk.published[contracts.TopicBuildsCompleted]); got != 1 {
		t.Errorf("published %d completion messages, want 1", got)
	}
}

func TestChangesOnlySuppressesRepeats(t *testing.T) {
	tests := []struct {
		name       string
		outcomes   []result.Outcome // oldest first
		wantTrends []string
	}{
		{
			name:       "repeat successes collapse",
			outcomes:   []result.Outcome{result.Failure, result.Success, result.Success},
			wantTrends: []string{"FAILURE", "FIXED"},
		},
		{
			name:       "repeat failures collapse",
			outcomes:   []result.Outcome{result.Failure, result.Failure, result.Failure},
			wantTrends: []string{"FAILURE"},
		},
		{
			name:       "every transition is kept",
			outcomes:   []result.Outcome{result.Success, result.Unstable, result.Failure},
			wantTrends: []string{"UNSTABLE", "FAILURE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov := &scriptedProvider{}
			for i, o := range tt.outcomes {
				prov.push(i+1, o, true)
			}
			w, brk, _ := newTestWatcher(prov, WithChangesOnly())
			ctx := context.Background()

			for i := len(prov.builds) - 1; i >= 0; i-- {
				if err := w.process(ctx, prov.builds[i]); err != nil {
					t.Fatalf("process #%d: %v", prov.builds[i].Number, err)
				}
			}

			events := brk.trends(t)
			if len(events) != len(tt.wantTrends) {
				t.Fatalf("published %d trend events, want %d", len(events), len(tt.wantTrends))
			}
			for i, want := range tt.wantTrends {
				if events[i].Trend != want {
					t.Errorf("events[%d].Trend = %q, want %q", i, events[i].Trend, want)
				}
			}
		})
	}
}

func TestPollBackfillsMissedBuilds(t *testing.T) {
	prov := &scriptedProvider{}
	prov.push(1, result.Success, true)
	w, brk, _ := newTestWatcher(prov)
	ctx := context.Background()

	// Three builds finished since the last poll, the middle one canceled.
	prov.push(2, result.Failure, true)
	prov.push(3, result.Aborted, true)
	prov.push(4, result.Success, true)

	lastDone, err := w.poll(ctx, prov.builds[0], 1)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if lastDone != 4 {
		t.Errorf("lastDone = %d, want 4", lastDone)
	}

	events := brk.trends(t)
	if len(events) != 3 {
		t.Fatalf("published %d trend events, want 3", len(events))
	}
	want := []string{"FAILURE", "ABORTED", "FIXED"}
	for i, trend := range want {
		if events[i].Trend != trend {
			t.Errorf("events[%d].Trend = %q, want %q", i, events[i].Trend, trend)
		}
	}
}

func TestPollSkipsRunningLatest(t *testing.T) {
	prov := &scriptedProvider{}
	prov.push(1, result.Success, true)
	prov.push(2, result.Failure, true)
	prov.push(3, 0, false)
	w, brk, _ := newTestWatcher(prov)

	lastDone, err := w.poll(context.Background(), prov.builds[0], 1)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if lastDone != 2 {
		t.Errorf("lastDone = %d, want 2", lastDone)
	}
	if got := len(brk.trends(t)); got != 1 {
		t.Errorf("published %d trend events, want 1", got)
	}
}

func TestPollRevisitsOverlappingRuns(t *testing.T) {
	prov := &scriptedProvider{}
	prov.push(1, result.Success, true)
	w, brk, _ := newTestWatcher(prov)
	ctx := context.Background()

	// Runs overlap: build 2 is still going when build 3 finishes.
	prov.push(2, 0, false)
	prov.push(3, result.Success, true)

	lastDone, err := w.poll(ctx, prov.builds[0], 1)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	// The running build pins the mark so it is not leapfrogged.
	if lastDone != 1 {
		t.Errorf("lastDone = %d, want 1 while build 2 runs", lastDone)
	}
	events := brk.trends(t)
	if len(events) != 1 || events[0].Number != 3 {
		t.Fatalf("events = %+v, want only build 3", events)
	}

	// Build 2 finishes after its successor did.
	prov.builds[1].Outcome = result.Failure
	prov.builds[1].Finished = true

	lastDone, err = w.poll(ctx, prov.builds[0], lastDone)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if lastDone != 3 {
		t.Errorf("lastDone = %d, want 3", lastDone)
	}

	events = brk.trends(t)
	if len(events) != 2 {
		t.Fatalf("published %d trend events, want 2 (build 3 must not repeat)", len(events))
	}
	if events[1].Number != 2 || events[1].Trend != "FAILURE" {
		t.Errorf("second event = #%d %s, want #2 FAILURE", events[1].Number, events[1].Trend)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	prov := &scriptedProvider{}
	prov.push(1, result.Success, true)
	w, _, _ := newTestWatcher(prov, WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx, &provider.BuildRef{Provider: "scripted", BuildID: "1"})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
