package provider

import (
	"context"
	"errors"
	"testing"

	"trendwatch/src/result"
)

// fakeProvider serves a fixed newest-first history and counts predecessor
// lookups so tests can assert the walk is lazy.
type fakeProvider struct {
	builds  []*Build // index 0 is the newest
	lookups int
	failAt  int // build number whose predecessor lookup fails; 0 = never
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) ParseURL(url string) (*BuildRef, error) {
	return nil, ErrInvalidURL
}

func (p *fakeProvider) FetchBuild(ctx context.Context, ref *BuildRef) (*Build, error) {
	return p.builds[0], nil
}

func (p *fakeProvider) FetchPredecessor(ctx context.Context, build *Build) (*Build, error) {
	p.lookups++
	if p.failAt != 0 && build.Number == p.failAt {
		return nil, ErrNetworkTimeout
	}
	for i, b := range p.builds {
		if b.Number == build.Number {
			if i+1 < len(p.builds) {
				return p.builds[i+1], nil
			}
			return nil, nil
		}
	}
	return nil, ErrBuildNotFound
}

func (p *fakeProvider) FetchLatest(ctx context.Context, build *Build) (*Build, error) {
	return p.builds[0], nil
}

func fakeHistory(outcomes ...result.Outcome) *fakeProvider {
	p := &fakeProvider{}
	for i, o := range outcomes {
		p.builds = append(p.builds, &Build{
			ID:       "b",
			Number:   len(outcomes) - i,
			JobKey:   "acme/deploy",
			Outcome:  o,
			Finished: true,
		})
	}
	return p
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name       string
		history    []result.Outcome // newest first
		want       result.Trend
		wantPrev   int // build number of the meaningful predecessor; 0 = none
		maxLookups int
	}{
		{"fixed after failure", []result.Outcome{result.Success, result.Failure}, result.TrendFixed, 1, 1},
		{"still failing", []result.Outcome{result.Failure, result.Failure, result.Success}, result.TrendStillFailing, 2, 1},
		{"skips aborted", []result.Outcome{result.Success, result.Aborted, result.Unstable}, result.TrendFixed, 1, 2},
		{"first build", []result.Outcome{result.Unstable}, result.TrendUnstable, 0, 1},
		{"aborted needs no lookup", []result.Outcome{result.Aborted, result.Failure}, result.TrendAborted, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov := fakeHistory(tt.history...)
			trend, prev, err := Trend(context.Background(), prov, prov.builds[0])
			if err != nil {
				t.Fatalf("Trend() unexpected error: %v", err)
			}
			if trend != tt.want {
				t.Errorf("Trend() = %v, want %v", trend, tt.want)
			}
			if tt.wantPrev == 0 {
				if prev != nil {
					t.Errorf("previous = %v, want nil", prev)
				}
			} else if prev == nil || prev.Number != tt.wantPrev {
				t.Errorf("previous = %v, want build #%d", prev, tt.wantPrev)
			}
			if prov.lookups > tt.maxLookups {
				t.Errorf("walk made %d lookups, want at most %d", prov.lookups, tt.maxLookups)
			}
		})
	}
}

func TestTrendLookupFailure(t *testing.T) {
	prov := fakeHistory(result.Success, result.Aborted, result.Failure)
	prov.failAt = 2 // predecessor lookup below the aborted build fails

	_, _, err := Trend(context.Background(), prov, prov.builds[0])
	if err == nil {
		t.Fatal("Trend() expected error when a history lookup fails, got nil")
	}
	if !errors.Is(err, ErrNetworkTimeout) {
		t.Errorf("Trend() error = %v, want ErrNetworkTimeout", err)
	}
}

func TestTrendRunningBuild(t *testing.T) {
	prov := fakeHistory(result.Success)
	prov.builds[0].Finished = false

	_, _, err := Trend(context.Background(), prov, prov.builds[0])
	if !errors.Is(err, result.ErrMissingOutcome) {
		t.Errorf("Trend() error = %v, want ErrMissingOutcome", err)
	}
}
