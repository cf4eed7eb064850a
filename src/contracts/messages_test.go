package contracts

import (
	"testing"

	"trendwatch/src/result"
)

func TestTrendEventSubject(t *testing.T) {
	event := TrendEvent{
		JobKey:      "acme/deploy",
		Number:      42,
		Trend:       result.TrendStillFailing.String(),
		Description: result.TrendStillFailing.Description(),
	}

	if got, want := event.Subject(), "acme/deploy #42: Still failing"; got != want {
		t.Errorf("Subject() = %q, want %q", got, want)
	}
	if got, want := event.Headline(), "STILL FAILING"; got != want {
		t.Errorf("Headline() = %q, want %q", got, want)
	}
}

func TestTrendEventTrendValue(t *testing.T) {
	event := TrendEvent{Trend: "NOW_UNSTABLE"}
	trend, err := event.TrendValue()
	if err != nil {
		t.Fatalf("TrendValue() unexpected error: %v", err)
	}
	if trend != result.TrendNowUnstable {
		t.Errorf("TrendValue() = %v, want TrendNowUnstable", trend)
	}

	if _, err := (TrendEvent{Trend: "bogus"}).TrendValue(); err == nil {
		t.Error("TrendValue() expected error for unknown trend name, got nil")
	}
}
