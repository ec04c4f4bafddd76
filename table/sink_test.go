package table_test

import (
	"testing"
	"time"

	"github.com/uwan-net/dflood/packet"
	"github.com/uwan-net/dflood/table"
)

func TestSinkTableCreate(t *testing.T) {
	st := table.NewSinkTable()
	now := time.Now()
	e := st.Create(0, 0, 0, now, 2500*time.Millisecond)
	if e.MinHops != 1 || e.TentativeMinHops != 0 || !e.Scheduled {
		t.Errorf("unexpected new entry: %+v", e)
	}
	if got, ok := st.Get(0); !ok || got != e {
		t.Errorf("Get mismatch: %+v", got)
	}
}

func TestSinkTableApplyNewerSeqLargeBackoffWhenWorse(t *testing.T) {
	st := table.NewSinkTable()
	now := time.Now()
	st.Create(0, 0, 1, now, time.Second) // min_hops becomes 2

	e := st.ApplyNewerSeq(0, 1, 3, now, time.Second, 5*time.Second)
	if e.MinHops != 2 {
		t.Errorf("min_hops should stay untouched at forward time, got %d", e.MinHops)
	}
	if e.TentativeMinHops != 3 {
		t.Errorf("expected tentative_min_hops 3, got %d", e.TentativeMinHops)
	}
	wantTime := now.Add(5 * time.Second)
	if !e.ForwardingTime.Equal(wantTime) {
		t.Errorf("expected large backoff forwarding time %v, got %v", wantTime, e.ForwardingTime)
	}
}

func TestSinkTableApplyNewerSeqSmallBackoffWhenBetter(t *testing.T) {
	st := table.NewSinkTable()
	now := time.Now()
	st.Create(0, 0, 3, now, time.Second) // min_hops becomes 4

	e := st.ApplyNewerSeq(0, 1, 1, now, 2500*time.Millisecond, 5*time.Second)
	wantTime := now.Add(2500 * time.Millisecond)
	if !e.ForwardingTime.Equal(wantTime) {
		t.Errorf("expected small backoff forwarding time %v, got %v", wantTime, e.ForwardingTime)
	}
}

func TestSinkTableCommitPromotesMinHops(t *testing.T) {
	st := table.NewSinkTable()
	now := time.Now()
	st.Create(0, 0, 0, now, time.Second)

	e := st.Commit(0)
	if e.Scheduled {
		t.Error("expected scheduled=false after commit")
	}
	if e.MinHops != e.TentativeMinHops+1 {
		t.Errorf("expected min_hops = tentative+1, got %d vs %d", e.MinHops, e.TentativeMinHops)
	}
	if !e.ForwardingTime.IsZero() {
		t.Error("expected forwarding time cleared")
	}
}

func TestSinkTableDueForForward(t *testing.T) {
	st := table.NewSinkTable()
	now := time.Now()
	st.Create(0, 0, 0, now, -time.Second) // already due
	due := st.DueForForward(now)
	if len(due) != 1 || due[0] != packet.Addr(0) {
		t.Errorf("expected sink 0 due, got %v", due)
	}
}

func TestSinkTableAge(t *testing.T) {
	st := table.NewSinkTable()
	now := time.Now()
	st.Create(0, 0, 0, now, time.Second)

	purged := st.Age(now.Add(51*time.Second), 50*time.Second)
	if len(purged) != 1 {
		t.Errorf("expected one purged sink, got %v", purged)
	}
	if st.Len() != 0 {
		t.Errorf("expected empty table, got %d", st.Len())
	}
}
