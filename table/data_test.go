package table_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/uwan-net/dflood/table"
)

func key() table.DataKey {
	return table.DataKey{Source: 2, DestSink: 0, Seq: 7}
}

func TestDataTableCreate(t *testing.T) {
	dt := table.NewDataTable()
	now := time.Now()
	e := dt.Create(key(), []byte{0xAA}, now, now.Add(5*time.Second))
	if !e.Scheduled || e.Duplicates != 0 {
		t.Errorf("unexpected new entry: %+v", e)
	}
	if e.State() != table.StatePending {
		t.Errorf("expected Pending state, got %v", e.State())
	}
}

func TestDataTableDuplicateSuppression(t *testing.T) {
	dt := table.NewDataTable()
	now := time.Now()
	k := key()
	dt.Create(k, []byte{0xAA}, now, now.Add(5*time.Second))

	e := dt.RecordDuplicate(k, 2)
	if e.Duplicates != 1 || !e.Scheduled {
		t.Errorf("after 1st duplicate: %+v", e)
	}
	e = dt.RecordDuplicate(k, 2)
	if e.Duplicates != 2 || e.Scheduled {
		t.Errorf("after 2nd duplicate, expected suppressed: %+v", e)
	}
	if e.State() != table.StateSuppressed {
		t.Errorf("expected Suppressed state, got %v", e.State())
	}
}

func TestDataTableCancel(t *testing.T) {
	dt := table.NewDataTable()
	now := time.Now()
	k := key()
	dt.Create(k, []byte{0xAA}, now, now.Add(5*time.Second))

	e := dt.Cancel(k)
	if e.Scheduled || e.PendingBytes != nil || !e.ForwardingTime.IsZero() {
		t.Errorf("expected cancelled entry, got %+v", e)
	}

	// Replaying cancellation again is a no-op on an already-cancelled entry.
	e2 := dt.Cancel(k)
	if !reflect.DeepEqual(e2, e) {
		t.Errorf("expected idempotent cancel, got %+v vs %+v", e2, e)
	}
}

func TestDataTableDueForForwardRespectsDuplicateQuota(t *testing.T) {
	dt := table.NewDataTable()
	now := time.Now()
	k := key()
	dt.Create(k, []byte{0xAA}, now, now.Add(-time.Second)) // already due

	due := dt.DueForForward(now, 2)
	if len(due) != 1 {
		t.Fatalf("expected entry due, got %v", due)
	}
	dt.RecordDuplicate(k, 2)
	dt.RecordDuplicate(k, 2) // duplicates=2, unscheduled

	due = dt.DueForForward(now, 2)
	if len(due) != 0 {
		t.Errorf("expected no entries due once unscheduled, got %v", due)
	}
}

func TestDataTableAge(t *testing.T) {
	dt := table.NewDataTable()
	now := time.Now()
	k := key()
	dt.Create(k, []byte{0xAA}, now, now)

	purged := dt.Age(now.Add(121*time.Second), 120*time.Second)
	if len(purged) != 1 {
		t.Errorf("expected purge, got %v", purged)
	}
}
