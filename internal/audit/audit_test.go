package audit

import (
	"fmt"
	"testing"
	"time"
)

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	log := NewLog(WithoutEmit())
	log.Append(Entry{UserID: "u1", Action: "LOGIN_SUCCESS", Resource: "authentication", Success: true})

	entries := log.Query(nil, nil, 10)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.ID == "" {
		t.Fatal("expected generated id")
	}
	if e.Timestamp.IsZero() {
		t.Fatal("expected timestamp")
	}
	if e.Details == nil {
		t.Fatal("expected non-nil details")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	log := NewLog(WithoutEmit(), WithCapacity(10000))
	for i := 0; i < 10050; i++ {
		log.Append(Entry{UserID: "u1", Action: fmt.Sprintf("ACTION_%05d", i), Resource: "test"})
	}

	if log.Len() != 10000 {
		t.Fatalf("expected log capped at 10000, got %d", log.Len())
	}
	entries := log.Query(nil, nil, 10000)
	if len(entries) != 10000 {
		t.Fatalf("expected 10000 entries, got %d", len(entries))
	}
	if entries[0].Action != "ACTION_00050" {
		t.Fatalf("expected oldest 50 evicted, oldest is %s", entries[0].Action)
	}
	if entries[len(entries)-1].Action != "ACTION_10049" {
		t.Fatalf("unexpected newest entry: %s", entries[len(entries)-1].Action)
	}
}

func TestQueryTimeBoundsInclusive(t *testing.T) {
	current := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	log := NewLog(WithoutEmit(), WithClock(func() time.Time { return current }))

	var stamps []time.Time
	for i := 0; i < 5; i++ {
		log.Append(Entry{UserID: "u1", Action: fmt.Sprintf("A%d", i), Resource: "test"})
		stamps = append(stamps, current)
		current = current.Add(time.Minute)
	}

	entries := log.Query(&stamps[1], &stamps[3], 100)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries in window, got %d", len(entries))
	}
	if entries[0].Action != "A1" || entries[2].Action != "A3" {
		t.Fatalf("unexpected window contents: %s..%s", entries[0].Action, entries[2].Action)
	}
}

func TestQueryLimitKeepsMostRecent(t *testing.T) {
	log := NewLog(WithoutEmit())
	for i := 0; i < 10; i++ {
		log.Append(Entry{UserID: "u1", Action: fmt.Sprintf("A%d", i), Resource: "test"})
	}

	entries := log.Query(nil, nil, 3)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Action != "A7" || entries[2].Action != "A9" {
		t.Fatalf("expected the 3 most recent in order, got %s..%s", entries[0].Action, entries[2].Action)
	}
}

func TestConcurrentAppend(t *testing.T) {
	log := NewLog(WithoutEmit(), WithCapacity(100))
	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				log.Append(Entry{UserID: "u1", Action: "A", Resource: "test"})
			}
		}()
	}
	for g := 0; g < 8; g++ {
		<-done
	}
	if log.Len() != 100 {
		t.Fatalf("expected capped size 100, got %d", log.Len())
	}
}
