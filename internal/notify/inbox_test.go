package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/civix/backend/internal/models"
)

func notification(id string, createdAt time.Time) models.Notification {
	return models.Notification{
		ID:        id,
		Type:      models.NotifManualRequired,
		Priority:  models.PriorityHigh,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestInboxAppendAndList(t *testing.T) {
	b := NewInbox(10)
	now := time.Now().UTC()
	b.Append(notification("n1", now.Add(-time.Minute)))
	b.Append(notification("n2", now))

	items := b.List(ListFilter{})
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "n2" {
		t.Fatalf("expected newest first, got %s", items[0].ID)
	}
}

func TestInboxEvictsOldestBeyondCap(t *testing.T) {
	b := NewInbox(3)
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		b.Append(notification(fmt.Sprintf("n%d", i), now.Add(time.Duration(i)*time.Second)))
	}
	if b.Len() != 3 {
		t.Fatalf("expected cap of 3, got %d", b.Len())
	}
	items := b.List(ListFilter{})
	if items[len(items)-1].ID != "n2" {
		t.Fatalf("expected n0 and n1 evicted, oldest remaining is %s", items[len(items)-1].ID)
	}
}

func TestInboxListFilters(t *testing.T) {
	b := NewInbox(10)
	now := time.Now().UTC()
	n1 := notification("n1", now)
	n1.Type = models.NotifAssignmentPending
	n1.Priority = models.PriorityMedium
	n1.Actionable = true
	n2 := notification("n2", now)
	n2.Read = true
	b.Append(n1)
	b.Append(n2)

	unread := false
	if items := b.List(ListFilter{Read: &unread}); len(items) != 1 || items[0].ID != "n1" {
		t.Fatalf("read filter failed: %+v", items)
	}
	if items := b.List(ListFilter{Type: models.NotifAssignmentPending}); len(items) != 1 || items[0].ID != "n1" {
		t.Fatalf("type filter failed: %+v", items)
	}
	if items := b.List(ListFilter{Priority: models.PriorityHigh}); len(items) != 1 || items[0].ID != "n2" {
		t.Fatalf("priority filter failed: %+v", items)
	}
	actionable := true
	if items := b.List(ListFilter{Actionable: &actionable}); len(items) != 1 || items[0].ID != "n1" {
		t.Fatalf("actionable filter failed: %+v", items)
	}
}

func TestInboxMarkRead(t *testing.T) {
	b := NewInbox(10)
	b.Append(notification("n1", time.Now().UTC()))

	if !b.MarkRead("n1") {
		t.Fatalf("expected mark-read to succeed")
	}
	if b.MarkRead("missing") {
		t.Fatalf("expected mark-read of unknown id to fail")
	}
	items := b.List(ListFilter{})
	if !items[0].Read {
		t.Fatalf("expected notification marked read")
	}
}

func TestInboxMarkAllRead(t *testing.T) {
	b := NewInbox(10)
	now := time.Now().UTC()
	b.Append(notification("n1", now))
	b.Append(notification("n2", now))

	if marked := b.MarkAllRead(); marked != 2 {
		t.Fatalf("expected 2 marked, got %d", marked)
	}
	if marked := b.MarkAllRead(); marked != 0 {
		t.Fatalf("expected idempotent second pass, got %d", marked)
	}
}

func TestInboxRemove(t *testing.T) {
	b := NewInbox(10)
	b.Append(notification("n1", time.Now().UTC()))

	if !b.Remove("n1") {
		t.Fatalf("expected remove to succeed")
	}
	if b.Remove("n1") {
		t.Fatalf("expected second remove to fail")
	}
	if b.Len() != 0 {
		t.Fatalf("expected empty inbox, got %d", b.Len())
	}
}

func TestInboxSweepRemovesExpired(t *testing.T) {
	b := NewInbox(10)
	now := time.Now().UTC()
	b.Append(notification("old", now.Add(-31*24*time.Hour)))
	b.Append(notification("fresh", now))

	removed := b.Sweep(30 * 24 * time.Hour)
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	items := b.List(ListFilter{})
	if len(items) != 1 || items[0].ID != "fresh" {
		t.Fatalf("expected only the fresh entry, got %+v", items)
	}
}
