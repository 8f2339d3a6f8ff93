package statusupdate

import (
	"testing"
	"time"
)

func TestNotifier_AutoDismiss(t *testing.T) {
	n := NewNotifier(WithTTL(50 * time.Millisecond))
	defer n.Close()

	note := n.Show(KindSuccess, "done")
	if note.ID == "" {
		t.Error("notification should have an id")
	}
	if got := n.Active(); len(got) != 1 || got[0].Message != "done" {
		t.Fatalf("Active() = %+v, want one notification", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(n.Active()) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("notification was not dismissed after its TTL")
}

func TestNotifier_DefaultTTL(t *testing.T) {
	n := NewNotifier(WithTTL(-1))
	defer n.Close()
	if n.ttl != DefaultNotificationTTL {
		t.Errorf("ttl = %v, want %v", n.ttl, DefaultNotificationTTL)
	}
}

func TestNotifier_Dismiss(t *testing.T) {
	n := NewNotifier()
	defer n.Close()

	a := n.Show(KindSuccess, "a")
	n.Show(KindDanger, "b")
	n.Dismiss(a.ID)
	n.Dismiss("unknown")

	got := n.Active()
	if len(got) != 1 || got[0].Message != "b" {
		t.Errorf("Active() = %+v, want only b", got)
	}
}

func TestNotifier_OnShowAndClose(t *testing.T) {
	var seen []Notification
	n := NewNotifier(WithOnShow(func(note Notification) { seen = append(seen, note) }))

	n.Show(KindSuccess, "first")
	n.Close()
	n.Show(KindDanger, "after close")

	if len(n.Active()) != 0 {
		t.Errorf("Active() after Close = %d, want 0", len(n.Active()))
	}
	if len(seen) != 2 {
		t.Errorf("hook saw %d notifications, want 2", len(seen))
	}
}
