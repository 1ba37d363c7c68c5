package auth

import (
	"testing"

	"classroom/models"

	"go.uber.org/zap"
)

type transition struct {
	old, new *models.Identity
}

// Requirement: Current returns the installed identity until the next
// install or clear.
func TestSessionManager_InstallAndCurrent(t *testing.T) {
	m := NewSessionManager(zap.NewNop())

	if m.Current() != nil {
		t.Fatal("fresh manager should be signed out")
	}

	alice := &models.Identity{ID: "alice"}
	m.Install(alice)
	if got := m.Current(); got == nil || got.ID != "alice" {
		t.Fatalf("Current() = %v, want alice", got)
	}

	bob := &models.Identity{ID: "bob"}
	m.Install(bob)
	if got := m.Current(); got == nil || got.ID != "bob" {
		t.Fatalf("Current() = %v, want bob", got)
	}

	m.Clear()
	if m.Current() != nil {
		t.Fatal("Current() should be nil after Clear")
	}
}

// Requirement: N distinct transitions yield exactly N notifications, each
// with the correct before/after identity.
func TestSessionManager_NotificationsPerTransition(t *testing.T) {
	m := NewSessionManager(zap.NewNop())

	var got []transition
	unsubscribe := m.Subscribe(func(old, new *models.Identity) {
		got = append(got, transition{old, new})
	})
	defer unsubscribe()

	alice := &models.Identity{ID: "alice"}
	bob := &models.Identity{ID: "bob"}

	m.Install(alice) // none -> alice
	m.Install(bob)   // alice -> bob
	m.Clear()        // bob -> none
	m.Clear()        // no transition

	want := []transition{
		{nil, alice},
		{alice, bob},
		{bob, nil},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(got), len(want))
	}
	for i, tr := range want {
		if !sameIdentity(got[i].old, tr.old) || !sameIdentity(got[i].new, tr.new) {
			t.Errorf("notification %d = (%v, %v), want (%v, %v)", i, got[i].old, got[i].new, tr.old, tr.new)
		}
	}
}

// Requirement: reinstalling the same identity id refreshes fields without
// counting as a transition.
func TestSessionManager_SameIdentityReinstall(t *testing.T) {
	m := NewSessionManager(zap.NewNop())

	notifications := 0
	m.Subscribe(func(old, new *models.Identity) { notifications++ })

	m.Install(&models.Identity{ID: "alice", DisplayName: "Alice"})
	m.Install(&models.Identity{ID: "alice", DisplayName: "Alice Updated"})

	if notifications != 1 {
		t.Fatalf("got %d notifications, want 1", notifications)
	}
	if got := m.Current(); got.DisplayName != "Alice Updated" {
		t.Fatalf("reinstall should refresh stored fields, got %q", got.DisplayName)
	}
}

// Requirement: an unsubscribed callback receives no further notifications,
// and unsubscribing twice is harmless.
func TestSessionManager_Unsubscribe(t *testing.T) {
	m := NewSessionManager(zap.NewNop())

	first, second := 0, 0
	unsubscribe := m.Subscribe(func(old, new *models.Identity) { first++ })
	m.Subscribe(func(old, new *models.Identity) { second++ })

	m.Install(&models.Identity{ID: "alice"})
	unsubscribe()
	unsubscribe()
	m.Clear()

	if first != 1 {
		t.Errorf("unsubscribed callback got %d notifications, want 1", first)
	}
	if second != 2 {
		t.Errorf("remaining callback got %d notifications, want 2", second)
	}
}

// Requirement: a subscriber may read the session during fan-out; the new
// state is already visible.
func TestSessionManager_SubscriberSeesNewState(t *testing.T) {
	m := NewSessionManager(zap.NewNop())

	var seen *models.Identity
	m.Subscribe(func(old, new *models.Identity) {
		seen = m.Current()
	})

	m.Install(&models.Identity{ID: "alice"})
	if seen == nil || seen.ID != "alice" {
		t.Fatalf("subscriber saw %v, want alice", seen)
	}
}

func sameIdentity(a, b *models.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
