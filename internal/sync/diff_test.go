package sync

import "testing"

func TestDiffUsers(t *testing.T) {
	alice := UserRecord{CentralID: 1, Email: "alice@hq.test", FirstName: "Alice", Role: "CASHIER", IsActive: true, PasswordHash: "h1"}
	bob := UserRecord{CentralID: 2, Email: "bob@hq.test", FirstName: "Bob", Role: "MANAGER", IsActive: true, PasswordHash: "h2"}
	carol := UserRecord{CentralID: 3, Email: "carol@hq.test", FirstName: "Carol", Role: "ADMIN", IsActive: true, PasswordHash: "h3"}

	t.Run("missing users are inserted", func(t *testing.T) {
		missing, changed := DiffUsers([]UserRecord{alice, bob}, []UserRecord{alice})
		if len(missing) != 1 || missing[0].CentralID != 2 {
			t.Fatalf("expected bob missing, got %+v", missing)
		}
		if len(changed) != 0 {
			t.Fatalf("expected no changes, got %+v", changed)
		}
	})

	t.Run("field drift is detected", func(t *testing.T) {
		stale := bob
		stale.Email = "old@hq.test"
		stale.IsActive = false

		missing, changed := DiffUsers([]UserRecord{bob}, []UserRecord{stale})
		if len(missing) != 0 {
			t.Fatalf("expected nothing missing, got %+v", missing)
		}
		if len(changed) != 1 || changed[0].Email != "bob@hq.test" {
			t.Fatalf("expected bob updated to central values, got %+v", changed)
		}
	})

	t.Run("password hash drift counts", func(t *testing.T) {
		stale := carol
		stale.PasswordHash = "rotated"
		_, changed := DiffUsers([]UserRecord{carol}, []UserRecord{stale})
		if len(changed) != 1 {
			t.Fatalf("expected hash change to be detected")
		}
	})

	t.Run("identical stores produce no work", func(t *testing.T) {
		missing, changed := DiffUsers([]UserRecord{alice, bob, carol}, []UserRecord{carol, alice, bob})
		if len(missing) != 0 || len(changed) != 0 {
			t.Fatalf("expected no-op, got missing=%v changed=%v", missing, changed)
		}
	})

	t.Run("branch-only rows are left alone", func(t *testing.T) {
		local := UserRecord{CentralID: 99, Email: "local@branch.test"}
		missing, changed := DiffUsers([]UserRecord{alice}, []UserRecord{alice, local})
		if len(missing) != 0 || len(changed) != 0 {
			t.Fatalf("branch-only row must not produce work, got missing=%v changed=%v", missing, changed)
		}
	})
}
