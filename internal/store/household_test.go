package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func setupHouseholdTestDB(t *testing.T) (*HouseholdStore, *UserStore, *RecipeStore) {
	t.Helper()
	db := openTestDB(t)
	return NewHouseholdStore(db), NewUserStore(db), NewRecipeStore(db)
}

func TestHouseholdCreate(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	u, err := us.Create("alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	h, err := hs.Create(u.ID, "Test Household")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.Name != "Test Household" {
		t.Errorf("name = %q, want %q", h.Name, "Test Household")
	}
	if h.CreatedBy != u.ID {
		t.Errorf("created_by = %d, want %d", h.CreatedBy, u.ID)
	}
	if len(h.InviteCode) != inviteCodeLength {
		t.Errorf("invite code length = %d, want %d", len(h.InviteCode), inviteCodeLength)
	}
	for _, c := range h.InviteCode {
		if !strings.ContainsRune(inviteCodeAlphabet, c) {
			t.Errorf("invite code contains %q outside alphabet", c)
		}
	}
}

func TestHouseholdCreateAlreadyMember(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	if _, err := hs.Create(u.ID, "First"); err != nil {
		t.Fatalf("create household: %v", err)
	}

	// A second create must fail fast as a membership conflict, not burn
	// through the invite-code retry budget.
	_, err := hs.Create(u.ID, "Second")
	if !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestHouseholdCreateMakesCreatorAdmin(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	h, err := hs.Create(u.ID, "Test Household")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	m, err := hs.GetMember(h.ID, u.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m == nil {
		t.Fatal("expected creator membership")
	}
	if m.Role != "admin" {
		t.Errorf("role = %q, want %q", m.Role, "admin")
	}

	fresh, err := us.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if fresh.CurrentHouseholdID == nil || *fresh.CurrentHouseholdID != h.ID {
		t.Errorf("current household = %v, want %d", fresh.CurrentHouseholdID, h.ID)
	}
}

func TestHouseholdInviteCodesUnique(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		u, err := us.Create(fmt.Sprintf("user%d@example.com", i), "User")
		if err != nil {
			t.Fatalf("create user %d: %v", i, err)
		}
		h, err := hs.Create(u.ID, "Household")
		if err != nil {
			t.Fatalf("create household %d: %v", i, err)
		}
		if seen[h.InviteCode] {
			t.Fatalf("duplicate invite code %q", h.InviteCode)
		}
		seen[h.InviteCode] = true
	}
}

func TestHouseholdGetByInviteCode(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice")
	created, _ := hs.Create(u.ID, "Test Household")

	h, err := hs.GetByInviteCode(created.InviteCode)
	if err != nil {
		t.Fatalf("get by invite code: %v", err)
	}
	if h == nil || h.ID != created.ID {
		t.Fatalf("get by invite code = %+v, want id %d", h, created.ID)
	}

	missing, err := hs.GetByInviteCode("NOPENOPE")
	if err != nil {
		t.Fatalf("get by unknown code: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown invite code")
	}
}

func TestHouseholdJoinByInviteCode(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	bob, _ := us.Create("bob@example.com", "Bob")
	h, _ := hs.Create(alice.ID, "Test Household")

	m, err := hs.JoinByInviteCode(bob.ID, h.InviteCode)
	if err != nil {
		t.Fatalf("join by invite code: %v", err)
	}
	if m.Role != "member" {
		t.Errorf("role = %q, want %q", m.Role, "member")
	}
	if m.HouseholdID != h.ID {
		t.Errorf("household_id = %d, want %d", m.HouseholdID, h.ID)
	}

	fresh, _ := us.GetByID(bob.ID)
	if fresh.CurrentHouseholdID == nil || *fresh.CurrentHouseholdID != h.ID {
		t.Errorf("current household = %v, want %d", fresh.CurrentHouseholdID, h.ID)
	}
}

func TestHouseholdJoinUnknownCode(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	bob, _ := us.Create("bob@example.com", "Bob")

	_, err := hs.JoinByInviteCode(bob.ID, "XXXXXXXX")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestHouseholdJoinAlreadyMember(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	bob, _ := us.Create("bob@example.com", "Bob")
	h1, _ := hs.Create(alice.ID, "Household A")

	hs.Create(bob.ID, "Household B")

	_, err := hs.JoinByInviteCode(bob.ID, h1.InviteCode)
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestHouseholdJoinPropagatesSharedRecipes(t *testing.T) {
	hs, us, rs := setupHouseholdTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	bob, _ := us.Create("bob@example.com", "Bob")
	h, _ := hs.Create(alice.ID, "Test Household")

	shared, err := rs.Create(bob.ID, RecipeParams{Title: "Shared Stew", SharedWithHousehold: true}, nil)
	if err != nil {
		t.Fatalf("create shared recipe: %v", err)
	}
	private, err := rs.Create(bob.ID, RecipeParams{Title: "Secret Sauce"}, nil)
	if err != nil {
		t.Fatalf("create private recipe: %v", err)
	}

	if _, err := hs.JoinByInviteCode(bob.ID, h.InviteCode); err != nil {
		t.Fatalf("join: %v", err)
	}

	ok, err := rs.CanAccess(shared.ID, alice.ID)
	if err != nil {
		t.Fatalf("can access shared: %v", err)
	}
	if !ok {
		t.Error("expected household member to access recipe shared before join")
	}

	ok, err = rs.CanAccess(private.ID, alice.ID)
	if err != nil {
		t.Fatalf("can access private: %v", err)
	}
	if ok {
		t.Error("expected no access to unshared recipe")
	}
}

func TestHouseholdJoinDoesNotGrantLaterShares(t *testing.T) {
	hs, us, rs := setupHouseholdTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	bob, _ := us.Create("bob@example.com", "Bob")
	h, _ := hs.Create(alice.ID, "Test Household")
	hs.JoinByInviteCode(bob.ID, h.InviteCode)

	// Shared after joining: no automatic grant.
	late, err := rs.Create(bob.ID, RecipeParams{Title: "Late Bloomer", SharedWithHousehold: true}, nil)
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	ok, err := rs.CanAccess(late.ID, alice.ID)
	if err != nil {
		t.Fatalf("can access: %v", err)
	}
	if ok {
		t.Error("expected no grant for recipe shared after join")
	}
}

func TestHouseholdLeave(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	h, _ := hs.Create(alice.ID, "Test Household")

	left, err := hs.Leave(alice.ID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !left {
		t.Fatal("expected leave to report success")
	}

	m, _ := hs.GetMember(h.ID, alice.ID)
	if m != nil {
		t.Error("expected membership gone after leave")
	}

	fresh, _ := us.GetByID(alice.ID)
	if fresh.CurrentHouseholdID != nil {
		t.Error("expected current household cleared after leave")
	}
}

func TestHouseholdLeaveKeepsGrants(t *testing.T) {
	hs, us, rs := setupHouseholdTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	bob, _ := us.Create("bob@example.com", "Bob")
	h, _ := hs.Create(alice.ID, "Test Household")

	shared, _ := rs.Create(bob.ID, RecipeParams{Title: "Shared Stew", SharedWithHousehold: true}, nil)
	hs.JoinByInviteCode(bob.ID, h.InviteCode)

	if _, err := hs.Leave(bob.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}

	// The household keeps its grant even after the sharer leaves.
	ok, err := rs.CanAccess(shared.ID, alice.ID)
	if err != nil {
		t.Fatalf("can access: %v", err)
	}
	if !ok {
		t.Error("expected grant to survive the sharer leaving")
	}
}

func TestHouseholdLeaveNotMember(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")

	left, err := hs.Leave(alice.ID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if left {
		t.Error("expected false when leaving without a membership")
	}
}

func TestHouseholdUpdateMemberRole(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	bob, _ := us.Create("bob@example.com", "Bob")
	h, _ := hs.Create(alice.ID, "Test Household")
	hs.JoinByInviteCode(bob.ID, h.InviteCode)

	m, err := hs.UpdateMemberRole(h.ID, bob.ID, "admin")
	if err != nil {
		t.Fatalf("update member role: %v", err)
	}
	if m.Role != "admin" {
		t.Errorf("role = %q, want %q", m.Role, "admin")
	}
}

func TestHouseholdRemoveMember(t *testing.T) {
	hs, us, _ := setupHouseholdTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice")
	bob, _ := us.Create("bob@example.com", "Bob")
	h, _ := hs.Create(alice.ID, "Test Household")
	hs.JoinByInviteCode(bob.ID, h.InviteCode)

	removed, err := hs.RemoveMember(h.ID, bob.ID)
	if err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if !removed {
		t.Fatal("expected remove to report success")
	}

	fresh, _ := us.GetByID(bob.ID)
	if fresh.CurrentHouseholdID != nil {
		t.Error("expected current household cleared after removal")
	}

	members, _ := hs.ListMembers(h.ID)
	if len(members) != 1 {
		t.Errorf("members = %d, want 1", len(members))
	}
}
