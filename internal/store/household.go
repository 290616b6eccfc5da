package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmayman/mealio/internal/model"
)

const (
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength   = 8

	// inviteCodeAttempts bounds the regenerate-on-collision loop. With a
	// 36^8 codespace a single retry is already rare.
	inviteCodeAttempts = 10
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	err := scanner.Scan(&h.ID, &h.Name, &h.CreatedBy, &h.InviteCode, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func scanHouseholdMember(scanner interface{ Scan(...any) error }) (*model.HouseholdMember, error) {
	var m model.HouseholdMember
	err := scanner.Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const householdCols = `id, name, created_by, invite_code, created_at, updated_at`
const householdMemberCols = `id, household_id, user_id, role, joined_at`

// generateInviteCode returns a random short human-typable code. Uniqueness is
// not guaranteed here; the insert's unique constraint is the authority and
// Create retries on collision.
func generateInviteCode() (string, error) {
	code := make([]byte, inviteCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("random invite code: %w", err)
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// Create makes a new household with the creator as its admin member, points
// the creator's current household at it, and fans out access grants for the
// creator's shared recipes. All writes commit atomically; an invite-code
// collision regenerates the code and retries the whole transaction.
func (s *HouseholdStore) Create(creatorID int64, name string) (*model.Household, error) {
	var id int64

	backoff := retry.WithMaxRetries(inviteCodeAttempts, retry.NewConstant(time.Millisecond))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		code, err := generateInviteCode()
		if err != nil {
			return err
		}
		id, err = s.createWithCode(creatorID, name, code)
		if isUniqueViolationOn(err, "households.invite_code") {
			// Another household already holds this code, roll the dice again.
			return retry.RetryableError(err)
		}
		if isUniqueViolationOn(err, "household_members.user_id") {
			// A new code will not help a creator who already has a membership.
			return ErrAlreadyMember
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("create household: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) createWithCode(creatorID int64, name, code string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO households (name, created_by, invite_code) VALUES (?, ?, ?)`,
		name, creatorID, code,
	)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO household_members (household_id, user_id, role) VALUES (?, ?, ?)`,
		id, creatorID, model.RoleAdmin,
	); err != nil {
		return 0, fmt.Errorf("insert admin membership: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE users SET current_household_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id, creatorID,
	); err != nil {
		return 0, fmt.Errorf("set current household: %w", err)
	}

	if err := propagateSharedRecipes(tx, creatorID, id); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// propagateSharedRecipes grants the given household access to every recipe
// the user owns with sharing enabled. This is a one-shot snapshot taken at
// join or creation time; recipes the user shares later are not granted
// automatically.
func propagateSharedRecipes(tx *sql.Tx, userID, householdID int64) error {
	_, err := tx.Exec(
		`INSERT INTO recipe_access (recipe_id, household_id, granted_by)
		 SELECT id, ?, ? FROM recipes WHERE user_id = ? AND shared_with_household = 1
		 ON CONFLICT (recipe_id, household_id) DO NOTHING`,
		householdID, userID, userID,
	)
	if err != nil {
		return fmt.Errorf("propagate shared recipes: %w", err)
	}
	return nil
}

func (s *HouseholdStore) GetByID(id int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByInviteCode(code string) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE invite_code = ?`, code)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household by invite code: %w", err)
	}
	return h, nil
}

// GetForUser returns the household the user is a member of, or nil.
func (s *HouseholdStore) GetForUser(userID int64) (*model.Household, error) {
	row := s.db.QueryRow(
		`SELECT h.id, h.name, h.created_by, h.invite_code, h.created_at, h.updated_at
		 FROM households h
		 JOIN household_members hm ON h.id = hm.household_id
		 WHERE hm.user_id = ?`,
		userID,
	)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household for user: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) Update(id int64, name string) (*model.Household, error) {
	_, err := s.db.Exec(
		`UPDATE households SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	return s.GetByID(id)
}

// JoinByInviteCode adds the user to the household holding the code as a
// regular member, points their current household at it, and fans out grants
// for their shared recipes, all in one transaction. Returns ErrNotFound for
// an unknown code and ErrAlreadyMember when the user already belongs to a
// household; joining never auto-switches.
func (s *HouseholdStore) JoinByInviteCode(userID int64, code string) (*model.HouseholdMember, error) {
	household, err := s.GetByInviteCode(code)
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, ErrNotFound
	}

	existing, err := s.GetMemberForUser(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO household_members (household_id, user_id, role) VALUES (?, ?, ?)`,
		household.ID, userID, model.RoleMember,
	)
	if isUniqueViolation(err) {
		// Lost a race against a concurrent join by the same user.
		return nil, ErrAlreadyMember
	}
	if err != nil {
		return nil, fmt.Errorf("insert membership: %w", err)
	}
	memberID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE users SET current_household_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		household.ID, userID,
	); err != nil {
		return nil, fmt.Errorf("set current household: %w", err)
	}

	if err := propagateSharedRecipes(tx, userID, household.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("join household: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+householdMemberCols+` FROM household_members WHERE id = ?`, memberID)
	return scanHouseholdMember(row)
}

// Leave removes the user's membership and clears their current household.
// Returns false when the user has no membership. Access grants the household
// received from the user's shared recipes are left in place.
func (s *HouseholdStore) Leave(userID int64) (bool, error) {
	member, err := s.GetMemberForUser(userID)
	if err != nil {
		return false, err
	}
	if member == nil {
		return false, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE users SET current_household_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		userID,
	); err != nil {
		return false, fmt.Errorf("clear current household: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM household_members WHERE id = ?`, member.ID); err != nil {
		return false, fmt.Errorf("delete membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("leave household: %w", err)
	}
	return true, nil
}

func (s *HouseholdStore) GetMember(householdID, userID int64) (*model.HouseholdMember, error) {
	row := s.db.QueryRow(
		`SELECT `+householdMemberCols+` FROM household_members WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	)
	m, err := scanHouseholdMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// GetMemberForUser returns the user's membership regardless of household.
// At most one exists: the schema keeps user_id unique.
func (s *HouseholdStore) GetMemberForUser(userID int64) (*model.HouseholdMember, error) {
	row := s.db.QueryRow(
		`SELECT `+householdMemberCols+` FROM household_members WHERE user_id = ?`,
		userID,
	)
	m, err := scanHouseholdMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member for user: %w", err)
	}
	return m, nil
}

func (s *HouseholdStore) ListMembers(householdID int64) ([]model.HouseholdMember, error) {
	rows, err := s.db.Query(
		`SELECT `+householdMemberCols+` FROM household_members WHERE household_id = ? ORDER BY joined_at ASC, id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.HouseholdMember
	for rows.Next() {
		m, err := scanHouseholdMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *HouseholdStore) UpdateMemberRole(householdID, userID int64, role string) (*model.HouseholdMember, error) {
	_, err := s.db.Exec(
		`UPDATE household_members SET role = ? WHERE household_id = ? AND user_id = ?`,
		role, householdID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update member role: %w", err)
	}
	return s.GetMember(householdID, userID)
}

// RemoveMember deletes the membership and, when the removed user still points
// at this household, clears their current household. Returns false when the
// user is not a member.
func (s *HouseholdStore) RemoveMember(householdID, userID int64) (bool, error) {
	member, err := s.GetMember(householdID, userID)
	if err != nil {
		return false, err
	}
	if member == nil {
		return false, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE users SET current_household_id = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND current_household_id = ?`,
		userID, householdID,
	); err != nil {
		return false, fmt.Errorf("clear current household: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM household_members WHERE id = ?`, member.ID); err != nil {
		return false, fmt.Errorf("delete membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("remove member: %w", err)
	}
	return true, nil
}
