package auth

import "context"

type contextKey struct{}

// AuthContext carries the resolved caller identity. HouseholdID is 0 and Role
// is empty when the user has not joined a household yet.
type AuthContext struct {
	UserID      int64
	HouseholdID int64
	Role        string
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

func HouseholdID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.HouseholdID
}

// HasHousehold reports whether the caller belongs to a household.
func HasHousehold(ctx context.Context) bool {
	return HouseholdID(ctx) != 0
}

func IsAdmin(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return ac.Role == "admin"
}
