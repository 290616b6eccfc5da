package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dmayman/mealio/internal/auth"
	"github.com/dmayman/mealio/internal/store"
)

const userHeader = "X-User-ID"

// Identify resolves the caller from the X-User-ID header and populates
// AuthContext with their household membership, if any. Requests without a
// valid, known user are rejected with 401.
func Identify(userStore *store.UserStore, householdStore *store.HouseholdStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := strconv.ParseInt(r.Header.Get(userHeader), 10, 64)
			if err != nil {
				unauthorized(w, "missing or invalid "+userHeader+" header")
				return
			}

			user, err := userStore.GetByID(userID)
			if err != nil || user == nil {
				unauthorized(w, "unknown user")
				return
			}

			ac := auth.AuthContext{UserID: user.ID}
			member, err := householdStore.GetMemberForUser(user.ID)
			if err == nil && member != nil {
				ac.HouseholdID = member.HouseholdID
				ac.Role = member.Role
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the caller holds the admin role in their household.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "admin role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
