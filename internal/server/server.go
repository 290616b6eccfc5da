package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmayman/mealio/internal/backup"
	"github.com/dmayman/mealio/internal/email"
	"github.com/dmayman/mealio/internal/handler"
	"github.com/dmayman/mealio/internal/middleware"
	"github.com/dmayman/mealio/internal/store"
	ws "github.com/dmayman/mealio/internal/websocket"
)

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	userH          *handler.UserHandler
	householdH     *handler.HouseholdHandler
	recipeH        *handler.RecipeHandler
	ingredientH    *handler.IngredientHandler
	mealPlanH      *handler.MealPlanHandler
	shoppingListH  *handler.ShoppingListHandler
	backupH        *handler.BackupHandler
	userStore      *store.UserStore
	householdStore *store.HouseholdStore
	rateLimiter    *middleware.RateLimiter
	backupManager  *backup.Manager
	logger         *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, backupCfg backup.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	ingredientStore := store.NewIngredientStore(db)
	recipeStore := store.NewRecipeStore(db)
	usageStore := store.NewUsageStore(db)
	mealPlanStore := store.NewMealPlanStore(db)
	shoppingListStore := store.NewShoppingListStore(db)

	backupStore := store.NewBackupStore(db)
	backupLogger := logger.With("component", "backup")
	backupMgr := backup.NewManager(backupCfg, db, backupStore, func(st backup.Status) {
		backupLogger.Info("backup status changed", "state", st.State, "error", st.Error)
	}, backupLogger)

	return &Server{
		db:             db,
		hub:            hub,
		userH:          handler.NewUserHandler(userStore, logger.With("component", "user")),
		householdH:     handler.NewHouseholdHandler(householdStore, emailClient, hub, logger.With("component", "household")),
		recipeH:        handler.NewRecipeHandler(recipeStore, ingredientStore, usageStore, hub, logger.With("component", "recipe")),
		ingredientH:    handler.NewIngredientHandler(ingredientStore, logger.With("component", "ingredient")),
		mealPlanH:      handler.NewMealPlanHandler(mealPlanStore, recipeStore, hub, logger.With("component", "meal_plan")),
		shoppingListH:  handler.NewShoppingListHandler(shoppingListStore, mealPlanStore, ingredientStore, hub, logger.With("component", "shopping_list")),
		backupH:        handler.NewBackupHandler(backupMgr, backupStore, backupLogger),
		backupManager:  backupMgr,
		userStore:      userStore,
		householdStore: householdStore,
		rateLimiter:    middleware.NewRateLimiter(),
		logger:         logger,
	}
}

// Hub returns the WebSocket hub for shutdown coordination.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager for scheduling and shutdown.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	logRequests := middleware.RequestLogger(s.logger.With("component", "http"))

	outerMux := http.NewServeMux()

	// Public routes (no identity required)
	outerMux.Handle("POST /api/users", logRequests(http.HandlerFunc(s.rateLimitedHandler(s.userH.Register))))
	outerMux.Handle("GET /health", logRequests(http.HandlerFunc(s.healthHandler)))

	// Identified routes. The logger sits inside Identify so request logs
	// carry the resolved user.
	apiMux := http.NewServeMux()
	s.registerAPIRoutes(apiMux)

	identify := middleware.Identify(s.userStore, s.householdStore)
	outerMux.Handle("/", identify(logRequests(apiMux)))

	return outerMux
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// User routes
	mux.HandleFunc("GET /api/users/me", s.userH.Me)
	mux.HandleFunc("PUT /api/users/me", s.userH.UpdateMe)

	// Household routes
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("GET /api/households/current", s.householdH.Current)
	mux.Handle("PUT /api/households/current", middleware.RequireAdmin(http.HandlerFunc(s.householdH.Update)))
	mux.HandleFunc("POST /api/households/invite", s.householdH.InviteMember)
	mux.HandleFunc("POST /api/households/join", s.householdH.Join)
	mux.HandleFunc("POST /api/households/leave", s.householdH.Leave)
	mux.Handle("PUT /api/households/members/{id}/role", middleware.RequireAdmin(http.HandlerFunc(s.householdH.UpdateMemberRole)))
	mux.Handle("DELETE /api/households/members/{id}", middleware.RequireAdmin(http.HandlerFunc(s.householdH.RemoveMember)))

	// Recipe routes
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("POST /api/recipes/import", s.recipeH.ImportScraped)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Delete)
	mux.HandleFunc("POST /api/recipes/{id}/copy", s.recipeH.Copy)
	mux.HandleFunc("POST /api/recipes/{id}/share", s.recipeH.Share)
	mux.HandleFunc("DELETE /api/recipes/{id}/share", s.recipeH.Unshare)
	mux.HandleFunc("GET /api/recipes/{id}/nutrition", s.recipeH.Nutrition)
	mux.HandleFunc("POST /api/recipes/{id}/usage", s.recipeH.RecordUsage)
	mux.HandleFunc("GET /api/recipes/{id}/usage/stats", s.recipeH.UsageStats)

	// Ingredient routes
	mux.HandleFunc("POST /api/ingredients/parse", s.ingredientH.Parse)
	mux.HandleFunc("POST /api/ingredients/parse-batch", s.ingredientH.ParseBatch)
	mux.HandleFunc("GET /api/ingredients/search", s.ingredientH.Search)
	mux.HandleFunc("GET /api/ingredients/{id}", s.ingredientH.Get)

	// Meal plan routes
	mux.HandleFunc("POST /api/meal-plans", s.mealPlanH.Create)
	mux.HandleFunc("GET /api/meal-plans", s.mealPlanH.List)
	mux.HandleFunc("GET /api/meal-plans/{id}", s.mealPlanH.Get)
	mux.HandleFunc("DELETE /api/meal-plans/{id}", s.mealPlanH.Delete)
	mux.HandleFunc("POST /api/meal-plans/{id}/meals", s.mealPlanH.AddMeal)
	mux.HandleFunc("PUT /api/meal-plans/{id}/meals/{meal_id}/complete", s.mealPlanH.CompleteMeal)
	mux.HandleFunc("DELETE /api/meal-plans/{id}/meals/{meal_id}", s.mealPlanH.RemoveMeal)

	// Shopping list routes
	mux.HandleFunc("POST /api/shopping-lists", s.shoppingListH.Create)
	mux.HandleFunc("POST /api/shopping-lists/generate", s.shoppingListH.Generate)
	mux.HandleFunc("GET /api/shopping-lists", s.shoppingListH.List)
	mux.HandleFunc("GET /api/shopping-lists/{id}", s.shoppingListH.Get)
	mux.HandleFunc("DELETE /api/shopping-lists/{id}", s.shoppingListH.Delete)
	mux.HandleFunc("PUT /api/shopping-lists/{id}/status", s.shoppingListH.SetStatus)
	mux.HandleFunc("POST /api/shopping-lists/{id}/items", s.shoppingListH.AddItem)
	mux.HandleFunc("PUT /api/shopping-lists/{id}/items/{item_id}/check", s.shoppingListH.CheckItem)
	mux.HandleFunc("DELETE /api/shopping-lists/{id}/items/{item_id}", s.shoppingListH.RemoveItem)

	// Backup routes (admin only)
	mux.Handle("GET /api/backups", middleware.RequireAdmin(http.HandlerFunc(s.backupH.List)))
	mux.Handle("POST /api/backups", middleware.RequireAdmin(http.HandlerFunc(s.backupH.RunNow)))
	mux.Handle("GET /api/backups/status", middleware.RequireAdmin(http.HandlerFunc(s.backupH.Status)))
	mux.Handle("GET /api/backups/{id}/download", middleware.RequireAdmin(http.HandlerFunc(s.backupH.Download)))
	mux.Handle("POST /api/backups/{id}/restore", middleware.RequireAdmin(http.HandlerFunc(s.backupH.Restore)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
