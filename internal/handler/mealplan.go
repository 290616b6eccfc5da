package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmayman/mealio/internal/auth"
	"github.com/dmayman/mealio/internal/model"
	"github.com/dmayman/mealio/internal/store"
	ws "github.com/dmayman/mealio/internal/websocket"
)

type MealPlanHandler struct {
	mealPlanStore *store.MealPlanStore
	recipeStore   *store.RecipeStore
	hub           *ws.Hub
	logger        *slog.Logger
}

func NewMealPlanHandler(ms *store.MealPlanStore, rs *store.RecipeStore, hub *ws.Hub, logger *slog.Logger) *MealPlanHandler {
	return &MealPlanHandler{mealPlanStore: ms, recipeStore: rs, hub: hub, logger: logger}
}

type mealPlanRequest struct {
	WeekStart string `json:"week_start"`
	Name      string `json:"name"`
}

func (h *MealPlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	if householdID == 0 {
		writeError(w, http.StatusConflict, "household membership required")
		return
	}

	var req mealPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := time.Parse("2006-01-02", req.WeekStart); err != nil {
		writeError(w, http.StatusBadRequest, "week_start must be YYYY-MM-DD")
		return
	}

	plan, err := h.mealPlanStore.Create(auth.UserID(r.Context()), householdID, req.WeekStart, req.Name)
	if err != nil {
		h.logger.Error("create meal plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create meal plan")
		return
	}

	h.hub.Broadcast(householdID, ws.NewMessage("meal_plan", "created", plan.ID, nil))
	writeJSON(w, http.StatusCreated, plan)
}

func (h *MealPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	if householdID == 0 {
		writeError(w, http.StatusConflict, "household membership required")
		return
	}

	limit, offset := parsePaging(r, 20)
	plans, err := h.mealPlanStore.ListForHousehold(householdID, limit, offset)
	if err != nil {
		h.logger.Error("list meal plans", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list meal plans")
		return
	}
	if plans == nil {
		plans = []model.MealPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *MealPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.householdPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.householdPlan(w, r)
	if !ok {
		return
	}

	if _, err := h.mealPlanStore.Delete(plan.ID); err != nil {
		h.logger.Error("delete meal plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete meal plan")
		return
	}

	h.hub.Broadcast(plan.HouseholdID, ws.NewMessage("meal_plan", "deleted", plan.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type plannedMealRequest struct {
	RecipeID    int64  `json:"recipe_id"`
	PlannedDate string `json:"planned_date"`
	MealType    string `json:"meal_type"`
	Notes       string `json:"notes"`
}

var mealTypes = map[string]bool{
	model.MealBreakfast: true,
	model.MealLunch:     true,
	model.MealDinner:    true,
	model.MealSnack:     true,
}

// AddMeal schedules an accessible recipe on the plan.
func (h *MealPlanHandler) AddMeal(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.householdPlan(w, r)
	if !ok {
		return
	}

	var req plannedMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := time.Parse("2006-01-02", req.PlannedDate); err != nil {
		writeError(w, http.StatusBadRequest, "planned_date must be YYYY-MM-DD")
		return
	}
	if !mealTypes[req.MealType] {
		writeError(w, http.StatusBadRequest, "invalid meal_type")
		return
	}

	canAccess, err := h.recipeStore.CanAccess(req.RecipeID, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("check recipe access", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add meal")
		return
	}
	if !canAccess {
		writeError(w, http.StatusForbidden, "no access to this recipe")
		return
	}

	meal, err := h.mealPlanStore.AddPlannedMeal(plan.ID, req.RecipeID, req.PlannedDate, req.MealType, req.Notes)
	if err != nil {
		h.logger.Error("add planned meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add meal")
		return
	}

	h.hub.Broadcast(plan.HouseholdID, ws.NewMessage("meal_plan", "updated", plan.ID, nil))
	writeJSON(w, http.StatusCreated, meal)
}

type completeMealRequest struct {
	Completed bool `json:"completed"`
}

func (h *MealPlanHandler) CompleteMeal(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.householdPlan(w, r)
	if !ok {
		return
	}

	mealID, err := parsePathInt(r, "meal_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid meal_id")
		return
	}

	var req completeMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := h.mealPlanStore.SetMealCompleted(mealID, req.Completed)
	if err != nil {
		h.logger.Error("complete meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update meal")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "meal not found")
		return
	}

	h.hub.Broadcast(plan.HouseholdID, ws.NewMessage("meal_plan", "updated", plan.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *MealPlanHandler) RemoveMeal(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.householdPlan(w, r)
	if !ok {
		return
	}

	mealID, err := parsePathInt(r, "meal_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid meal_id")
		return
	}

	removed, err := h.mealPlanStore.RemovePlannedMeal(mealID)
	if err != nil {
		h.logger.Error("remove planned meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove meal")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "meal not found")
		return
	}

	h.hub.Broadcast(plan.HouseholdID, ws.NewMessage("meal_plan", "updated", plan.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// householdPlan loads the plan from the id path param and checks it belongs
// to the caller's household.
func (h *MealPlanHandler) householdPlan(w http.ResponseWriter, r *http.Request) (*model.MealPlan, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	plan, err := h.mealPlanStore.GetByID(id)
	if err != nil {
		h.logger.Error("get meal plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get meal plan")
		return nil, false
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "meal plan not found")
		return nil, false
	}
	if plan.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusForbidden, "meal plan belongs to another household")
		return nil, false
	}
	return plan, true
}
