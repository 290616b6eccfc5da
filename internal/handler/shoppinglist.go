package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmayman/mealio/internal/auth"
	"github.com/dmayman/mealio/internal/model"
	"github.com/dmayman/mealio/internal/store"
	ws "github.com/dmayman/mealio/internal/websocket"
)

type ShoppingListHandler struct {
	listStore       *store.ShoppingListStore
	mealPlanStore   *store.MealPlanStore
	ingredientStore *store.IngredientStore
	hub             *ws.Hub
	logger          *slog.Logger
}

func NewShoppingListHandler(ls *store.ShoppingListStore, ms *store.MealPlanStore, is *store.IngredientStore, hub *ws.Hub, logger *slog.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{listStore: ls, mealPlanStore: ms, ingredientStore: is, hub: hub, logger: logger}
}

type shoppingListRequest struct {
	Name string `json:"name"`
}

func (h *ShoppingListHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	if householdID == 0 {
		writeError(w, http.StatusConflict, "household membership required")
		return
	}

	var req shoppingListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := h.listStore.Create(auth.UserID(r.Context()), householdID, req.Name)
	if err != nil {
		h.logger.Error("create shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create shopping list")
		return
	}

	h.hub.Broadcast(householdID, ws.NewMessage("shopping_list", "created", list.ID, nil))
	writeJSON(w, http.StatusCreated, list)
}

type generateRequest struct {
	MealPlanID int64 `json:"meal_plan_id"`
}

// Generate builds a shopping list by aggregating every ingredient across the
// meal plan's recipes.
func (h *ShoppingListHandler) Generate(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	if householdID == 0 {
		writeError(w, http.StatusConflict, "household membership required")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	plan, err := h.mealPlanStore.GetByID(req.MealPlanID)
	if err != nil {
		h.logger.Error("get meal plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate shopping list")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "meal plan not found")
		return
	}
	if plan.HouseholdID != householdID {
		writeError(w, http.StatusForbidden, "meal plan belongs to another household")
		return
	}

	list, err := h.listStore.GenerateFromMealPlan(req.MealPlanID, auth.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "meal plan not found")
		return
	}
	if err != nil {
		h.logger.Error("generate shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate shopping list")
		return
	}

	h.hub.Broadcast(householdID, ws.NewMessage("shopping_list", "generated", list.ID, nil))
	writeJSON(w, http.StatusCreated, list)
}

func (h *ShoppingListHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	if householdID == 0 {
		writeError(w, http.StatusConflict, "household membership required")
		return
	}

	limit, offset := parsePaging(r, 20)
	lists, err := h.listStore.ListForHousehold(householdID, limit, offset)
	if err != nil {
		h.logger.Error("list shopping lists", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list shopping lists")
		return
	}
	if lists == nil {
		lists = []model.ShoppingList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ShoppingListHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, ok := h.householdList(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ShoppingListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	list, ok := h.householdList(w, r)
	if !ok {
		return
	}

	if _, err := h.listStore.Delete(list.ID); err != nil {
		h.logger.Error("delete shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete shopping list")
		return
	}

	h.hub.Broadcast(list.HouseholdID, ws.NewMessage("shopping_list", "deleted", list.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type listStatusRequest struct {
	Status string `json:"status"`
}

func (h *ShoppingListHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	list, ok := h.householdList(w, r)
	if !ok {
		return
	}

	var req listStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	switch req.Status {
	case model.ListActive, model.ListCompleted, model.ListArchived:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if _, err := h.listStore.SetStatus(list.ID, req.Status); err != nil {
		h.logger.Error("set list status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update shopping list")
		return
	}

	h.hub.Broadcast(list.HouseholdID, ws.NewMessage("shopping_list", "updated", list.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type addItemRequest struct {
	IngredientName string   `json:"ingredient_name"`
	Quantity       *float64 `json:"quantity"`
	Unit           string   `json:"unit"`
	Notes          string   `json:"notes"`
}

// AddItem resolves the named ingredient against the catalog and appends it to
// the list.
func (h *ShoppingListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	list, ok := h.householdList(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.IngredientName) == "" {
		writeError(w, http.StatusBadRequest, "ingredient_name is required")
		return
	}

	entry, err := h.ingredientStore.Resolve(req.IngredientName)
	if err != nil {
		h.logger.Error("resolve ingredient", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	item, err := h.listStore.AddItem(list.ID, entry.ID, req.Quantity, req.Unit, req.Notes)
	if err != nil {
		h.logger.Error("add shopping list item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	h.hub.Broadcast(list.HouseholdID, ws.NewMessage("shopping_list", "updated", list.ID, nil))
	writeJSON(w, http.StatusCreated, item)
}

type checkItemRequest struct {
	Checked bool `json:"checked"`
}

func (h *ShoppingListHandler) CheckItem(w http.ResponseWriter, r *http.Request) {
	list, ok := h.householdList(w, r)
	if !ok {
		return
	}

	itemID, err := parsePathInt(r, "item_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item_id")
		return
	}

	var req checkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := h.listStore.SetItemChecked(itemID, req.Checked)
	if err != nil {
		h.logger.Error("check item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.hub.Broadcast(list.HouseholdID, ws.NewMessage("shopping_list", "updated", list.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingListHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	list, ok := h.householdList(w, r)
	if !ok {
		return
	}

	itemID, err := parsePathInt(r, "item_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item_id")
		return
	}

	removed, err := h.listStore.RemoveItem(itemID)
	if err != nil {
		h.logger.Error("remove item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.hub.Broadcast(list.HouseholdID, ws.NewMessage("shopping_list", "updated", list.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingListHandler) householdList(w http.ResponseWriter, r *http.Request) (*model.ShoppingList, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	list, err := h.listStore.GetByID(id)
	if err != nil {
		h.logger.Error("get shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get shopping list")
		return nil, false
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "shopping list not found")
		return nil, false
	}
	if list.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusForbidden, "shopping list belongs to another household")
		return nil, false
	}
	return list, true
}
