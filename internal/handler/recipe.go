package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.uber.org/multierr"

	"github.com/dmayman/mealio/internal/auth"
	"github.com/dmayman/mealio/internal/ingredient"
	"github.com/dmayman/mealio/internal/model"
	"github.com/dmayman/mealio/internal/scrape"
	"github.com/dmayman/mealio/internal/store"
	ws "github.com/dmayman/mealio/internal/websocket"
)

type RecipeHandler struct {
	recipeStore     *store.RecipeStore
	ingredientStore *store.IngredientStore
	usageStore      *store.UsageStore
	hub             *ws.Hub
	logger          *slog.Logger
}

func NewRecipeHandler(rs *store.RecipeStore, is *store.IngredientStore, us *store.UsageStore, hub *ws.Hub, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipeStore: rs, ingredientStore: is, usageStore: us, hub: hub, logger: logger}
}

type recipeRequest struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Instructions        []string `json:"instructions"`
	Ingredients         []string `json:"ingredients"`
	PrepTime            *int     `json:"prep_time"`
	CookTime            *int     `json:"cook_time"`
	TotalTime           *int     `json:"total_time"`
	Servings            *int     `json:"servings"`
	SourceURL           string   `json:"source_url"`
	ImageURL            string   `json:"image_url"`
	DifficultyLevel     string   `json:"difficulty_level"`
	SharedWithHousehold bool     `json:"shared_with_household"`
}

// validate collects every problem with the request so the client sees them
// all at once.
func (req *recipeRequest) validate() error {
	var err error
	if strings.TrimSpace(req.Title) == "" {
		err = multierr.Append(err, errors.New("title is required"))
	}
	if req.Servings != nil && *req.Servings <= 0 {
		err = multierr.Append(err, errors.New("servings must be positive"))
	}
	for _, field := range []struct {
		name  string
		value *int
	}{{"prep_time", req.PrepTime}, {"cook_time", req.CookTime}, {"total_time", req.TotalTime}} {
		if field.value != nil && *field.value < 0 {
			err = multierr.Append(err, errors.New(field.name+" must not be negative"))
		}
	}
	return err
}

func (req *recipeRequest) params() store.RecipeParams {
	return store.RecipeParams{
		Title:               strings.TrimSpace(req.Title),
		Description:         req.Description,
		Instructions:        req.Instructions,
		PrepTime:            req.PrepTime,
		CookTime:            req.CookTime,
		TotalTime:           req.TotalTime,
		Servings:            req.Servings,
		SourceURL:           req.SourceURL,
		ImageURL:            req.ImageURL,
		DifficultyLevel:     req.DifficultyLevel,
		SharedWithHousehold: req.SharedWithHousehold,
	}
}

// buildLines normalizes raw ingredient text and resolves each parsed name
// against the catalog. Lines whose normalization fell back keep a nil catalog
// reference but are stored anyway so nothing the user typed is lost.
func (h *RecipeHandler) buildLines(raw []string) ([]store.IngredientLineParams, error) {
	parsed := ingredient.NormalizeBatch(raw)
	lines := make([]store.IngredientLineParams, 0, len(parsed))
	for _, p := range parsed {
		line := store.IngredientLineParams{
			Quantity:          p.Quantity,
			Unit:              p.Unit,
			Notes:             p.Notes,
			RawText:           p.RawText,
			ParsingConfidence: &p.Confidence,
		}
		if p.ParsedSuccessfully && p.Name != "" {
			entry, err := h.ingredientStore.Resolve(p.Name)
			if err != nil {
				return nil, err
			}
			line.IngredientID = &entry.ID
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lines, err := h.buildLines(req.Ingredients)
	if err != nil {
		h.logger.Error("resolve ingredients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to resolve ingredients")
		return
	}

	recipe, err := h.recipeStore.Create(auth.UserID(r.Context()), req.params(), lines)
	if err != nil {
		h.logger.Error("create recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}

	h.broadcast(r, ws.NewMessage("recipe", "created", recipe.ID, nil))
	writeJSON(w, http.StatusCreated, recipe)
}

// List returns everything the caller may view: their own recipes plus those
// granted to their household.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaging(r, 50)
	recipes, err := h.recipeStore.ListAccessible(auth.UserID(r.Context()), limit, offset)
	if err != nil {
		h.logger.Error("list recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	if recipes == nil {
		recipes = []model.AccessibleRecipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.accessibleRecipe(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.editableRecipe(w, r)
	if !ok {
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := req.params()
	p.SourceType = recipe.SourceType

	updated, err := h.recipeStore.Update(recipe.ID, p)
	if err != nil {
		h.logger.Error("update recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update recipe")
		return
	}

	if req.Ingredients != nil {
		lines, err := h.buildLines(req.Ingredients)
		if err != nil {
			h.logger.Error("resolve ingredients", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to resolve ingredients")
			return
		}
		if err := h.recipeStore.ReplaceIngredientLines(recipe.ID, lines); err != nil {
			h.logger.Error("replace ingredient lines", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update ingredients")
			return
		}
		updated, err = h.recipeStore.GetByID(recipe.ID)
		if err != nil {
			h.logger.Error("reload recipe", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update recipe")
			return
		}
	}

	h.broadcast(r, ws.NewMessage("recipe", "updated", recipe.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.editableRecipe(w, r)
	if !ok {
		return
	}

	if _, err := h.recipeStore.Delete(recipe.ID); err != nil {
		h.logger.Error("delete recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}

	h.broadcast(r, ws.NewMessage("recipe", "deleted", recipe.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Copy duplicates an accessible recipe into the caller's own collection.
func (h *RecipeHandler) Copy(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.accessibleRecipe(w, r)
	if !ok {
		return
	}

	copied, err := h.recipeStore.Copy(recipe.ID, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("copy recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to copy recipe")
		return
	}

	h.broadcast(r, ws.NewMessage("recipe", "created", copied.ID, nil))
	writeJSON(w, http.StatusCreated, copied)
}

// Share grants the caller's household access to a recipe they own.
func (h *RecipeHandler) Share(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.editableRecipe(w, r)
	if !ok {
		return
	}

	householdID := auth.HouseholdID(r.Context())
	if householdID == 0 {
		writeError(w, http.StatusConflict, "household membership required")
		return
	}

	if _, err := h.recipeStore.GrantHouseholdAccess(recipe.ID, householdID, auth.UserID(r.Context())); err != nil {
		h.logger.Error("grant access", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to share recipe")
		return
	}

	h.broadcast(r, ws.NewMessage("recipe", "shared", recipe.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Unshare revokes the caller's household grant on their own recipe.
func (h *RecipeHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.editableRecipe(w, r)
	if !ok {
		return
	}

	householdID := auth.HouseholdID(r.Context())
	if householdID == 0 {
		writeError(w, http.StatusConflict, "household membership required")
		return
	}

	revoked, err := h.recipeStore.RevokeHouseholdAccess(recipe.ID, householdID)
	if err != nil {
		h.logger.Error("revoke access", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unshare recipe")
		return
	}
	if !revoked {
		writeError(w, http.StatusNotFound, "recipe is not shared with your household")
		return
	}

	h.broadcast(r, ws.NewMessage("recipe", "unshared", recipe.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// ImportScraped stores a recipe payload produced by the external scraping
// adapter: ingredient lines are normalized into the catalog and nutrient
// strings are reduced to their numeric values.
func (h *RecipeHandler) ImportScraped(w http.ResponseWriter, r *http.Request) {
	var payload scrape.Recipe
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(payload.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	lines, err := h.buildLines(payload.Ingredients)
	if err != nil {
		h.logger.Error("resolve ingredients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to resolve ingredients")
		return
	}

	var instructions []string
	for _, step := range strings.Split(payload.Instructions, "\n") {
		if step = strings.TrimSpace(step); step != "" {
			instructions = append(instructions, step)
		}
	}

	p := store.RecipeParams{
		Title:        strings.TrimSpace(payload.Title),
		Description:  payload.Description,
		Instructions: instructions,
		PrepTime:     payload.PrepTime,
		CookTime:     payload.CookTime,
		TotalTime:    payload.TotalTime,
		Servings:     scrape.ParseServings(payload.Yields),
		SourceURL:    payload.CanonicalURL,
		ImageURL:     payload.Image,
		SourceType:   model.SourceScraped,
		Author:       payload.Author,
		Cuisine:      payload.Cuisine,
		Category:     payload.Category,
		Keywords:     payload.Keywords,
		SiteName:     payload.SiteName,
		Language:     payload.Language,
	}

	recipe, err := h.recipeStore.Create(auth.UserID(r.Context()), p, lines)
	if err != nil {
		h.logger.Error("import recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to import recipe")
		return
	}

	if nutrition := nutritionFromScrape(payload.Nutrients); nutrition != nil {
		if err := h.recipeStore.SetNutrition(recipe.ID, *nutrition); err != nil {
			h.logger.Error("set nutrition", "error", err)
		}
	}

	h.broadcast(r, ws.NewMessage("recipe", "created", recipe.ID, nil))
	writeJSON(w, http.StatusCreated, recipe)
}

// nutritionFromScrape maps scraped nutrient strings onto numeric fields.
// Returns nil when nothing parses.
func nutritionFromScrape(nutrients map[string]string) *model.RecipeNutrition {
	if len(nutrients) == 0 {
		return nil
	}

	var n model.RecipeNutrition
	found := false
	fields := map[string]**float64{
		"calories":              &n.Calories,
		"proteinContent":        &n.ProteinGrams,
		"carbohydrateContent":   &n.CarbsGrams,
		"fatContent":            &n.FatGrams,
		"fiberContent":          &n.FiberGrams,
		"sugarContent":          &n.SugarGrams,
		"sodiumContent":         &n.SodiumMg,
		"saturatedFatContent":   &n.SaturatedFatGrams,
		"unsaturatedFatContent": &n.UnsaturatedFatGrams,
		"transFatContent":       &n.TransFatGrams,
	}
	for key, field := range fields {
		if v := scrape.ParseNumeric(nutrients[key]); v != nil {
			*field = v
			found = true
		}
	}
	if !found {
		return nil
	}
	return &n
}

// Nutrition returns the stored nutrition row for an accessible recipe.
func (h *RecipeHandler) Nutrition(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.accessibleRecipe(w, r)
	if !ok {
		return
	}

	n, err := h.recipeStore.GetNutrition(recipe.ID)
	if err != nil {
		h.logger.Error("get nutrition", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get nutrition")
		return
	}
	if n == nil {
		writeError(w, http.StatusNotFound, "no nutrition recorded")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

type usageRequest struct {
	Rating            *int   `json:"rating"`
	Notes             string `json:"notes"`
	CookingTimeActual *int   `json:"cooking_time_actual"`
}

// RecordUsage logs that the caller cooked an accessible recipe.
func (h *RecipeHandler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.accessibleRecipe(w, r)
	if !ok {
		return
	}

	var req usageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	usage, err := h.usageStore.Record(auth.UserID(r.Context()), recipe.ID, req.Rating, req.Notes, req.CookingTimeActual)
	if err != nil {
		h.logger.Error("record usage", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record usage")
		return
	}
	writeJSON(w, http.StatusCreated, usage)
}

// UsageStats summarizes cook counts and ratings for an accessible recipe.
func (h *RecipeHandler) UsageStats(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.accessibleRecipe(w, r)
	if !ok {
		return
	}

	stats, err := h.usageStore.StatsForRecipe(recipe.ID)
	if err != nil {
		h.logger.Error("usage stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get usage stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// accessibleRecipe loads the recipe from the id path param and checks view
// access. On failure it writes the error response and returns false.
func (h *RecipeHandler) accessibleRecipe(w http.ResponseWriter, r *http.Request) (*model.Recipe, bool) {
	return h.loadRecipe(w, r, h.recipeStore.CanAccess)
}

// editableRecipe is accessibleRecipe with the owner-only edit check.
func (h *RecipeHandler) editableRecipe(w http.ResponseWriter, r *http.Request) (*model.Recipe, bool) {
	return h.loadRecipe(w, r, h.recipeStore.CanEdit)
}

func (h *RecipeHandler) loadRecipe(w http.ResponseWriter, r *http.Request, allowed func(int64, int64) (bool, error)) (*model.Recipe, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	recipe, err := h.recipeStore.GetByID(id)
	if err != nil {
		h.logger.Error("get recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return nil, false
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return nil, false
	}

	ok, err := allowed(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("check recipe access", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return nil, false
	}
	if !ok {
		writeError(w, http.StatusForbidden, "no access to this recipe")
		return nil, false
	}
	return recipe, true
}

func (h *RecipeHandler) broadcast(r *http.Request, msg ws.Message) {
	if householdID := auth.HouseholdID(r.Context()); householdID != 0 {
		h.hub.Broadcast(householdID, msg)
	}
}
