package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmayman/mealio/internal/ingredient"
	"github.com/dmayman/mealio/internal/model"
	"github.com/dmayman/mealio/internal/store"
)

type IngredientHandler struct {
	ingredientStore *store.IngredientStore
	logger          *slog.Logger
}

func NewIngredientHandler(is *store.IngredientStore, logger *slog.Logger) *IngredientHandler {
	return &IngredientHandler{ingredientStore: is, logger: logger}
}

type parseRequest struct {
	Text string `json:"text"`
}

// Parse normalizes a single raw ingredient line without touching the catalog.
func (h *IngredientHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	writeJSON(w, http.StatusOK, ingredient.Normalize(req.Text))
}

type parseBatchRequest struct {
	Lines []string `json:"lines"`
}

type parseBatchResponse struct {
	Results []ingredient.Parsed `json:"results"`
	Stats   ingredient.Stats    `json:"stats"`
}

// ParseBatch normalizes a list of raw lines and reports success stats.
func (h *IngredientHandler) ParseBatch(w http.ResponseWriter, r *http.Request) {
	var req parseBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Lines) == 0 {
		writeError(w, http.StatusBadRequest, "lines is required")
		return
	}

	parsed := ingredient.NormalizeBatch(req.Lines)
	writeJSON(w, http.StatusOK, parseBatchResponse{
		Results: parsed,
		Stats:   ingredient.BatchStats(parsed),
	})
}

// Search finds catalog entries matching the query substring.
func (h *IngredientHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, _ := parsePaging(r, 20)

	results, err := h.ingredientStore.Search(query, limit)
	if err != nil {
		h.logger.Error("search ingredients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search ingredients")
		return
	}
	if results == nil {
		results = []model.Ingredient{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *IngredientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ing, err := h.ingredientStore.GetByID(id)
	if err != nil {
		h.logger.Error("get ingredient", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get ingredient")
		return
	}
	if ing == nil {
		writeError(w, http.StatusNotFound, "ingredient not found")
		return
	}
	writeJSON(w, http.StatusOK, ing)
}
