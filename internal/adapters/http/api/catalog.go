package api

import (
	"net/http"

	"github.com/okian/ecopoints/internal/domain/catalog"
)

// CatalogProvider exposes the active catalog.
type CatalogProvider interface {
	Catalog() *catalog.Catalog
}

type activityView struct {
	Key         string   `json:"key"`
	Points      int      `json:"points"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Components  []string `json:"components,omitempty"`
}

type catalogResponse struct {
	Simple   []activityView `json:"simple"`
	Compound []activityView `json:"compound"`
}

// CatalogHandler lists the scorable activities.
type CatalogHandler struct {
	deps CatalogProvider
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogProvider) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleGetCatalog handles GET /catalog requests.
func (h *CatalogHandler) HandleGetCatalog(w http.ResponseWriter, _ *http.Request) {
	c := h.deps.Catalog()
	writeJSON(w, http.StatusOK, catalogResponse{
		Simple:   views(c.Simple()),
		Compound: views(c.Compound()),
	})
}

func views(defs []catalog.ActivityDefinition) []activityView {
	out := make([]activityView, len(defs))
	for i, d := range defs {
		out[i] = activityView{
			Key:         d.Key,
			Points:      d.Points,
			Description: d.Description,
			Icon:        d.Icon,
			Components:  d.Components,
		}
	}
	return out
}
