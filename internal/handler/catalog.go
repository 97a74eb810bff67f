package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hustle/internal/catalog"
)

// CatalogHandler handles HTTP requests for vendors and predefined items.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// ListItems handles GET /v1/catalog/items?vendor_id=&category=&available=
func (h *CatalogHandler) ListItems(c *gin.Context) {
	filter := catalog.ItemFilter{
		VendorID: c.Query("vendor_id"),
		Category: c.Query("category"),
	}
	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "available must be true or false")
			return
		}
		filter.AvailableOnly = available
	}

	items := h.catalog.Items(filter)
	respondJSON(c, http.StatusOK, gin.H{
		"items":      items,
		"count":      len(items),
		"categories": h.catalog.Categories(),
	})
}

// GetItem handles GET /v1/catalog/items/:id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	item, err := h.catalog.Item(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, item)
}

// ListVendors handles GET /v1/catalog/vendors
func (h *CatalogHandler) ListVendors(c *gin.Context) {
	vendors := h.catalog.Vendors()
	respondJSON(c, http.StatusOK, gin.H{
		"vendors": vendors,
		"count":   len(vendors),
	})
}

// GetVendor handles GET /v1/catalog/vendors/:id
func (h *CatalogHandler) GetVendor(c *gin.Context) {
	vendor, err := h.catalog.Vendor(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"vendor": vendor,
		"items":  h.catalog.Items(catalog.ItemFilter{VendorID: vendor.ID}),
	})
}
