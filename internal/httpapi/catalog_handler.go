package httpapi

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ForeverInLaw/airdealer/models"
	"github.com/ForeverInLaw/airdealer/repository"
)

// CatalogHandler serves products, stock, customers, and the reference tables.
type CatalogHandler struct {
	Products *repository.ProductRepository
	Catalog  *repository.CatalogRepository
	Users    repository.UserRepositoryI
}

type productRequest struct {
	Name           string  `json:"name"`
	ManufacturerID int64   `json:"manufacturer_id"`
	CategoryID     int64   `json:"category_id"`
	Variation      *string `json:"variation"`
	// Monetary values arrive as decimal strings; floats are rejected by parse.
	Price string `json:"price"`
	Cost  string `json:"cost"`
}

func (req *productRequest) toModel(w http.ResponseWriter) (*models.Product, bool) {
	if req.Name == "" || req.ManufacturerID <= 0 || req.CategoryID <= 0 {
		respondError(w, http.StatusBadRequest, "bad_request", "name, manufacturer_id and category_id are required")
		return nil, false
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "price must be a decimal string")
		return nil, false
	}
	cost, err := decimal.NewFromString(req.Cost)
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "cost must be a decimal string")
		return nil, false
	}
	return &models.Product{
		Name:           req.Name,
		ManufacturerID: req.ManufacturerID,
		CategoryID:     req.CategoryID,
		Variation:      req.Variation,
		Price:          price,
		Cost:           cost,
	}, true
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	list, err := h.Products.List(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Product{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": list})
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Products.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, ok := req.toModel(w)
	if !ok {
		return
	}
	created, err := h.Products.Create(r.Context(), p)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, ok := req.toModel(w)
	if !ok {
		return
	}
	p.ID = id
	if err := h.Products.Update(r.Context(), p); err != nil {
		respondServiceError(w, err)
		return
	}
	updated, err := h.Products.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.Products.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type stockRequest struct {
	ProductID  int64 `json:"product_id"`
	LocationID int64 `json:"location_id"`
	Quantity   int   `json:"quantity"`
}

func (h *CatalogHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	list, err := h.Products.ListStock(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.ProductStock{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"stock": list})
}

func (h *CatalogHandler) UpsertStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID <= 0 || req.LocationID <= 0 || req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "bad_request", "product_id, location_id and a non-negative quantity are required")
		return
	}
	if err := h.Products.UpsertStock(r.Context(), req.ProductID, req.LocationID, req.Quantity); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *CatalogHandler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(w, r, "productID")
	if !ok {
		return
	}
	locationID, ok := idParam(w, r, "locationID")
	if !ok {
		return
	}
	if err := h.Products.DeleteStock(r.Context(), productID, locationID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *CatalogHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	list, err := h.Users.List(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.User{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": list})
}

func (h *CatalogHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	h.setUserBlocked(w, r, true)
}

func (h *CatalogHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	h.setUserBlocked(w, r, false)
}

func (h *CatalogHandler) setUserBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.Users.SetBlocked(r.Context(), id, blocked); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"is_blocked": blocked})
}

type locationRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

func (h *CatalogHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListLocations(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Location{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"locations": list})
}

func (h *CatalogHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	l, err := h.Catalog.CreateLocation(r.Context(), req.Name, req.Address)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, l)
}

func (h *CatalogHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req locationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	if err := h.Catalog.UpdateLocation(r.Context(), id, req.Name, req.Address); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *CatalogHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteLocation(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *CatalogHandler) ListManufacturers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListManufacturers(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Manufacturer{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"manufacturers": list})
}

func (h *CatalogHandler) CreateManufacturer(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) || !requireName(w, req.Name) {
		return
	}
	m, err := h.Catalog.CreateManufacturer(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (h *CatalogHandler) UpdateManufacturer(w http.ResponseWriter, r *http.Request) {
	h.updateName(w, r, h.Catalog.UpdateManufacturer)
}

func (h *CatalogHandler) DeleteManufacturer(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Catalog.DeleteManufacturer)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Category{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": list})
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) || !requireName(w, req.Name) {
		return
	}
	c, err := h.Catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	h.updateName(w, r, h.Catalog.UpdateCategory)
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Catalog.DeleteCategory)
}

func requireName(w http.ResponseWriter, name string) bool {
	if name == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "name is required")
		return false
	}
	return true
}

func (h *CatalogHandler) updateName(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64, name string) error) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req nameRequest
	if !decodeBody(w, r, &req) || !requireName(w, req.Name) {
		return
	}
	if err := fn(r.Context(), id, req.Name); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *CatalogHandler) deleteByID(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) error) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := fn(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
