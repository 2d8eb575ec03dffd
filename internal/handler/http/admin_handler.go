package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/quickorder/internal/catalog"
	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage/gateway"
)

type CreateCategoryRequest struct {
	Name         string `json:"name" validate:"required"`
	Order        int    `json:"order"`
	RestaurantID string `json:"restaurantId"`
}

type UpdateCategoryRequest struct {
	ID    string  `json:"id" validate:"required"`
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Order *int    `json:"order"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       int64           `json:"price" validate:"min=0"`
	Image       string          `json:"image"`
	CategoryID  string          `json:"categoryId" validate:"required"`
	IsAvailable *bool           `json:"isAvailable"`
	Options     []OptionRequest `json:"options" validate:"dive"`
}

type UpdateProductRequest struct {
	ID          string           `json:"id" validate:"required"`
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Description *string          `json:"description"`
	Price       *int64           `json:"price" validate:"omitempty,min=0"`
	Image       *string          `json:"image"`
	CategoryID  *string          `json:"categoryId" validate:"omitempty,min=1"`
	IsAvailable *bool            `json:"isAvailable"`
	Options     *[]OptionRequest `json:"options"`
}

type TableStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=free occupied"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// AdminHandler serves the back office: menu, settings, tables and
// analytics.
type AdminHandler struct {
	service  catalog.Service
	validate *validator.Validate
}

func NewAdminHandler(service catalog.Service) *AdminHandler {
	return &AdminHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Route("/admin", func(r chi.Router) {
		r.Get("/categories", h.handleListCategories)
		r.Post("/categories", h.handleCreateCategory)
		r.Put("/categories", h.handleUpdateCategory)
		r.Delete("/categories", h.handleDeleteCategory)

		r.Get("/products", h.handleListProducts)
		r.Post("/products", h.handleCreateProduct)
		r.Put("/products", h.handleUpdateProduct)
		r.Delete("/products", h.handleDeleteProduct)

		r.Get("/settings", h.handleGetSettings)
		r.Put("/settings", h.handleUpdateSettings)

		r.Get("/tables", h.handleListTables)
		r.Put("/tables/{id}", h.handleSetTableStatus)

		r.Get("/analytics", h.handleAnalytics)
	})
}

func (h *AdminHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list categories")
		return
	}
	respondWithResult(w, http.StatusOK, res)
}

func (h *AdminHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateCategoryRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	res, err := h.service.CreateCategory(r.Context(), model.Category{
		Name:         requestPayload.Name,
		Order:        requestPayload.Order,
		RestaurantID: requestPayload.RestaurantID,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to create category")
		return
	}
	respondWithResult(w, http.StatusCreated, res)
}

func (h *AdminHandler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateCategoryRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	res, err := h.service.UpdateCategory(r.Context(), requestPayload.ID, model.CategoryPatch{
		Name:  requestPayload.Name,
		Order: requestPayload.Order,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to update category")
		return
	}
	respondWithResult(w, http.StatusOK, res)
}

func (h *AdminHandler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing ID")
		return
	}

	res, err := h.service.DeleteCategory(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to delete category")
		return
	}
	respondWithResult(w, http.StatusOK, gateway.Result[SuccessResponse]{Value: SuccessResponse{Success: true}, Source: res.Source})
}

func (h *AdminHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListProducts(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list products")
		return
	}
	respondWithResult(w, http.StatusOK, res)
}

func (h *AdminHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	product := model.Product{
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Image:       requestPayload.Image,
		CategoryID:  requestPayload.CategoryID,
		IsAvailable: true,
		Options:     toOptions(requestPayload.Options),
	}
	if requestPayload.IsAvailable != nil {
		product.IsAvailable = *requestPayload.IsAvailable
	}

	res, err := h.service.CreateProduct(r.Context(), product)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create product")
		return
	}
	respondWithResult(w, http.StatusCreated, res)
}

func (h *AdminHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	patch := model.ProductPatch{
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Image:       requestPayload.Image,
		CategoryID:  requestPayload.CategoryID,
		IsAvailable: requestPayload.IsAvailable,
	}
	if requestPayload.Options != nil {
		options := toOptions(*requestPayload.Options)
		patch.Options = &options
	}

	res, err := h.service.UpdateProduct(r.Context(), requestPayload.ID, patch)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update product")
		return
	}
	respondWithResult(w, http.StatusOK, res)
}

func (h *AdminHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing product ID")
		return
	}

	res, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to delete product")
		return
	}
	respondWithResult(w, http.StatusOK, gateway.Result[SuccessResponse]{Value: SuccessResponse{Success: true}, Source: res.Source})
}

func (h *AdminHandler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Settings(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to load settings")
		return
	}
	respondWithResult(w, http.StatusOK, res)
}

func (h *AdminHandler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch model.SettingsPatch
	if !decodeAndValidate(w, r, h.validate, &patch) {
		return
	}

	res, err := h.service.UpdateSettings(r.Context(), patch)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update settings")
		return
	}
	respondWithResult(w, http.StatusOK, res)
}

func (h *AdminHandler) handleListTables(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListTables(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list tables")
		return
	}
	respondWithResult(w, http.StatusOK, res)
}

func (h *AdminHandler) handleSetTableStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var requestPayload TableStatusRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	res, err := h.service.SetTableStatus(r.Context(), id, model.TableStatus(requestPayload.Status))
	if err != nil {
		respondWithServiceError(w, err, "Failed to update table")
		return
	}
	log.Info().Str("table_id", id).Str("status", requestPayload.Status).Msg("Table status updated")
	respondWithResult(w, http.StatusOK, res)
}

func (h *AdminHandler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Analytics(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to compute analytics")
		return
	}
	respondWithResult(w, http.StatusOK, res)
}

func toOptions(in []OptionRequest) []model.Option {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.Option, 0, len(in))
	for _, o := range in {
		out = append(out, model.Option{Name: o.Name, Price: o.Price})
	}
	return out
}
