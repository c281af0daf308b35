package http

import (
	"context"
	"net/http"

	"storefront-api/internal/products"
	"storefront-api/internal/users"
	"storefront-api/internal/validation"

	"github.com/gin-gonic/gin"
)

type UserService interface {
	List(ctx context.Context) []users.User
	Count(ctx context.Context) int
	Get(ctx context.Context, rawID string) (users.User, error)
	Create(ctx context.Context, in users.CreateInput) (users.User, error)
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]products.Product, error)
	GetProduct(ctx context.Context, id string) (products.Product, error)
	CreateProduct(ctx context.Context, in products.CreateInput) (products.Product, error)
	UpdateProduct(ctx context.Context, id string, in products.UpdateInput) (products.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type Handler struct {
	users    UserService
	products ProductService

	createUser    *validation.Validator[users.CreateInput]
	createProduct *validation.Validator[products.CreateInput]
	updateProduct *validation.Validator[products.UpdateInput]
}

func NewHandler(userSvc UserService, productSvc ProductService) *Handler {
	return &Handler{
		users:         userSvc,
		products:      productSvc,
		createUser:    validation.MustNew[users.CreateInput](users.CreateShape),
		createProduct: validation.MustNew[products.CreateInput](products.CreateShape),
		updateProduct: validation.MustNew[products.UpdateInput](products.UpdateShape),
	}
}

type countResponse struct {
	Count int `json:"count" example:"1"`
}

// Routes is the route table served under the API prefix.
func (h *Handler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/users", Throttle: true, Status: http.StatusOK, Handle: h.ListUsers},
		{Method: http.MethodGet, Path: "/users/qty", Throttle: true, Status: http.StatusOK, Handle: h.CountUsers},
		{Method: http.MethodGet, Path: "/users/:id", Throttle: true, Status: http.StatusOK, Handle: h.GetUser},
		{Method: http.MethodPost, Path: "/users", Throttle: true, Body: h.createUser, Status: http.StatusCreated, Handle: h.CreateUser},

		{Method: http.MethodGet, Path: "/products", Throttle: true, Status: http.StatusOK, Handle: h.ListProducts},
		{Method: http.MethodGet, Path: "/products/:id", Throttle: true, Status: http.StatusOK, Handle: h.GetProduct},
		{Method: http.MethodPost, Path: "/products", Throttle: true, Body: h.createProduct, Status: http.StatusCreated, Handle: h.CreateProduct},
		{Method: http.MethodPut, Path: "/products/:id", Throttle: true, Body: h.updateProduct, Status: http.StatusOK, Handle: h.UpdateProduct},
		{Method: http.MethodDelete, Path: "/products/:id", Throttle: true, Status: http.StatusNoContent, Handle: h.DeleteProduct},
	}
}

// ListUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   users.User
// @Failure      429  {object}  errorResponse
// @Router       /users [get]
func (h *Handler) ListUsers(c *gin.Context, _ any) (any, error) {
	return h.users.List(c.Request.Context()), nil
}

// CountUsers godoc
// @Summary      Get users count
// @Tags         users
// @Produce      json
// @Success      200  {object}  countResponse
// @Failure      429  {object}  errorResponse
// @Router       /users/qty [get]
func (h *Handler) CountUsers(c *gin.Context, _ any) (any, error) {
	return countResponse{Count: h.users.Count(c.Request.Context())}, nil
}

// GetUser godoc
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  users.User
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      429  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context, _ any) (any, error) {
	return h.users.Get(c.Request.Context(), c.Param("id"))
}

// CreateUser godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      users.CreateInput  true  "User data"
// @Success      201   {object}  users.User
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /users [post]
func (h *Handler) CreateUser(c *gin.Context, body any) (any, error) {
	return h.users.Create(c.Request.Context(), body.(users.CreateInput))
}

// ListProducts godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Success      200  {array}   products.Product
// @Failure      400  {object}  errorResponse
// @Failure      429  {object}  errorResponse
// @Router       /products [get]
func (h *Handler) ListProducts(c *gin.Context, _ any) (any, error) {
	return h.products.ListProducts(c.Request.Context())
}

// GetProduct godoc
// @Summary      Get a product by id
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID (24 hex characters)"
// @Success      200  {object}  products.Product
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      429  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context, _ any) (any, error) {
	return h.products.GetProduct(c.Request.Context(), c.Param("id"))
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      products.CreateInput  true  "Product data"
// @Success      201   {object}  products.Product
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /products [post]
func (h *Handler) CreateProduct(c *gin.Context, body any) (any, error) {
	return h.products.CreateProduct(c.Request.Context(), body.(products.CreateInput))
}

// UpdateProduct godoc
// @Summary      Partially update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Product ID (24 hex characters)"
// @Param        body  body      products.UpdateInput  true  "Fields to change"
// @Success      200   {object}  products.Product
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context, body any) (any, error) {
	return h.products.UpdateProduct(c.Request.Context(), c.Param("id"), body.(products.UpdateInput))
}

// DeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Param        id   path  string  true  "Product ID (24 hex characters)"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      429  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context, _ any) (any, error) {
	return nil, h.products.DeleteProduct(c.Request.Context(), c.Param("id"))
}
