package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/usecase"
)

// ProductHandler catálogo de productos del almacén municipal.
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Crear producto del catálogo
// @Description  El SKU se guarda en mayúsculas. Requiere catalog:manage.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "SKU, nombre, serializado, unidad"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.Create(c.Context(), actorFrom(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Producto con saldo en bodega
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	return h.one(c, h.uc.GetByID, c.Params("id"))
}

// GetBySKU godoc
// @Summary      Producto por SKU
// @Description  Para lectores de etiqueta; el SKU no distingue mayúsculas.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        sku  path  string  true  "SKU"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/sku/{sku} [get]
func (h *ProductHandler) GetBySKU(c *fiber.Ctx) error {
	return h.one(c, h.uc.GetBySKU, c.Params("sku"))
}

func (h *ProductHandler) one(c *fiber.Ctx, get func(context.Context, string, string) (*dto.ProductResponse, error), key string) error {
	out, err := get(c.Context(), GetTenantID(c), key)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos (orden por SKU)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "1 a 100"  default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	out, err := h.uc.List(c.Context(), GetTenantID(c), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
