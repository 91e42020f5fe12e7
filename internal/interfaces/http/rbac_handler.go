package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/rbac"
)

// RbacHandler roles personalizados y asignaciones (protegido).
type RbacHandler struct {
	uc *rbac.UseCase
}

// NewRbacHandler construye el handler.
func NewRbacHandler(uc *rbac.UseCase) *RbacHandler {
	return &RbacHandler{uc: uc}
}

// CreateRole godoc
// @Summary      Crear rol
// @Tags         rbac
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRoleRequest  true  "name, permissions (objeto:acción)"
// @Success      201   {object}  dto.RoleResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/rbac/roles [post]
func (h *RbacHandler) CreateRole(c *fiber.Ctx) error {
	var in dto.CreateRoleRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.CreateRole(c.Context(), actorFrom(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListRoles godoc
// @Summary      Listar roles del tenant
// @Tags         rbac
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RoleResponse
// @Router       /api/rbac/roles [get]
func (h *RbacHandler) ListRoles(c *fiber.Ctx) error {
	out, err := h.uc.ListRoles(c.Context(), actorFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Assign godoc
// @Summary      Asignar rol a usuario
// @Tags         rbac
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignRoleRequest  true  "user_id, role_id, service_id"
// @Success      201   {object}  dto.AssignmentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/rbac/assignments [post]
func (h *RbacHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignRoleRequest
	if !bind(c, &in) {
		return nil
	}
	out, err := h.uc.Assign(c.Context(), actorFrom(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListAssignments godoc
// @Summary      Listar asignaciones
// @Tags         rbac
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.AssignmentResponse
// @Router       /api/rbac/assignments [get]
func (h *RbacHandler) ListAssignments(c *fiber.Ctx) error {
	out, err := h.uc.ListAssignments(c.Context(), actorFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Revoke godoc
// @Summary      Revocar asignación
// @Tags         rbac
// @Security     Bearer
// @Param        id  path  string  true  "ID de la asignación"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rbac/assignments/{id} [delete]
func (h *RbacHandler) Revoke(c *fiber.Ctx) error {
	if err := h.uc.Revoke(c.Context(), actorFrom(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Check godoc
// @Summary      Verificar un permiso
// @Tags         rbac
// @Security     Bearer
// @Produce      json
// @Param        permission  query  string  true   "objeto:acción"
// @Param        service_id  query  string  false  "Dependencia"
// @Param        user_id     query  string  false  "Usuario (por defecto el propio)"
// @Success      200  {object}  dto.PermissionCheckResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/rbac/check [get]
func (h *RbacHandler) Check(c *fiber.Ctx) error {
	perm := c.Query("permission")
	if perm == "" {
		return badRequest(c, "VALIDATION", "permission es requerido")
	}
	userID := c.Query("user_id", GetUserID(c))
	out, err := h.uc.Can(c.Context(), actorFrom(c), userID, c.Query("service_id"), perm)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
