package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
)

// permissionChecker contrato mínimo para consultar permisos en la base de datos.
// Lo implementa *auth.AuthUseCase.
type permissionChecker interface {
	HasPermission(ctx context.Context, userID, permission string) (bool, error)
}

// RequirePermission verifica contra la base de datos que el usuario del token tenga
// el permiso. Así un permiso retirado deja de valer aunque el token siga vigente.
// Debe usarse DESPUÉS de AuthMiddleware. Con enabled=false no comprueba nada.
//
// Comportamiento:
//   - 401 Unauthorized → no hay usuario en el contexto.
//   - 403 Forbidden → el usuario no tiene el permiso.
//   - 503 Service Unavailable → fallo al consultar la DB.
func RequirePermission(permission string, checker permissionChecker, enabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !enabled {
			return c.Next()
		}
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id no encontrado en el token",
			})
		}

		ok, err := checker.HasPermission(c.UserContext(), userID, permission)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "PERMISSION_CHECK_FAILED",
				Message: "no se pudo verificar el permiso, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "falta el permiso '" + permission + "'",
			})
		}
		return c.Next()
	}
}
