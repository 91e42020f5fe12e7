package ports

import (
	"context"
	"fmt"

	"github.com/jhoicas/municipal-ops-api/internal/domain"
)

// Require devuelve domain.ErrForbidden si el actor no tiene el permiso.
func Require(ctx context.Context, az Authorizer, actor Actor, serviceID, permission string) error {
	ok, err := az.Can(ctx, actor, serviceID, permission)
	if err != nil {
		return fmt.Errorf("verificar permiso %s: %w", permission, err)
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
