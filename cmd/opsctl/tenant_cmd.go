package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jhoicas/municipal-ops-api/internal/application/auth"
	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/application/usecase"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/infrastructure/postgres"
)

type tenantOutput struct {
	Tenant *dto.TenantResponse `json:"tenant"`
	Admin  *dto.UserResponse   `json:"admin"`
}

func newTenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Administración de municipios (tenants)",
	}
	cmd.AddCommand(newTenantCreateCmd())
	return cmd
}

func newTenantCreateCmd() *cobra.Command {
	var (
		tenant dto.CreateTenantRequest
		admin  dto.RegisterRequest
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un tenant y su usuario administrador en una sola transacción",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, log, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			admin.Role = entity.RoleAdmin
			out, err := createTenant(cmd.Context(), postgres.NewTxRunner(pool), tenant, admin)
			if err != nil {
				return err
			}
			log.Info().Str("tenant_id", out.Tenant.ID).Str("code", out.Tenant.Code).Msg("tenant creado")
			return writeJSON(out)
		},
	}
	cmd.Flags().StringVar(&tenant.Code, "code", "", "Código del municipio (requerido)")
	cmd.Flags().StringVar(&tenant.Name, "name", "", "Nombre del municipio (requerido)")
	cmd.Flags().StringVar(&admin.Email, "admin-email", "", "Email del administrador (requerido)")
	cmd.Flags().StringVar(&admin.Password, "admin-password", "", "Contraseña del administrador, mínimo 8 caracteres (requerido)")
	cmd.Flags().StringVar(&admin.Name, "admin-name", "", "Nombre del administrador")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("admin-email")
	_ = cmd.MarkFlagRequired("admin-password")
	return cmd
}

func createTenant(ctx context.Context, tx ports.TxRunner, tenant dto.CreateTenantRequest, admin dto.RegisterRequest) (*tenantOutput, error) {
	var out tenantOutput
	err := tx.Run(ctx, func(r ports.Repos) error {
		t, err := usecase.NewTenantUseCase(r.Tenants).Create(ctx, tenant)
		if err != nil {
			return err
		}
		u, err := auth.NewAuthUseCase(r.Users, r.Tenants, auth.JWTConfig{}).RegisterUser(ctx, t.ID, admin)
		if err != nil {
			return err
		}
		out = tenantOutput{Tenant: t, Admin: u}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
