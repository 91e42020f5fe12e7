package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	appanalytics "github.com/jhoicas/municipal-ops-api/internal/application/analytics"
	"github.com/jhoicas/municipal-ops-api/internal/application/assets"
	"github.com/jhoicas/municipal-ops-api/internal/application/auth"
	"github.com/jhoicas/municipal-ops-api/internal/application/rbac"
	"github.com/jhoicas/municipal-ops-api/internal/application/requests"
	"github.com/jhoicas/municipal-ops-api/internal/application/tickets"
	"github.com/jhoicas/municipal-ops-api/internal/application/units"
	"github.com/jhoicas/municipal-ops-api/internal/application/usecase"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/infrastructure/realtime"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	UserUC       *usecase.UserUseCase
	TenantUC     *usecase.TenantUseCase
	TenantStatus *usecase.TenantStatusService
	ServiceUC    *usecase.ServiceUseCase
	ProductUC    *usecase.ProductUseCase
	Requests     *requests.UseCase
	Units        *units.UseCase
	Assets       *assets.UseCase
	Tickets      *tickets.UseCase
	Rbac         *rbac.UseCase
	DashboardUC  *appanalytics.DashboardUseCase
	Hub          *realtime.Hub
	Limiter      *limiter.Limiter // nil = sin límite
	Ping         func(ctx context.Context) error
	AppName      string
	JWTSecret    string
	JWTIssuer    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.AppName, deps.Ping))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	rateLimit := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Limiter != nil {
		rateLimit = RateLimit(deps.Limiter)
	}
	authenticated := []fiber.Handler{
		AuthMiddleware(deps.JWTSecret, deps.JWTIssuer),
		RequireActiveTenant(deps.TenantStatus),
		rateLimit,
	}

	// Auth: login público (límite por IP); registro solo para admin del tenant.
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", rateLimit, authHandler.Login)
	authGroup.Post("/register", append(authenticated, RequireRole(entity.RoleAdmin), authHandler.Register)...)

	protected := api.Group("/", authenticated...)

	me := NewMeHandler(deps.UserUC, deps.TenantUC)
	protected.Get("/me", me.User)
	protected.Get("/tenants/me", me.Tenant)

	services := protected.Group("/services")
	serviceHandler := NewServiceHandler(deps.ServiceUC)
	services.Post("/", serviceHandler.Create)
	services.Get("/", serviceHandler.List)
	services.Get("/:id", serviceHandler.GetByID)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Get("/:id", productHandler.GetByID)

	reqs := protected.Group("/requests")
	requestHandler := NewRequestHandler(deps.Requests)
	reqs.Post("/", requestHandler.Create)
	reqs.Get("/", requestHandler.List)
	reqs.Get("/:id", requestHandler.Get)
	reqs.Put("/:id", requestHandler.UpdateDraft)
	reqs.Get("/:id/events", requestHandler.Events)
	reqs.Post("/:id/submit", requestHandler.Submit)
	reqs.Post("/:id/approve", requestHandler.Approve)
	reqs.Post("/:id/reject", requestHandler.Reject)
	reqs.Post("/:id/cancel", requestHandler.Cancel)
	reqs.Post("/:id/pickup-lock", requestHandler.LockForPickup)
	reqs.Post("/:id/pickup-sign", requestHandler.SignPickup)
	reqs.Post("/:id/execute", requestHandler.Execute)

	unitHandler := NewUnitHandler(deps.Units)
	unitGroup := protected.Group("/units")
	unitGroup.Get("/", unitHandler.List)
	unitGroup.Get("/:id", unitHandler.Get)
	unitGroup.Get("/:id/movements", unitHandler.Movements)
	unitGroup.Post("/:id/transition", unitHandler.Transition)
	protected.Post("/scan/substitute", unitHandler.Substitute)
	protected.Get("/scan/:code", unitHandler.GetByCode)
	protected.Post("/stock/invoices", unitHandler.ReceiveInvoice)

	assetGroup := protected.Group("/assets")
	assetHandler := NewAssetHandler(deps.Assets)
	assetGroup.Get("/", assetHandler.List)
	assetGroup.Get("/:id", assetHandler.Get)
	assetGroup.Get("/:id/history", assetHandler.History)
	assetGroup.Post("/:id/move", assetHandler.Move)
	assetGroup.Post("/:id/custodian", assetHandler.ChangeCustodian)
	assetGroup.Post("/:id/status", assetHandler.ChangeStatus)

	ticketGroup := protected.Group("/tickets")
	ticketHandler := NewTicketHandler(deps.Tickets)
	ticketGroup.Post("/", ticketHandler.Create)
	ticketGroup.Get("/", ticketHandler.List)
	ticketGroup.Get("/:id", ticketHandler.Get)
	ticketGroup.Get("/:id/sla", ticketHandler.SLA)
	ticketGroup.Post("/:id/messages", ticketHandler.AddMessage)
	ticketGroup.Post("/:id/status", ticketHandler.ChangeStatus)
	ticketGroup.Post("/:id/escalate", ticketHandler.Escalate)
	ticketGroup.Post("/:id/requests", ticketHandler.LinkRequest)

	rbacGroup := protected.Group("/rbac")
	rbacHandler := NewRbacHandler(deps.Rbac)
	rbacGroup.Post("/roles", rbacHandler.CreateRole)
	rbacGroup.Get("/roles", rbacHandler.ListRoles)
	rbacGroup.Post("/assignments", rbacHandler.Assign)
	rbacGroup.Get("/assignments", rbacHandler.ListAssignments)
	rbacGroup.Delete("/assignments/:id", rbacHandler.Revoke)
	rbacGroup.Get("/check", rbacHandler.Check)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)

	if deps.Hub != nil {
		eventsHandler := NewEventsHandler(deps.Hub)
		protected.Get("/events/stream", eventsHandler.Stream)
	}
}

func healthHandler(appName string, ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.Locals(localInternalError, err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": appName, "db": "unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": appName})
	}
}
