package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog"

	"github.com/jhoicas/fieldservice-invoicing/internal/application/auth"
	"github.com/jhoicas/fieldservice-invoicing/internal/application/billing"
	"github.com/jhoicas/fieldservice-invoicing/internal/application/dto"
	"github.com/jhoicas/fieldservice-invoicing/internal/application/session"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	SessionUC  *session.UseCase
	InvoiceUC  *billing.InvoiceUseCase
	InvoicePDF *billing.PDFUseCase
	JWTSecret  string
	Logger     zerolog.Logger

	// LoginPerMinute limita intentos de login por IP; 0 desactiva el límite.
	LoginPerMinute int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", RequestLogger(deps.Logger))

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	if deps.LoginPerMinute > 0 {
		authGroup.Post("/login", loginLimiter(deps.LoginPerMinute), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	// Facturas en curso: solo quienes facturan en campo
	sessions := protected.Group("/sessions", RequireRole(entity.RoleTechnician, entity.RoleAdmin))
	sh := NewSessionHandler(deps.SessionUC)
	sessions.Post("/", sh.Open)
	sessions.Get("/:id", sh.Get)
	sessions.Get("/:id/fields", sh.Fields)
	sessions.Get("/:id/events", sh.Events)
	sessions.Post("/:id/scans", sh.Scan)
	sessions.Post("/:id/selection", sh.ConfirmSelection)
	sessions.Delete("/:id/selection", sh.CancelSelection)
	sessions.Patch("/:id/lines/:lineId", sh.EditLine)
	sessions.Delete("/:id/lines/:lineId", sh.DeleteLine)
	sessions.Post("/:id/adjustments", sh.AddAdjustment)
	sessions.Patch("/:id/adjustments/:entryId", sh.EditAdjustment)
	sessions.Put("/:id/adjustments/:entryId/account", sh.ReassignAccount)
	sessions.Delete("/:id/adjustments/:entryId", sh.RemoveAdjustment)
	sessions.Put("/:id/collections", sh.SetCollections)
	sessions.Post("/:id/save", sh.Save)

	// Facturas guardadas
	invoices := protected.Group("/invoices")
	ih := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDF)
	invoices.Get("/", ih.List)
	invoices.Get("/:id", ih.GetByID)
	invoices.Get("/:id/pdf", ih.DownloadPDF)
}

func loginLimiter(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "TOO_MANY_REQUESTS",
				Message: "demasiados intentos de inicio de sesión, intente en un minuto",
			})
		},
	})
}
