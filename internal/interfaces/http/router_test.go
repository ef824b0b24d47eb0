package http_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/fieldservice-invoicing/internal/application/auth"
	"github.com/jhoicas/fieldservice-invoicing/internal/application/dto"
	apphttp "github.com/jhoicas/fieldservice-invoicing/internal/interfaces/http"
)

func newLoginAPI(perMinute int) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:         auth.NewAuthUseCase(noUsers{}, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		JWTSecret:      testJWTSecret,
		Logger:         zerolog.Nop(),
		LoginPerMinute: perMinute,
	})
	return app
}

func TestLogin_LimitePorMinuto(t *testing.T) {
	app := newLoginAPI(2)
	body := dto.LoginRequest{Email: "nadie@example.com", Password: "x"}

	for i := 0; i < 2; i++ {
		status, _ := call(t, app, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, status)
	}
	status, raw := call(t, app, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "TOO_MANY_REQUESTS", errCode(t, raw))
}

func TestLogin_SinLimite(t *testing.T) {
	app := newLoginAPI(0)
	body := dto.LoginRequest{Email: "nadie@example.com", Password: "x"}

	for i := 0; i < 5; i++ {
		status, _ := call(t, app, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, status)
	}
}

func TestLogin_BodyInvalido(t *testing.T) {
	app := newLoginAPI(0)
	status, raw := call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "no-es-email"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, errCode(t, raw))
}
