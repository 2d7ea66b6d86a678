package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"phonebook/internal/auth"
	"phonebook/internal/config"
	"phonebook/internal/handler"
	"phonebook/internal/middleware"
	"phonebook/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	users repository.UserRepository,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	verifyHandler *handler.VerifyHandler,
	avatarHandler *handler.AvatarHandler,
	contactHandler *handler.ContactHandler,
) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Published avatar assets
	e.Static("/avatars", cfg.AvatarDir)

	api := e.Group("/api")

	// Public routes
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.GET("/verify/:token", verifyHandler.Consume)
	api.POST("/verify", verifyHandler.Resend)

	// Every protected operation goes through the two-stage gateway:
	// signature+expiry first, then store equality.
	secured := api.Group("",
		middleware.JWT(cfg.JWTSecret),
		middleware.SessionGuard(users, tokenStore),
	)

	secured.GET("/logout", authHandler.Logout)
	secured.GET("/current", authHandler.Current)
	secured.PATCH("/avatars", avatarHandler.Update)

	secured.GET("/contacts", contactHandler.List)
	secured.POST("/contacts", contactHandler.Create)
	secured.GET("/contacts/:id", contactHandler.Get)
	secured.PUT("/contacts/:id", contactHandler.Update)
	secured.DELETE("/contacts/:id", contactHandler.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
