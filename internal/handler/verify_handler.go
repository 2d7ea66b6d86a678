package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"phonebook/internal/errors"
	"phonebook/internal/service"
)

// VerifyHandler handles email verification endpoints.
type VerifyHandler struct {
	verifications service.VerificationService
}

// NewVerifyHandler creates a new verification handler.
func NewVerifyHandler(verifications service.VerificationService) *VerifyHandler {
	return &VerifyHandler{verifications: verifications}
}

// ResendRequest asks for a fresh verification mail.
type ResendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Consume godoc
// @Summary Redeem a one-time verification token
// @Tags verify
// @Produce json
// @Param token path string true "Verification token"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /verify/{token} [get]
func (h *VerifyHandler) Consume(c echo.Context) error {
	token := c.Param("token")

	if _, err := h.verifications.Consume(c.Request().Context(), token); err != nil {
		he := errors.MapErrorToHTTP(err)
		if he.StatusCode == http.StatusInternalServerError {
			c.Logger().Error(err)
		}
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "verification successful",
	})
}

// Resend godoc
// @Summary Re-issue the verification mail for an unverified account
// @Tags verify
// @Accept json
// @Produce json
// @Param request body ResendRequest true "Account email"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /verify [post]
func (h *VerifyHandler) Resend(c echo.Context) error {
	var req ResendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required field email")
	}

	if err := h.verifications.Resend(c.Request().Context(), req.Email); err != nil {
		he := errors.MapErrorToHTTP(err)
		if he.StatusCode == http.StatusInternalServerError {
			c.Logger().Error(err)
		}
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "verification email sent",
	})
}
