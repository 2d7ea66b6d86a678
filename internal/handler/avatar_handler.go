package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"phonebook/internal/errors"
	"phonebook/internal/middleware"
	"phonebook/internal/service"
)

// maxUploadSize is the largest accepted avatar upload.
const maxUploadSize = 5 * 1024 * 1024 // 5MB

var allowedAvatarExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// AvatarHandler handles avatar uploads.
type AvatarHandler struct {
	avatars service.AvatarService
}

// NewAvatarHandler creates a new avatar handler.
func NewAvatarHandler(avatars service.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

// AvatarResponse carries the published avatar reference.
type AvatarResponse struct {
	AvatarRef string `json:"avatar_ref"`
}

// Update godoc
// @Summary Upload a new avatar image
// @Tags avatars
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image (jpg/jpeg/png/webp/gif, max 5MB)"
// @Success 200 {object} AvatarResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /avatars [patch]
func (h *AvatarHandler) Update(c echo.Context) error {
	user := middleware.CurrentAccount(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		he := errors.MapErrorToHTTP(errors.ErrNoFile)
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAvatarExt[ext] {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "only jpg/jpeg/png/webp/gif allowed",
			Code:  "UNSUPPORTED_FILE_TYPE",
		})
	}
	if file.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "file too large (max 5MB)",
			Code:  "FILE_TOO_LARGE",
		})
	}

	src, err := file.Open()
	if err != nil {
		c.Logger().Error(err)
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "cannot open uploaded file",
			Code:  "UPLOAD_ERROR",
		})
	}
	defer src.Close()

	ref, err := h.avatars.Ingest(c.Request().Context(), user.ID, src)
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		if he.StatusCode == http.StatusInternalServerError {
			c.Logger().Error(err)
		}
		return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, AvatarResponse{AvatarRef: ref})
}
