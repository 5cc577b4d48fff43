package routes

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/localgraph/backend/internal/server/middleware"
	"github.com/localgraph/backend/pkg/apperr"
)

// UploadFileHandler validates and admits a multipart-uploaded file into the
// input directory.
func UploadFileHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, apperr.Validationf("missing \"file\" form field"))
	}

	src, err := fh.Open()
	if err != nil {
		return respondError(c, apperr.Wrap(apperr.Internal, "failed to open uploaded file", err))
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return respondError(c, apperr.Wrap(apperr.Internal, "failed to read uploaded file", err))
	}

	file, err := app.Intake.Upload(c.Request().Context(), fh.Filename, content)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "file uploaded",
		"file":    file,
		"path":    filepath.Join(app.Config.InputDir, file.Name),
	})
}

// ListFilesHandler returns every uploaded file.
func ListFilesHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	files, err := app.Intake.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, files)
}

// DeleteFileHandler removes an uploaded file by id.
func DeleteFileHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	id := c.Param("id")
	if err := app.Intake.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "file deleted"})
}
