package server

import (
	"errors"
	"io"
	"log/slog"

	"sociopedia/internal/middleware"
	"sociopedia/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

func keepPicture() {}

// savePicture stores the optional "picture" form file of a multipart request
// and returns its stored name. It returns "" when no file was sent.
// discard removes the file again if this request created it; call it when
// the write the picture belongs to fails.
func (s *Server) savePicture(c *fiber.Ctx) (name string, discard func(), err error) {
	if !isMultipart(c) {
		return "", keepPicture, nil
	}

	file, err := c.FormFile("picture")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) {
			return "", keepPicture, nil
		}
		return "", keepPicture, models.NewValidationError("Invalid multipart form")
	}

	src, err := file.Open()
	if err != nil {
		return "", keepPicture, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return "", keepPicture, models.NewValidationError("Unable to read uploaded file")
	}

	ctx := c.UserContext()
	name, created, err := s.pictures.SaveUpload(ctx, file.Filename, file.Header.Get(fiber.HeaderContentType), content)
	if err != nil || !created {
		return name, keepPicture, err
	}
	return name, func() {
		if err := s.pictures.Remove(name); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove unused picture",
				slog.String("name", name), slog.String("error", err.Error()))
		}
	}, nil
}
