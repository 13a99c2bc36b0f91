package api

import (
	"errors"
	"fmt"
	"net/http"

	"shareit/internal/service"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleError renders every error as {"error": message}. Domain errors map
// by kind; anything unclassified is a 500 with the detail kept out of the
// response body.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := statusOf(err)
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		message = "internal server error"
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, errorResponse{Error: message})
}

func statusOf(err error) (int, string) {
	var domainErr *service.Error
	if errors.As(err, &domainErr) {
		switch domainErr.Kind {
		case service.KindNotFound, service.KindOwnerConflict:
			// Owner-books-own-item is reported as absence, same as the
			// unauthorized visibility cases.
			return http.StatusNotFound, domainErr.Message
		case service.KindBadRequest, service.KindNotAvailable:
			return http.StatusBadRequest, domainErr.Message
		case service.KindConflict:
			return http.StatusConflict, domainErr.Message
		}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprintf("%v", httpErr.Message)
	}

	return http.StatusInternalServerError, err.Error()
}
