package api

import (
	"net/http"
	"strconv"
	"time"

	"shareit/internal/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const headerRequestID = "X-Request-Id"

// requestID tags every request with an id, honoring one supplied by the
// caller so traces can span proxies.
func (s *Server) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Response().Header().Set(headerRequestID, id)
		return next(c)
	}
}

// requestLog logs one line per request and feeds the HTTP counter.
func (s *Server) requestLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		status := c.Response().Status
		requestID, _ := c.Get("request_id").(string)

		s.log.Info().
			Str("request_id", requestID).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request")
		metrics.IncHTTP(c.Path(), strconv.Itoa(status))

		// Already responded via c.Error above.
		return nil
	}
}

// rateLimit throttles by caller id, falling back to the remote address for
// anonymous routes.
func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get(HeaderUserID)
		if key == "" {
			key = c.RealIP()
		}

		allowed, err := s.limiter.Allow(c.Request().Context(), key)
		if err != nil {
			s.log.Error().Err(err).Msg("rate limiter unavailable, letting request through")
			return next(c)
		}
		if !allowed {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}
		return next(c)
	}
}
