package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"shareit/internal/config"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HeaderUserID carries the caller's user id on every authenticated route.
const HeaderUserID = "X-Sharer-User-Id"

// Server is the HTTP front of the application. It validates request shape,
// resolves the caller from the user header and maps domain errors to
// transport statuses; all business rules live in the services behind it.
type Server struct {
	cfg      *config.Config
	echo     *echo.Echo
	bookings *service.BookingService
	items    *service.ItemService
	users    *service.UserService
	requests *service.RequestService
	limiter  repository.RateLimiter
	log      zerolog.Logger
}

func NewServer(
	cfg *config.Config,
	bookings *service.BookingService,
	items *service.ItemService,
	users *service.UserService,
	requests *service.RequestService,
	limiter repository.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		cfg:      cfg,
		echo:     e,
		bookings: bookings,
		items:    items,
		users:    users,
		requests: requests,
		limiter:  limiter,
		log:      logger.With().Str("component", "http").Logger(),
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(s.requestID, s.requestLog)
	if limiter != nil {
		e.Use(s.rateLimit)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.POST("/bookings", s.createBooking)
	e.PATCH("/bookings/:bookingId", s.approveBooking)
	e.GET("/bookings/owner/report", s.ownerBookingsReport)
	e.GET("/bookings/owner", s.listBookingsByOwner)
	e.GET("/bookings/:bookingId", s.getBooking)
	e.GET("/bookings", s.listBookingsByBooker)

	e.POST("/items", s.createItem)
	e.PATCH("/items/:itemId", s.updateItem)
	e.GET("/items/search", s.searchItems)
	e.GET("/items/:itemId", s.getItem)
	e.GET("/items", s.listItemsByOwner)
	e.POST("/items/:itemId/comment", s.addComment)

	e.POST("/users", s.createUser)
	e.PATCH("/users/:userId", s.updateUser)
	e.GET("/users/:userId", s.getUser)
	e.GET("/users", s.listUsers)
	e.DELETE("/users/:userId", s.deleteUser)

	e.POST("/requests", s.createRequest)
	e.GET("/requests/all", s.listOtherRequests)
	e.GET("/requests/:requestId", s.getRequest)
	e.GET("/requests", s.listOwnRequests)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.HTTP.Port)
	s.log.Info().Str("addr", addr).Msg("HTTP API listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// callerID reads the user header. Every route except user management
// requires it.
func callerID(c echo.Context) (int64, error) {
	raw := c.Request().Header.Get(HeaderUserID)
	if raw == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s header is required", HeaderUserID))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s header must be a positive integer", HeaderUserID))
	}
	return id, nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// pageParams parses from/size with configured defaults. Negative or zero
// values pass through so the services can reject them uniformly.
func (s *Server) pageParams(c echo.Context) (int, int, error) {
	from := 0
	size := s.cfg.Pagination.DefaultSize

	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "from must be an integer")
		}
		from = parsed
	}
	if raw := c.QueryParam("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "size must be an integer")
		}
		size = parsed
	}
	if max := s.cfg.Pagination.MaxSize; max > 0 && size > max {
		size = max
	}
	return from, size, nil
}
