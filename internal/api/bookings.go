package api

import (
	"net/http"
	"strconv"
	"time"

	"shareit/internal/export"

	"github.com/labstack/echo/v4"
)

type createBookingRequest struct {
	ItemID int64      `json:"itemId"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
}

// validate checks request shape before the booking engine sees it: both
// bounds present, strictly ordered, and the window not already begun.
func (r createBookingRequest) validate(now time.Time) error {
	if r.ItemID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "itemId is required")
	}
	if r.Start == nil || r.End == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start and end are required")
	}
	if !r.Start.Before(*r.End) {
		return echo.NewHTTPError(http.StatusBadRequest, "start must be strictly before end")
	}
	if r.Start.Before(now) {
		return echo.NewHTTPError(http.StatusBadRequest, "start must not be in the past")
	}
	return nil
}

func (s *Server) createBooking(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(time.Now()); err != nil {
		return err
	}

	booking, err := s.bookings.Create(c.Request().Context(), userID, req.ItemID, *req.Start, *req.End)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toBookingView(*booking))
}

func (s *Server) approveBooking(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	bookingID, err := pathID(c, "bookingId")
	if err != nil {
		return err
	}
	approved, err := strconv.ParseBool(c.QueryParam("approved"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "approved must be true or false")
	}

	booking, err := s.bookings.Approve(c.Request().Context(), userID, bookingID, approved)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingView(*booking))
}

func (s *Server) getBooking(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	bookingID, err := pathID(c, "bookingId")
	if err != nil {
		return err
	}

	booking, err := s.bookings.FindByUserAndID(c.Request().Context(), bookingID, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingView(*booking))
}

func (s *Server) listBookingsByBooker(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	state, from, size, err := s.listParams(c)
	if err != nil {
		return err
	}

	bookings, err := s.bookings.FindAllByBooker(c.Request().Context(), userID, state, from, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingViews(bookings))
}

func (s *Server) listBookingsByOwner(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	state, from, size, err := s.listParams(c)
	if err != nil {
		return err
	}

	bookings, err := s.bookings.FindAllByOwner(c.Request().Context(), userID, state, from, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingViews(bookings))
}

// ownerBookingsReport streams every booking on the caller's items as a
// spreadsheet.
func (s *Server) ownerBookingsReport(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	bookings, err := s.bookings.Report(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	rows := make([]export.Row, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, export.Row{
			BookingID:  b.ID,
			ItemName:   b.ItemName,
			BookerName: b.BookerName,
			Start:      b.Start,
			End:        b.End,
			Status:     b.Status,
		})
	}

	file, err := export.BookingsReport(rows)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bookings.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return file.Write(c.Response())
}

func (s *Server) listParams(c echo.Context) (string, int, int, error) {
	state := c.QueryParam("state")
	if state == "" {
		state = "ALL"
	}
	from, size, err := s.pageParams(c)
	if err != nil {
		return "", 0, 0, err
	}
	return state, from, size, nil
}
