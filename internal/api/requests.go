package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type createRequestRequest struct {
	Description string `json:"description"`
}

func (s *Server) createRequest(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var req createRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	request, err := s.requests.Create(c.Request().Context(), userID, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRequestView(*request))
}

func (s *Server) listOwnRequests(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	requests, err := s.requests.FindAllByAuthor(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestViews(requests))
}

func (s *Server) listOtherRequests(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	from, size, err := s.pageParams(c)
	if err != nil {
		return err
	}

	requests, err := s.requests.FindAllOthers(c.Request().Context(), userID, from, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestViews(requests))
}

func (s *Server) getRequest(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	requestID, err := pathID(c, "requestId")
	if err != nil {
		return err
	}

	request, err := s.requests.FindByID(c.Request().Context(), userID, requestID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestView(*request))
}
