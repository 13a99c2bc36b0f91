package api

import (
	"net/http"
	"strings"

	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/labstack/echo/v4"
)

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *Server) createUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid email is required")
	}

	user, err := s.users.Create(c.Request().Context(), &models.User{Name: req.Name, Email: req.Email})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserView(*user))
}

func (s *Server) updateUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid email is required")
	}

	user, err := s.users.Update(c.Request().Context(), userID, service.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserView(*user))
}

func (s *Server) getUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserView(*user))
}

func (s *Server) listUsers(c echo.Context) error {
	from, size, err := s.pageParams(c)
	if err != nil {
		return err
	}

	users, err := s.users.FindAll(c.Request().Context(), from, size)
	if err != nil {
		return err
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) deleteUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	if err := s.users.Delete(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
