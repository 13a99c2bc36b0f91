package api

import (
	"net/http"
	"strings"

	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/labstack/echo/v4"
)

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   int64  `json:"requestId"`
}

type updateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type addCommentRequest struct {
	Text string `json:"text"`
}

func (s *Server) createItem(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Available == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "available is required")
	}

	item, err := s.items.Create(c.Request().Context(), userID, &models.Item{
		Name:        req.Name,
		Description: req.Description,
		Available:   *req.Available,
		RequestID:   req.RequestID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toPlainItemView(*item))
}

func (s *Server) updateItem(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return err
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	item, err := s.items.Update(c.Request().Context(), userID, itemID, service.ItemUpdate{
		Name:        req.Name,
		Description: req.Description,
		Available:   req.Available,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPlainItemView(*item))
}

func (s *Server) getItem(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return err
	}

	details, err := s.items.FindByID(c.Request().Context(), userID, itemID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toItemView(*details, userID))
}

func (s *Server) listItemsByOwner(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	from, size, err := s.pageParams(c)
	if err != nil {
		return err
	}

	details, err := s.items.FindAllByOwner(c.Request().Context(), userID, from, size)
	if err != nil {
		return err
	}

	views := make([]itemView, 0, len(details))
	for _, d := range details {
		views = append(views, toItemView(d, userID))
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) searchItems(c echo.Context) error {
	if _, err := callerID(c); err != nil {
		return err
	}
	from, size, err := s.pageParams(c)
	if err != nil {
		return err
	}

	items, err := s.items.Search(c.Request().Context(), c.QueryParam("text"), from, size)
	if err != nil {
		return err
	}

	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, toPlainItemView(item))
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) addComment(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return err
	}

	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	comment, err := s.items.AddComment(c.Request().Context(), userID, itemID, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, commentView{
		ID:         comment.ID,
		Text:       comment.Text,
		AuthorName: comment.AuthorName,
		Created:    comment.CreatedAt,
	})
}
