package handler

import (
	"net/http"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type ContentHandler struct {
	contentService service.ContentService
}

func NewContentHandler(contentService service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func (h *ContentHandler) ListPosts(c echo.Context) error {
	page, err := intQuery(c, "page")
	if err != nil {
		return err
	}
	perPage, err := intQuery(c, "per_page")
	if err != nil {
		return err
	}

	posts, err := h.contentService.ListPosts(c.Request().Context(), page, perPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *ContentHandler) GetPost(c echo.Context) error {
	post, err := h.contentService.GetPost(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *ContentHandler) GetPage(c echo.Context) error {
	page, err := h.contentService.GetPage(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
