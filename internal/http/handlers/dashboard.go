package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/url"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/b23bb1023/Manhwa-agent/internal/dashboard"
	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
	"github.com/b23bb1023/Manhwa-agent/internal/reconcile"
)

//go:embed templates/*.html
var templateFS embed.FS

type DashboardHandler struct {
	appName    string
	controller *dashboard.Controller

	templateOnce sync.Once
	templates    *template.Template
	templateErr  error
}

type dashboardPageData struct {
	AppName string
	Cards   []reconcile.Card
}

func NewDashboardHandler(appName string, controller *dashboard.Controller) *DashboardHandler {
	return &DashboardHandler{appName: appName, controller: controller}
}

func (h *DashboardHandler) Page(c *fiber.Ctx) error {
	cards := h.controller.Refresh(c.UserContext())
	return h.render(c, "dashboard", dashboardPageData{AppName: h.appName, Cards: cards})
}

func (h *DashboardHandler) OpenFromCard(c *fiber.Ctx) error {
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid series id")
	}

	if err := h.controller.Open(c.UserContext(), id); err != nil {
		if errors.Is(err, readinglist.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Series not found")
		}
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to open series")
	}
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

func (h *DashboardHandler) render(c *fiber.Ctx, templateName string, data any) error {
	h.templateOnce.Do(func() {
		h.templates, h.templateErr = template.New("").ParseFS(templateFS, "templates/*.html")
	})

	if h.templateErr != nil || h.templates == nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Template load error")
	}
	c.Type("html", "utf-8")
	return h.templates.ExecuteTemplate(c.Response().BodyWriter(), templateName, data)
}
