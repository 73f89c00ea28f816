package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HapoSeiz/AlertShip/internal/models"
	"github.com/HapoSeiz/AlertShip/pkg/middleware"
	"github.com/HapoSeiz/AlertShip/pkg/response"
)

// requirePageLogin guards browser pages. Unlike API routes, anonymous
// visitors are bounced to the locale root instead of getting 401 JSON.
func (h *Handlers) requirePageLogin(c *gin.Context) {
	if models.CurrentUser(c) == nil {
		target := "/"
		if lang := middleware.Lang(c); lang != "" && lang != "en" {
			target = "/" + lang
		}
		c.Redirect(http.StatusFound, target)
		c.Abort()
		return
	}
	c.Next()
}

func (h *Handlers) handleHomePage(c *gin.Context) {
	lang := middleware.Lang(c)
	response.Success(c, gin.H{
		"page":    "home",
		"locale":  lang,
		"title":   h.i18n.T(lang, "home.title", nil),
		"tagline": h.i18n.T(lang, "app.tagline", nil),
	})
}

func (h *Handlers) handleDashboardPage(c *gin.Context) {
	lang := middleware.Lang(c)
	user := models.CurrentUser(c)
	response.Success(c, gin.H{
		"page":   "dashboard",
		"locale": lang,
		"title":  h.i18n.T(lang, "dashboard.title", nil),
		"user":   user,
	})
}

func (h *Handlers) handleReportPage(c *gin.Context) {
	lang := middleware.Lang(c)
	response.Success(c, gin.H{
		"page":   "report",
		"locale": lang,
		"title":  h.i18n.T(lang, "report.title", nil),
	})
}

func (h *Handlers) handleHealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}
