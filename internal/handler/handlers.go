package handlers

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/HapoSeiz/AlertShip/internal/auth"
	"github.com/HapoSeiz/AlertShip/internal/geo"
	"github.com/HapoSeiz/AlertShip/pkg/config"
	"github.com/HapoSeiz/AlertShip/pkg/i18n"
	"github.com/HapoSeiz/AlertShip/pkg/notification"
	"github.com/HapoSeiz/AlertShip/pkg/sse"
)

type Handlers struct {
	db       *gorm.DB
	workflow *geo.Workflow
	hub      *sse.Hub
	i18n     *i18n.Support
	mailer   *notification.MailNotification
	verifier auth.TokenVerifier
}

func NewHandlers(db *gorm.DB, workflow *geo.Workflow, hub *sse.Hub,
	support *i18n.Support, mailer *notification.MailNotification,
	verifier auth.TokenVerifier) *Handlers {
	return &Handlers{
		db:       db,
		workflow: workflow,
		hub:      hub,
		i18n:     support,
		mailer:   mailer,
		verifier: verifier,
	}
}

func (h *Handlers) verifyLink(token string) string {
	cfg := config.GlobalConfig
	return fmt.Sprintf("%s%s%s/verify?token=%s", cfg.BaseURL, cfg.APIPrefix, cfg.AuthPrefix, token)
}

func (h *Handlers) resetLink(token string) string {
	cfg := config.GlobalConfig
	return fmt.Sprintf("%s/reset-password?token=%s", cfg.BaseURL, token)
}
