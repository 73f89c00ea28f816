package listeners

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/HapoSeiz/AlertShip/internal/models"
	"github.com/HapoSeiz/AlertShip/pkg/config"
	"github.com/HapoSeiz/AlertShip/pkg/logger"
	"github.com/HapoSeiz/AlertShip/pkg/notification"
	"github.com/HapoSeiz/AlertShip/pkg/util"
)

// InitUserListeners wires account side effects: a fresh signup gets a
// verification mail with a one-time link.
func InitUserListeners(db *gorm.DB, mailer *notification.MailNotification) {
	util.Sig().Connect(models.SigUserCreate, func(sender any, params ...any) {
		user := sender.(*models.User)
		if user.Email == "" || user.Verified {
			return
		}

		token, err := models.IssueToken(db, user, models.TokenVerifyEmail)
		if err != nil {
			logger.Warn("issue verification token failed", zap.Error(err))
			return
		}
		cfg := config.GlobalConfig
		link := fmt.Sprintf("%s%s%s/verify?token=%s", cfg.BaseURL, cfg.APIPrefix, cfg.AuthPrefix, token.Token)

		go func() {
			if err := mailer.SendVerificationEmail(user.Email, user.Name, link); err != nil {
				logger.Warn("send verification mail failed",
					zap.String("email", user.Email), zap.Error(err))
			}
		}()
	})
}
