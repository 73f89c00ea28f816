package listeners

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/HapoSeiz/AlertShip/internal/models"
	"github.com/HapoSeiz/AlertShip/pkg/logger"
	"github.com/HapoSeiz/AlertShip/pkg/notification"
	"github.com/HapoSeiz/AlertShip/pkg/sse"
	"github.com/HapoSeiz/AlertShip/pkg/util"
)

// reportEvent is the SSE payload pushed to browsing views when a report
// lands in their city.
type reportEvent struct {
	Event string `json:"event"`
	ID    string `json:"id"`
	Type  string `json:"type"`
	City  string `json:"city"`
}

// InitReportListeners wires report side effects: live refresh for the
// city's open browsing views and alert mail to matching subscribers.
func InitReportListeners(db *gorm.DB, hub *sse.Hub, mailer *notification.MailNotification) {
	util.Sig().Connect(models.SigReportCreate, func(sender any, params ...any) {
		report := sender.(*models.OutageReport)

		hub.SendToGroupJSON(report.City, reportEvent{
			Event: "reports-updated",
			ID:    report.PublicID,
			Type:  report.Type,
			City:  report.City,
		})

		subscribers, err := models.SubscribersForReport(db, report)
		if err != nil {
			logger.Warn("load subscribers failed", zap.Error(err))
			return
		}
		for _, sub := range subscribers {
			to := sub.Email
			go func() {
				if err := mailer.SendOutageAlertEmail(to, report.Type, report.Locality, report.City); err != nil {
					logger.Warn("send outage alert failed",
						zap.String("email", to), zap.Error(err))
				}
			}()
		}
	})
}
