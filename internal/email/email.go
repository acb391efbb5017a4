// Package email is a placeholder for the reminder delivery channel.
// Nothing is actually sent; reminders are recorded in the log until a
// real provider is wired up.
package email

import (
	"time"

	"go.uber.org/zap"
)

func ReminderNotice(log *zap.Logger, userEmail, taskTitle string, due time.Time) {
	log.Info("reminder scheduled (delivery not implemented)",
		zap.String("email", userEmail),
		zap.String("task", taskTitle),
		zap.Time("due", due),
	)
}
