package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	logger logrus.FieldLogger
}

func NewLogMailer(logger logrus.FieldLogger) *LogMailer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Text)
	return nil
}
