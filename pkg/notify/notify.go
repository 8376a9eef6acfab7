// Package notify is a thin client for the external notification
// dispatcher. The dispatcher owns delivery and retry; callers here only
// hand messages over.
package notify

import "github.com/sirupsen/logrus"

// Message is one notification to deliver.
type Message struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Sender delivers messages to the dispatcher.
type Sender interface {
	Send(msg Message) error
}

// LogSender is the development sender: it logs instead of delivering.
type LogSender struct {
	Logger *logrus.Logger
}

// Send logs the message.
func (s *LogSender) Send(msg Message) error {
	s.Logger.WithFields(logrus.Fields{
		"recipient": msg.Recipient,
		"subject":   msg.Subject,
	}).Info("Notification (dev mode, not delivered)")
	return nil
}
