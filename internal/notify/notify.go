// Package notify sends desktop notifications about contacts coming online or going offline.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notify

import (
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

const appName = "Messenger"

type sendFunc func(title, message string) error

type Notifier struct {
	logger  *zap.SugaredLogger
	enabled bool
	send    sendFunc
}

// New returns Notifier, a disabled Notifier only logs
func New(logger *zap.SugaredLogger, enabled bool) *Notifier {
	return &Notifier{
		logger:  logger,
		enabled: enabled,
		send:    beeepNotify,
	}
}

// Send sends a desktop notification with the given title and message.
func (n *Notifier) Send(title, message string) error {
	n.logger.Debugf("Notification: title=%q, message=%q", title, message)
	if !n.enabled {
		return nil
	}
	err := n.send(title, message)
	if err != nil {
		n.logger.Warnf("Sending notification: %v", err)
	}
	return err
}

// Presence announces that a contact went online or offline
func (n *Notifier) Presence(name string, online bool) error {
	if online {
		return n.Send(appName, name+" is online")
	}
	return n.Send(appName, name+" went offline")
}

// beeepNotify passes an empty icon so beeep uses platform defaults
func beeepNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}
