// Package mail defines the outbound email boundary.
//
// Workflows hand finished messages to a Sender and move on; delivery
// outcomes are the collaborator's problem. The default sender only logs,
// which keeps local and CI environments from needing a mail relay.
package mail

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Template identifiers for the messages this service sends.
const (
	TemplateInvite      = "accounts/email/invite"
	TemplateConfirm     = "accounts/email/confirm"
	TemplateReset       = "accounts/email/reset"
	TemplateChangeEmail = "accounts/email/change_email"
)

// Message is one outbound email.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]string
}

// Sender delivers outbound email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes outbound mail to the process log instead of delivering it.
type LogSender struct {
	Logger *log.Logger
}

// Send logs the message and reports success.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mail recipient is required")
	}
	logger := log.Default()
	if s != nil && s.Logger != nil {
		logger = s.Logger
	}
	logger.Printf("mail %s to %s: %s", msg.Template, msg.To, msg.Subject)
	return nil
}
