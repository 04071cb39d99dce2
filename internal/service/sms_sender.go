package service

import (
	"context"
	"log"
)

// SMSSender delivers short messages (verification codes, notices) to a
// mobile number.
type SMSSender interface {
	SendSMS(ctx context.Context, mobile, message string) error
}

// LogSMSSender is the development sender: it writes the message to the
// log instead of calling a gateway, and never fails. The real gateway
// integration was dropped with the provider account; this stands in
// for it.
type LogSMSSender struct {
	logger *log.Logger
}

func NewLogSMSSender(logger *log.Logger) *LogSMSSender {
	return &LogSMSSender{logger: logger}
}

func (s *LogSMSSender) SendSMS(_ context.Context, mobile, message string) error {
	s.logger.Printf("sms (mock) to=%s body=%q", mobile, message)
	return nil
}
