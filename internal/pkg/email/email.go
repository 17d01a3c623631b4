package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/visitportal/internal/pkg/export"
)

var (
	// ErrNotConfigured is returned when SMTP delivery is disabled
	ErrNotConfigured = errors.New("email delivery is not configured")
	// ErrInvalidRecipient is returned for addresses that are malformed or could inject headers
	ErrInvalidRecipient = errors.New("invalid recipient address")
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendItinerary(ctx context.Context, toEmail, toName string, it *export.Itinerary) error
	Enabled() bool
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	// UseTLS dials with implicit TLS (port 465). Otherwise STARTTLS is used when offered.
	UseTLS bool
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

// Enabled reports whether mail can be sent
func (s *EmailServiceImpl) Enabled() bool {
	return s.config.Enabled && s.config.Host != ""
}

// SendItinerary mails the rendered itinerary to the candidate
func (s *EmailServiceImpl) SendItinerary(ctx context.Context, toEmail, toName string, it *export.Itinerary) error {
	if !s.Enabled() {
		s.logger.Warn().Str("toEmail", toEmail).Msg("SMTP not configured - itinerary email not sent")
		return ErrNotConfigured
	}
	if toEmail == "" {
		return fmt.Errorf("candidate has no email address")
	}
	if err := checkRecipient(toEmail); err != nil {
		s.logger.Warn().Str("toEmail", toEmail).Msg("Refusing to mail an invalid recipient")
		return err
	}

	body, err := it.HTML()
	if err != nil {
		return fmt.Errorf("failed to render itinerary: %w", err)
	}

	msg := buildMessage(s.from(), formatAddress(toName, toEmail), it.Title(), body)
	if err := s.send(ctx, toEmail, msg); err != nil {
		s.logger.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send itinerary email")
		return err
	}
	s.logger.Info().Str("toEmail", toEmail).Str("candidate", it.CandidateName).Msg("Itinerary email sent")
	return nil
}

func checkRecipient(addr string) error {
	if strings.ContainsAny(addr, "\r\n") {
		return ErrInvalidRecipient
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	if parsed.Address != addr {
		return ErrInvalidRecipient
	}
	return nil
}

func (s *EmailServiceImpl) from() string {
	return formatAddress(s.config.FromName, s.config.FromEmail)
}

func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), addr)
}

// buildMessage assembles an RFC 5322 HTML message with headers in a fixed order
func buildMessage(from, to, subject string, htmlBody []byte) []byte {
	var b bytes.Buffer
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")
	b.Write(bytes.ReplaceAll(htmlBody, []byte("\n"), []byte("\r\n")))
	return b.Bytes()
}

func (s *EmailServiceImpl) send(ctx context.Context, toEmail string, message []byte) error {
	serverAddress := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	var conn net.Conn
	var err error
	if s.config.UseTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", serverAddress)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !s.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
				return fmt.Errorf("STARTTLS failed: %w", err)
			}
		}
	}

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(strings.TrimSpace(toEmail)); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return client.Quit()
}
