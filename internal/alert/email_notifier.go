package alert

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"sync"

	"finops-alerting/internal/config"
	"finops-alerting/internal/repository"
)

// EmailNotifier delivers alert notifications over SMTP. The transport
// settings are resolved once on first use, preferring the stored channel
// configuration over environment fallbacks.
type EmailNotifier struct {
	fallback config.EmailChannelConfig
	configs  repository.ChannelConfigRepository

	once     sync.Once
	settings emailSettings
	initErr  error
}

type emailSettings struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	UseTLS      bool
	UseStartTLS bool
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(fallback config.EmailChannelConfig, configs repository.ChannelConfigRepository) *EmailNotifier {
	return &EmailNotifier{fallback: fallback, configs: configs}
}

func (e *EmailNotifier) init(ctx context.Context) error {
	e.once.Do(func() {
		creds, err := loadChannelCredentials(ctx, e.configs, ChannelEmail)
		if err != nil {
			e.initErr = err
			return
		}

		settings := emailSettings{
			Host:        credString(creds, "smtp_host", e.fallback.SMTPHost),
			Port:        credInt(creds, "smtp_port", e.fallback.SMTPPort),
			Username:    credString(creds, "username", e.fallback.Username),
			Password:    credString(creds, "password", e.fallback.Password),
			From:        credString(creds, "from", e.fallback.From),
			UseTLS:      credBool(creds, "use_tls", e.fallback.UseTLS),
			UseStartTLS: credBool(creds, "use_starttls", e.fallback.UseStartTLS),
		}

		if settings.Host == "" || settings.From == "" {
			e.initErr = &ConfigurationError{Channel: ChannelEmail, Reason: "missing SMTP host or sender address"}
			return
		}

		e.settings = settings
	})
	return e.initErr
}

// Send delivers one HTML email to the destination address.
func (e *EmailNotifier) Send(ctx context.Context, address, subject, body string) error {
	if err := e.init(ctx); err != nil {
		return err
	}

	message := fmt.Sprintf("From: %s\r\n", e.settings.From)
	message += fmt.Sprintf("To: %s\r\n", address)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=UTF-8\r\n"
	message += "\r\n"
	message += body

	if err := e.deliver(address, message); err != nil {
		return &DeliveryError{Channel: ChannelEmail, Address: address, Err: err}
	}
	return nil
}

func (e *EmailNotifier) deliver(address, message string) error {
	addr := fmt.Sprintf("%s:%d", e.settings.Host, e.settings.Port)
	tlsConfig := &tls.Config{ServerName: e.settings.Host}

	var client *smtp.Client
	if e.settings.UseTLS {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("failed to connect with TLS: %w", err)
		}
		defer conn.Close()

		client, err = smtp.NewClient(conn, e.settings.Host)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
	} else {
		var err error
		client, err = smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}

		if e.settings.UseStartTLS {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}
	defer client.Quit()

	if e.settings.Username != "" {
		auth := smtp.PlainAuth("", e.settings.Username, e.settings.Password, e.settings.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(e.settings.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(address); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", address, err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	defer writer.Close()

	if _, err := writer.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
