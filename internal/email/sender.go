package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/merqhr/timesheet/internal/repository"
)

// Config holds SMTP settings for the submission sender.
type Config struct {
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	HRRecipients []string
}

// Sender mails an exported timesheet workbook to HR, with the
// submitting employee on CC.
type Sender struct {
	cfg    Config
	logger *zap.Logger
}

// NewSender creates a new submission sender
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// SendTimesheet sends the workbook at filePath for the given period label
// (e.g. "ጥር / Tir 2017") to the configured HR recipients.
func (s *Sender) SendTimesheet(filePath string, emp *repository.Employee, periodLabel string) error {
	s.logger.Info("Sending timesheet email",
		zap.String("employee", emp.FullName),
		zap.String("period", periodLabel),
		zap.Strings("recipients", s.cfg.HRRecipients))

	subject := fmt.Sprintf("MERQ Timesheet for %s - %s", periodLabel, emp.FullName)
	body := s.buildBody(emp, periodLabel)

	msg, err := s.buildMessage(emp.Email, subject, body, filePath)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	recipients := append(append([]string{}, s.cfg.HRRecipients...), emp.Email)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if err := smtp.SendMail(addr, auth, s.cfg.From, recipients, msg); err != nil {
		s.logger.Error("Failed to send timesheet email",
			zap.String("employee", emp.FullName),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Timesheet email sent",
		zap.String("employee", emp.FullName),
		zap.String("cc", emp.Email))
	return nil
}

// buildMessage assembles a multipart MIME message with the workbook attached.
func (s *Sender) buildMessage(cc, subject, body, filePath string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	headers := []string{
		fmt.Sprintf("From: %s", s.cfg.From),
		fmt.Sprintf("To: %s", strings.Join(s.cfg.HRRecipients, ", ")),
		fmt.Sprintf("Cc: %s", cc),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q", writer.Boundary()),
		"",
		"",
	}
	buf.WriteString(strings.Join(headers, "\r\n"))

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	filename := filepath.Base(filePath)
	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	fileHeader.Set("Content-Transfer-Encoding", "base64")
	fileHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	filePart, err := writer.CreatePart(fileHeader)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	// RFC 2045 caps encoded lines at 76 characters.
	for len(encoded) > 76 {
		if _, err := filePart.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return nil, err
		}
		encoded = encoded[76:]
	}
	if _, err := filePart.Write([]byte(encoded)); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildBody creates the email body content
func (s *Sender) buildBody(emp *repository.Employee, periodLabel string) string {
	var b strings.Builder
	b.WriteString("Dear HR Department,\n\n")
	b.WriteString("Please find attached the timesheet for your review and approval.\n\n")
	b.WriteString("Employee Details:\n")
	fmt.Fprintf(&b, "- Name: %s\n", emp.FullName)
	fmt.Fprintf(&b, "- Position: %s\n", emp.Position)
	fmt.Fprintf(&b, "- Department: %s\n", emp.Department)
	fmt.Fprintf(&b, "- Employee ID: %d\n", emp.ID)
	fmt.Fprintf(&b, "- Supervisor: %s\n", emp.SupervisorName)
	fmt.Fprintf(&b, "- Supervisor Position: %s\n\n", emp.SupervisorPosition)
	fmt.Fprintf(&b, "Timesheet Period: %s\n\n", periodLabel)
	b.WriteString("This timesheet has been generated and submitted through the MERQ Timesheet System.\n\n")
	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "- Generated on: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- CC: %s\n\n", emp.Email)
	fmt.Fprintf(&b, "Best regards,\n%s\n%s\nMERQ Consultancy PLC\n\n", emp.FullName, emp.Position)
	b.WriteString("---\nThis is an automated email from MERQ Timesheet System.\n")
	return b.String()
}
