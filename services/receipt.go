package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/gomail.v2"

	"fee-portal/logger"
	"fee-portal/models"
)

// MailConfig carries the SMTP settings for receipt delivery.
type MailConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// ReceiptService generates a PDF receipt for a settled payment and emails
// it to the student. Everything here is best-effort: failures are logged,
// never surfaced to the payer.
type ReceiptService struct {
	mail MailConfig
	log  *logger.Logger
}

// NewReceiptService builds the receipt service, or nil when SMTP
// credentials are not configured.
func NewReceiptService(mail MailConfig, log *logger.Logger) *ReceiptService {
	if mail.User == "" || mail.Pass == "" {
		log.Info("Receipt email is disabled (SMTP credentials not configured)")
		return nil
	}
	return &ReceiptService{mail: mail, log: log}
}

// Issue generates the receipt and emails it.
func (s *ReceiptService) Issue(payment *models.Payment, student *models.Student) {
	path, err := GenerateReceiptPDF(payment, student)
	if err != nil {
		s.log.Error("Error generating receipt for payment %s: %v", payment.ID, err)
		return
	}
	defer os.Remove(path)

	subject := "Fee Payment Receipt"
	body := fmt.Sprintf(`
<html>
<body>
	<p>Dear <strong>%s</strong>,</p>
	<p>Your fee payment of &#8377;%.2f has been processed successfully.
	Your receipt is attached.</p>
	<p>Best regards,<br/>
	<strong>Student Fee Portal</strong></p>
</body>
</html>
	`, student.Name, payment.Amount)

	if err := s.send(student.Email, subject, body, path); err != nil {
		s.log.Error("Error sending receipt for payment %s to %s: %v", payment.ID, student.Email, err)
		return
	}
	s.log.Info("Receipt for payment %s sent to %s", payment.ID, student.Email)
}

// GenerateReceiptPDF renders a payment receipt and returns the file path.
func GenerateReceiptPDF(payment *models.Payment, student *models.Student) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Fee Payment Receipt")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(40, 10, fmt.Sprintf("Receipt for: %s", student.Name))
	pdf.Ln(12)
	pdf.Cell(40, 10, fmt.Sprintf("Payment ID: %s", payment.ID))
	pdf.Ln(12)
	pdf.Cell(40, 10, fmt.Sprintf("Amount: INR %.2f", payment.Amount))
	pdf.Ln(12)
	pdf.Cell(40, 10, fmt.Sprintf("Method: %s", payment.PaymentMethod))
	pdf.Ln(12)
	if payment.CardLast4 != "" {
		pdf.Cell(40, 10, fmt.Sprintf("Card: **** **** **** %s", payment.CardLast4))
		pdf.Ln(12)
	}
	pdf.Cell(40, 10, fmt.Sprintf("Date: %s", time.Now().Format("02 Jan 2006 15:04")))
	pdf.Ln(12)
	pdf.Cell(40, 10, "Thank you for your payment.")

	path := filepath.Join(os.TempDir(), fmt.Sprintf("receipt_%s.pdf", payment.ID))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("error generating receipt PDF: %w", err)
	}
	return path, nil
}

func (s *ReceiptService) send(to, subject, body, attachment string) error {
	m := gomail.NewMessage()

	from := s.mail.From
	if from == "" {
		from = s.mail.User
	}
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	if attachment != "" {
		m.Attach(attachment)
	}

	port := 587
	if p, err := strconv.Atoi(s.mail.Port); err == nil {
		port = p
	}

	d := gomail.NewDialer(s.mail.Host, port, s.mail.User, s.mail.Pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
