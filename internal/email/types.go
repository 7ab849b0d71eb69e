// Package email envía alertas operativas por SMTP: avisos al operador cuando
// un provisioning o deprovisioning termina con partial failure y queda estado
// por reconciliar a mano.
package email

// Sender envía un mail con cuerpo HTML y/o texto plano.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPConfig contiene la configuración del servidor SMTP.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLSMode  string // "auto" | "starttls" | "ssl" | "none"
}
