package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/notification"
)

var _ notification.Channel = (*EmailChannel)(nil)

// SMTPConfig servidor de correo saliente.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// MailSender envía mensajes ya armados. *gomail.Dialer lo implementa.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// PurchaseOrderPDF genera el PDF adjunto. *pdf.MarotoPurchaseOrderGenerator lo implementa.
type PurchaseOrderPDF interface {
	GeneratePurchaseOrderPDF(ctx context.Context, msg notification.Message) ([]byte, error)
}

// EmailChannel envía el pedido al email del mayorista con la orden de compra adjunta.
type EmailChannel struct {
	from   string
	sender MailSender
	pdf    PurchaseOrderPDF // nil = sin adjunto
	log    zerolog.Logger
}

// NewEmailChannel construye el canal sobre un dialer SMTP de gomail.
func NewEmailChannel(cfg SMTPConfig, pdf PurchaseOrderPDF, log zerolog.Logger) *EmailChannel {
	return NewEmailChannelWithSender(cfg.From, gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), pdf, log)
}

// NewEmailChannelWithSender permite inyectar el transporte.
func NewEmailChannelWithSender(from string, sender MailSender, pdf PurchaseOrderPDF, log zerolog.Logger) *EmailChannel {
	return &EmailChannel{from: from, sender: sender, pdf: pdf, log: log}
}

func (c *EmailChannel) Name() string { return notification.ChannelEmail }

// Subject asunto del email.
func Subject(msg notification.Message) string {
	return fmt.Sprintf("Nuevo pedido: %s - %s", msg.Order.OrderNumber, msg.Retailer.Name)
}

func (c *EmailChannel) Send(ctx context.Context, msg notification.Message) notification.Result {
	to := msg.Wholesaler.Email
	if to == "" {
		return notification.Result{Reason: "el mayorista no tiene email", Permanent: true}
	}

	html, err := renderHTML(msg)
	if err != nil {
		return notification.Result{Reason: fmt.Sprintf("plantilla: %v", err), Permanent: true}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", to)
	if msg.Retailer.Email != "" {
		m.SetHeader("Reply-To", msg.Retailer.Email)
	}
	m.SetHeader("Subject", Subject(msg))
	m.SetBody("text/plain", renderText(msg))
	m.AddAlternative("text/html", html)

	if c.pdf != nil {
		doc, err := c.pdf.GeneratePurchaseOrderPDF(ctx, msg)
		if err != nil {
			c.log.Warn().Err(err).Str("order_id", msg.Order.ID).Msg("email sin PDF adjunto")
		} else {
			m.Attach(msg.Order.OrderNumber+".pdf", gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(doc)
				return err
			}))
		}
	}

	if err := c.sender.DialAndSend(m); err != nil {
		return notification.Result{Reason: fmt.Sprintf("SMTP: %v", err)}
	}
	return notification.Result{Success: true}
}

func renderText(msg notification.Message) string {
	o := msg.Order
	var b strings.Builder
	fmt.Fprintf(&b, "Nuevo pedido %s de %s\n\n", o.OrderNumber, msg.Retailer.Name)
	fmt.Fprintf(&b, "Fecha: %s\n", o.OrderDate.Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "Total: %s %s\n", o.TotalAmount.StringFixed(2), o.Currency)
	fmt.Fprintf(&b, "Plazo de pago: %d días\n\n", o.PaymentTermsDays)
	fmt.Fprintf(&b, "Entrega: %s\nContacto: %s (%s)\n\n", o.DeliveryAddress, o.DeliveryContact, o.DeliveryPhone)
	for _, it := range o.Items {
		if it.IsCanceled {
			continue
		}
		fmt.Fprintf(&b, "- %d x %s [%s] @ %s = %s (%s)\n",
			it.Quantity, it.ProductName, it.ProductSKU,
			it.UnitPrice.StringFixed(2), it.TotalPrice.StringFixed(2),
			msg.WarehouseName(it.WarehouseID))
	}
	if o.Notes != "" {
		fmt.Fprintf(&b, "\nNotas: %s\n", o.Notes)
	}
	return b.String()
}

var emailTmpl = template.Must(template.New("order").Parse(`<h2>Nuevo pedido {{.Number}}</h2>
<p><strong>Minorista:</strong> {{.Retailer}}<br>
<strong>Total:</strong> {{.Total}} {{.Currency}}<br>
<strong>Plazo de pago:</strong> {{.Terms}} días</p>
<p><strong>Entrega:</strong> {{.Address}}<br>{{.Contact}} {{.Phone}}</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Cant.</th><th>Producto</th><th>SKU</th><th>Bodega</th><th>P. Unit.</th><th>Total</th></tr>
{{range .Items}}<tr><td>{{.Quantity}}</td><td>{{.Name}}</td><td>{{.SKU}}</td><td>{{.Warehouse}}</td><td>{{.Unit}}</td><td>{{.Total}}</td></tr>
{{end}}</table>
{{if .Notes}}<p><em>{{.Notes}}</em></p>{{end}}`))

type emailItem struct {
	Quantity  int
	Name      string
	SKU       string
	Warehouse string
	Unit      string
	Total     string
}

func renderHTML(msg notification.Message) (string, error) {
	o := msg.Order
	data := struct {
		Number, Retailer, Total, Currency string
		Terms                             int
		Address, Contact, Phone, Notes    string
		Items                             []emailItem
	}{
		Number:   o.OrderNumber,
		Retailer: msg.Retailer.Name,
		Total:    o.TotalAmount.StringFixed(2),
		Currency: o.Currency,
		Terms:    o.PaymentTermsDays,
		Address:  o.DeliveryAddress,
		Contact:  o.DeliveryContact,
		Phone:    o.DeliveryPhone,
		Notes:    o.Notes,
	}
	for _, it := range o.Items {
		if it.IsCanceled {
			continue
		}
		data.Items = append(data.Items, emailItem{
			Quantity:  it.Quantity,
			Name:      it.ProductName,
			SKU:       it.ProductSKU,
			Warehouse: msg.WarehouseName(it.WarehouseID),
			Unit:      it.UnitPrice.StringFixed(2),
			Total:     it.TotalPrice.StringFixed(2),
		})
	}
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
