package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/notification"
)

var _ notification.Channel = (*SMSChannel)(nil)

// SMSConfig pasarela HTTP de SMS. GatewayURL vacío = solo se registra el mensaje en el log.
type SMSConfig struct {
	GatewayURL string
	APIKey     string
	Timeout    time.Duration
}

// SMSChannel aviso corto al teléfono del mayorista.
type SMSChannel struct {
	cfg        SMSConfig
	httpClient *http.Client
	log        zerolog.Logger
}

// NewSMSChannel construye el canal.
func NewSMSChannel(cfg SMSConfig, log zerolog.Logger) *SMSChannel {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMSChannel{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}, log: log}
}

func (c *SMSChannel) Name() string { return notification.ChannelSMS }

// SMSText texto del mensaje.
func SMSText(msg notification.Message) string {
	return fmt.Sprintf("TYREX B2B - Nuevo pedido\nPedido: %s\nMinorista: %s\nTotal: %s %s\nRevise su email para ver el detalle.",
		msg.Order.OrderNumber,
		msg.Retailer.Name,
		msg.Order.TotalAmount.StringFixed(2),
		msg.Order.Currency,
	)
}

type smsRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func (c *SMSChannel) Send(ctx context.Context, msg notification.Message) notification.Result {
	phone := msg.Wholesaler.Phone
	if phone == "" {
		return notification.Result{Reason: "el mayorista no tiene teléfono", Permanent: true}
	}
	text := SMSText(msg)
	if c.cfg.GatewayURL == "" {
		c.log.Info().Str("to", phone).Int("length", len(text)).Msg("SMS (sin pasarela configurada)")
		return notification.Result{Success: true}
	}

	body, err := json.Marshal(smsRequest{To: phone, Message: text})
	if err != nil {
		return notification.Result{Reason: fmt.Sprintf("serializar SMS: %v", err), Permanent: true}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return notification.Result{Reason: fmt.Sprintf("crear request: %v", err), Permanent: true}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return notification.Result{Reason: fmt.Sprintf("pasarela SMS: %v", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return notification.Result{Reason: fmt.Sprintf("pasarela SMS: HTTP %d", resp.StatusCode)}
	}
	return notification.Result{Success: true}
}
