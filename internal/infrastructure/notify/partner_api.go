package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/notification"
)

var _ notification.Channel = (*PartnerAPIChannel)(nil)

const userAgent = "Tyrex-B2B/1.0"

// PartnerAPIChannel envía el pedido al sistema del mayorista (Company.APIEndpoint).
// Usa net/http de la librería estándar, igual que los demás clientes REST del proyecto.
type PartnerAPIChannel struct {
	httpClient *http.Client
}

// NewPartnerAPIChannel construye el canal. timeout <= 0 usa 30 s.
func NewPartnerAPIChannel(timeout time.Duration) *PartnerAPIChannel {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PartnerAPIChannel{httpClient: &http.Client{Timeout: timeout}}
}

func (c *PartnerAPIChannel) Name() string { return notification.ChannelAPI }

// ── Payload ───────────────────────────────────────────────────────────────────

type partnerOrder struct {
	Source        string          `json:"source"`
	SourceOrderID string          `json:"source_order_id"`
	OrderNumber   string          `json:"order_number"`
	Retailer      partnerRetailer `json:"retailer"`
	OrderInfo     partnerInfo     `json:"order_info"`
	Delivery      partnerDelivery `json:"delivery"`
	Items         []partnerItem   `json:"items"`
}

type partnerRetailer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type partnerInfo struct {
	TotalAmount      string `json:"total_amount"`
	Currency         string `json:"currency"`
	PaymentTermsDays int    `json:"payment_terms_days"`
	OrderDate        string `json:"order_date"`
	Notes            string `json:"notes"`
}

type partnerDelivery struct {
	Address string `json:"address"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

type partnerItem struct {
	ProductName   string `json:"product_name"`
	ProductSKU    string `json:"product_sku"`
	ProductBrand  string `json:"product_brand"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	TotalPrice    string `json:"total_price"`
	WarehouseName string `json:"warehouse_name"`
}

func buildPartnerOrder(msg notification.Message) partnerOrder {
	o := msg.Order
	out := partnerOrder{
		Source:        "tyrex_b2b",
		SourceOrderID: o.ID,
		OrderNumber:   o.OrderNumber,
		Retailer: partnerRetailer{
			Name:  msg.Retailer.Name,
			Email: msg.Retailer.Email,
			Phone: msg.Retailer.Phone,
		},
		OrderInfo: partnerInfo{
			TotalAmount:      o.TotalAmount.StringFixed(2),
			Currency:         o.Currency,
			PaymentTermsDays: o.PaymentTermsDays,
			OrderDate:        o.OrderDate.Format(time.RFC3339),
			Notes:            o.Notes,
		},
		Delivery: partnerDelivery{
			Address: o.DeliveryAddress,
			Contact: o.DeliveryContact,
			Phone:   o.DeliveryPhone,
		},
		Items: make([]partnerItem, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		if it.IsCanceled {
			continue
		}
		out.Items = append(out.Items, partnerItem{
			ProductName:   it.ProductName,
			ProductSKU:    it.ProductSKU,
			ProductBrand:  it.ProductBrand,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice.StringFixed(2),
			TotalPrice:    it.TotalPrice.StringFixed(2),
			WarehouseName: msg.WarehouseName(it.WarehouseID),
		})
	}
	return out
}

// Send publica el pedido con POST JSON. Solo 2xx cuenta como recibido.
func (c *PartnerAPIChannel) Send(ctx context.Context, msg notification.Message) notification.Result {
	endpoint := msg.Wholesaler.APIEndpoint
	if endpoint == "" {
		return notification.Result{Reason: "el mayorista no tiene endpoint de API configurado", Permanent: true}
	}

	body, err := json.Marshal(buildPartnerOrder(msg))
	if err != nil {
		return notification.Result{Reason: fmt.Sprintf("serializar pedido: %v", err), Permanent: true}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return notification.Result{Reason: fmt.Sprintf("crear request: %v", err), Permanent: true}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if msg.Wholesaler.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+msg.Wholesaler.APIToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return notification.Result{Reason: fmt.Sprintf("timeout o cancelación: %v", ctx.Err())}
		}
		return notification.Result{Reason: fmt.Sprintf("llamada HTTP fallida: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return notification.Result{Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(raw))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return notification.Result{Success: true}
}
