// Package pdf genera la orden de compra en PDF que se adjunta al email del mayorista.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Mayorista            │  N° Pedido + Fecha + QR      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MINORISTA: Nombre / Tel / Email                             │
//	│  ENTREGA: Dirección + contacto                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | SKU | Bodega | P.Unit | Total      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Total / Plazo de pago                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tyrex-b2b-api/internal/application/notification"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPurchaseOrderGenerator genera la orden de compra con Maroto v2.
type MarotoPurchaseOrderGenerator struct{}

// NewMarotoPurchaseOrderGenerator construye el generador.
func NewMarotoPurchaseOrderGenerator() *MarotoPurchaseOrderGenerator {
	return &MarotoPurchaseOrderGenerator{}
}

// GeneratePurchaseOrderPDF genera el PDF del pedido y devuelve sus bytes.
func (g *MarotoPurchaseOrderGenerator) GeneratePurchaseOrderPDF(_ context.Context, msg notification.Message) ([]byte, error) {
	if msg.Order == nil || msg.Retailer == nil || msg.Wholesaler == nil {
		return nil, fmt.Errorf("pdf: pedido incompleto")
	}
	order := msg.Order

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Orden de compra "+order.OrderNumber, true).
		WithAuthor("Tyrex B2B", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(order, msg.Wholesaler))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(retailerRow(msg.Retailer))
	m.AddRows(deliveryRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(msg) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(order))
	if order.Notes != "" {
		m.AddRows(notesRow(order.Notes))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: mayorista (izq), número de pedido y QR (der).
func headerRow(order *entity.Order, wholesaler *entity.Company) core.Row {
	return row.New(24).Add(
		col.New(7).Add(
			text.New(wholesaler.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Nuevo pedido recibido vía Tyrex B2B", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(3).Add(
			text.New("ORDEN DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(order.OrderNumber, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+order.OrderDate.Format("02.01.2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
		col.New(2).Add(code.NewQr(order.OrderNumber, props.Rect{Percent: 90, Center: true})),
	)
}

func retailerRow(retailer *entity.Company) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("MINORISTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(retailer.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Tel: %s   |   Email: %s",
				nonEmpty(retailer.Phone, "-"),
				nonEmpty(retailer.Email, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func deliveryRow(order *entity.Order) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("ENTREGA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Contacto: %s   |   Tel: %s",
				order.DeliveryAddress,
				nonEmpty(order.DeliveryContact, "-"),
				nonEmpty(order.DeliveryPhone, "-"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 4, align.Left),
		h("SKU", 2, align.Left),
		h("Bodega", 2, align.Left),
		h("P. Unit.", 1, align.Right),
		h("Total", 2, align.Right),
	)
}

// tableItemRows: una fila por línea no cancelada.
func tableItemRows(msg notification.Message) []core.Row {
	result := make([]core.Row, 0, len(msg.Order.Items))
	for _, it := range msg.Order.Items {
		if it.IsCanceled {
			continue
		}
		name := it.ProductName
		if it.ProductBrand != "" {
			name = it.ProductBrand + " " + name
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(4).Add(text.New(name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(it.ProductSKU,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(msg.WarehouseName(it.WarehouseID),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(formatMoney(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(formatMoney(it.TotalPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(order *entity.Order) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(20).Add(
		col.New(5),
		col.New(4).Add(
			label("Subtotal:"),
			label("TOTAL:"),
			label("Plazo de pago:"),
		),
		col.New(3).Add(
			value(formatMoney(order.Subtotal)+" "+order.Currency),
			value(formatMoney(order.TotalAmount)+" "+order.Currency),
			value(fmt.Sprintf("%d días", order.PaymentTermsDays)),
		),
	)
}

func notesRow(notes string) core.Row {
	return row.New(12).Add(col.New(12).Add(
		text.New("Notas: "+notes, props.Text{Size: 8, Top: 3, Color: colorGray}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney separa miles con punto y decimales con coma.
// Ej: 1265.88 → "1.265,88"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + groupThousands(intPart) + "," + frac
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
