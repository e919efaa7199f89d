// Package pdf genera la orden de servicio impresa de un atendimento.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del taller   │  N° Ordem + Fecha + Estado    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre / CPF / Teléfono                            │
//	│  EQUIPO: Tipo de equipo / Tipo de servicio                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DESCRIPCIÓN (texto partido en líneas)                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  QR de referencia + Firmas                                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

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

	"github.com/jhoicas/techfix-api/internal/application/services"
	"github.com/jhoicas/techfix-api/internal/presenter"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// descriptionWidth caracteres por línea de la descripción.
const descriptionWidth = 95

// ── Generator ─────────────────────────────────────────────────────────────────

var _ services.TicketPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa services.TicketPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	shopName string
}

// NewMarotoPDFGenerator construye el generador; shopName va en el encabezado.
func NewMarotoPDFGenerator(shopName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{shopName: nonEmpty(shopName, "TechFix")}
}

// GenerateTicketPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateTicketPDF(_ context.Context, d presenter.Detail) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Ordem de Serviço #%d", d.ID), true).
		WithAuthor(g.shopName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.shopName, d))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(d))
	m.AddRows(equipmentRow(d))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	for _, r := range descriptionRows(d.Description) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(d))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del taller (izq) y N° de orden + fechas + estado (der).
func headerRow(shop string, d presenter.Detail) core.Row {
	return row.New(22).Add(
		col.New(7).Add(
			text.New(shop, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Assistência técnica", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ORDEM DE SERVIÇO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("#%d", d.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New("Abertura: "+d.CreatedAt+"   Atualização: "+d.UpdatedAt, props.Text{
				Size: 7, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New("Status: "+d.StatusLabel, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 17,
			}),
		),
	)
}

// clientRow: datos del cliente, ya enmascarados por el presenter.
func clientRow(d presenter.Detail) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(d.ClientName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("CPF: %s   |   Telefone: %s",
				d.ClientCPF,
				nonEmpty(d.ClientPhone, "-"),
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

// equipmentRow: tipo de equipo y de servicio.
func equipmentRow(d presenter.Detail) core.Row {
	return row.New(12).Add(
		col.New(6).Add(
			text.New("EQUIPAMENTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(d.EquipmentType, props.Text{Size: 9, Top: 6}),
		),
		col.New(6).Add(
			text.New("SERVIÇO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(d.ServiceType, "-"), props.Text{Size: 9, Top: 6}),
		),
	)
}

// descriptionRows: título + la descripción partida en líneas fijas.
func descriptionRows(description string) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("DESCRIÇÃO DO PROBLEMA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, chunk := range splitEvery([]rune(nonEmpty(description, "-")), descriptionWidth) {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 9, Top: 0.5, Left: 2}),
		)))
	}
	return rows
}

// footerRow: QR con la referencia de la orden + líneas de firma.
func footerRow(d presenter.Detail) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(fmt.Sprintf("TECHFIX-OS-%d", d.ID), props.Rect{
			Percent: 90,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Apresente esta ordem para retirar o equipamento.", props.Text{
				Size: 8, Top: 3, Left: 3, Color: colorGray,
			}),
			text.New("______________________________        ______________________________", props.Text{
				Size: 9, Top: 24, Left: 3,
			}),
			text.New("Assinatura do cliente                                        Assinatura do técnico", props.Text{
				Size: 7, Top: 29, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n runes, respetando saltos de línea.
func splitEvery(s []rune, n int) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' || i-start == n {
			if i > start {
				parts = append(parts, string(s[start:i]))
			}
			if i < len(s) && s[i] == '\n' {
				start = i + 1
			} else {
				start = i
			}
		}
	}
	return parts
}
