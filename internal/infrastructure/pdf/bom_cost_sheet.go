// Package pdf genera la hoja de costo de fabricación (simulación de BOM) en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + parámetros  │  Fecha de generación       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Sec | Componente | x Unidad | Requerida | En mano |  │
//	│         Faltante | Costo unit. | Costo línea                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Costo total / Costo unitario                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
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
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/costeo-api/internal/application/costing"
)

var _ costing.CostSheetRenderer = (*BomCostSheetGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// BomCostSheetGenerator implementa costing.CostSheetRenderer usando Maroto v2.
// Los montos se formatean según el idioma configurado (separadores de miles y decimales).
type BomCostSheetGenerator struct {
	printer  *message.Printer
	decimals int
}

// NewBomCostSheetGenerator construye el generador; decimals es la escala mostrada de los montos.
func NewBomCostSheetGenerator(lang language.Tag, decimals int) *BomCostSheetGenerator {
	if decimals < 0 {
		decimals = 2
	}
	return &BomCostSheetGenerator{printer: message.NewPrinter(lang), decimals: decimals}
}

// RenderBomCostSheet genera el PDF y devuelve sus bytes.
func (g *BomCostSheetGenerator) RenderBomCostSheet(_ context.Context, sheet costing.BomCostSheet) ([]byte, error) {
	if len(sheet.Nodes) == 0 {
		return nil, fmt.Errorf("pdf: hoja de costo sin nodos")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Hoja de costo "+sheet.ProductID, true).
		Build()

	m := maroto.New(cfg)
	root := sheet.Nodes[0]

	m.AddRows(g.headerRow(sheet))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, n := range sheet.Nodes[1:] {
		m.AddRows(g.componentRow(n))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(root, sheet.CurrencyUomID))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *BomCostSheetGenerator) headerRow(sheet costing.BomCostSheet) core.Row {
	facility := sheet.FacilityID
	if facility == "" {
		facility = "todas"
	}
	return row.New(18).Add(
		col.New(8).Add(
			text.New("HOJA DE COSTO DE FABRICACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Producto: %s   |   Cantidad: %s   |   Moneda: %s   |   Bodega: %s",
				sheet.ProductID, g.qty(sheet.Quantity), sheet.CurrencyUomID, facility,
			), props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado: "+sheet.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Sec.", 1, align.Center),
		h("Componente", 3, align.Left),
		h("x Unidad", 1, align.Right),
		h("Requerida", 1, align.Right),
		h("En mano", 1, align.Right),
		h("Faltante", 1, align.Right),
		h("Costo unit.", 2, align.Right),
		h("Costo línea", 2, align.Right),
	)
}

func (g *BomCostSheetGenerator) componentRow(n costing.BomNode) core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1}))
	}
	name := n.ProductID
	if n.IsSubAssembly {
		name += " (sub-ensamble)"
	}
	shortage := n.RequiredQuantity.Sub(n.QuantityOnHand)
	shortageCol := cell("-", 1, align.Right)
	if shortage.IsPositive() {
		shortageCol = col.New(1).Add(text.New(g.qty(shortage), props.Text{
			Size: 8, Align: align.Right, Top: 1, Color: colorAlert, Style: fontstyle.Bold,
		}))
	}
	return row.New(6).Add(
		cell(fmt.Sprintf("%d", n.SequenceNum), 1, align.Center),
		cell(name, 3, align.Left),
		cell(g.qty(n.EdgeQuantity), 1, align.Right),
		cell(g.qty(n.RequiredQuantity), 1, align.Right),
		cell(g.qty(n.QuantityOnHand), 1, align.Right),
		shortageCol,
		cell(g.money(n.UnitCost), 2, align.Right),
		cell(g.money(n.LineCost), 2, align.Right),
	)
}

func (g *BomCostSheetGenerator) totalsRow(root costing.BomNode, currency string) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: top, Color: colorPrimary})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(
			label("Costo total:"),
			text.New("Costo unitario:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 6}),
		),
		col.New(3).Add(
			value(currency+" "+g.money(root.LineCost), 0),
			value(currency+" "+g.money(root.UnitCost), 6),
		),
	)
}

// money monto con separadores del idioma y la escala configurada.
func (g *BomCostSheetGenerator) money(d decimal.Decimal) string {
	f, _ := d.Round(int32(g.decimals)).Float64()
	return g.printer.Sprint(number.Decimal(f, number.Scale(g.decimals)))
}

// qty cantidades: sin ceros de relleno.
func (g *BomCostSheetGenerator) qty(d decimal.Decimal) string {
	f, _ := d.Float64()
	return g.printer.Sprint(number.Decimal(f, number.MaxFractionDigits(4)))
}
