// Package pdf renders quotes and invoices as printable documents.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/diewo77/go-devis/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Renderer turns a document into PDF bytes. issuer may be nil when no company
// was configured.
type Renderer interface {
	Quote(q *models.Quote, issuer *models.Company) ([]byte, error)
	Invoice(inv *models.Invoice, issuer *models.Company) ([]byte, error)
}

// Generator is the gofpdf Renderer. It only uses the core fonts, so text is
// converted from UTF-8 to cp1252.
type Generator struct{}

func New() *Generator { return &Generator{} }

type document struct {
	title    string
	number   string
	date     string
	status   string
	client   *models.Client
	lines    []row
	ht       decimal.Decimal
	tva      decimal.Decimal
	ttc      decimal.Decimal
	footnote string
}

type row struct {
	name  string
	qty   int
	price decimal.Decimal
	rate  decimal.NullDecimal
	ht    decimal.Decimal
	ttc   decimal.Decimal
}

func (g *Generator) Quote(q *models.Quote, issuer *models.Company) ([]byte, error) {
	d := document{
		title:    "DEVIS",
		number:   q.Number,
		date:     q.CreatedAt.Format("02/01/2006"),
		status:   string(q.Status),
		client:   q.Client,
		ht:       q.TotalHT,
		tva:      q.TotalTVA,
		ttc:      q.TotalTTC,
		footnote: q.Comment,
	}
	for _, l := range q.Lines {
		d.lines = append(d.lines, newRow(l.ProductID, l.Product, l.LinePricing))
	}
	return g.render(d, issuer)
}

func (g *Generator) Invoice(inv *models.Invoice, issuer *models.Company) ([]byte, error) {
	d := document{
		title:  "FACTURE",
		number: inv.Number,
		date:   inv.CreatedAt.Format("02/01/2006"),
		status: string(inv.Status),
		client: inv.Client,
		ht:     inv.MontantHT,
		tva:    inv.MontantTVA,
		ttc:    inv.MontantTTC,
	}
	if inv.PaymentMethod != nil {
		d.footnote = "Mode de paiement : " + string(*inv.PaymentMethod)
	}
	for _, l := range inv.Lines {
		d.lines = append(d.lines, newRow(l.ProductID, l.Product, l.LinePricing))
	}
	return g.render(d, issuer)
}

func newRow(productID uint, p *models.Product, lp models.LinePricing) row {
	name := "Produit #" + strconv.FormatUint(uint64(productID), 10)
	if p != nil && p.Name != "" {
		name = p.Name
	}
	return row{name: name, qty: lp.Quantity, price: lp.UnitPriceHT, rate: lp.TaxRate, ht: lp.TotalLineHT, ttc: lp.TotalLineTTC}
}

func (g *Generator) render(d document, issuer *models.Company) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(d.title+" "+d.number), false)
	pdf.AddPage()

	if issuer != nil {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 6, tr(issuer.Name))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(90, 4, tr(issuer.FullAddress()), "", "L", false)
		if issuer.SIRET != "" {
			pdf.Cell(0, 4, tr("SIRET : "+issuer.SIRET))
			pdf.Ln(4)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(d.title+" "+d.number))
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Date : %s    Statut : %s", d.date, d.status)))
	pdf.Ln(6)
	if d.client != nil {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, tr("Client : "+d.client.Name))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		if addr := d.client.FullAddress(); addr != "" {
			pdf.MultiCell(90, 4, tr(addr), "", "L", false)
		}
	}
	pdf.Ln(4)

	widths := []float64{80, 15, 25, 20, 25, 25}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range []string{"Produit", "Qté", "PU HT", "TVA %", "Total HT", "Total TTC"} {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, r := range d.lines {
		rate := "-"
		if r.rate.Valid {
			rate = r.rate.Decimal.StringFixed(2)
		}
		pdf.CellFormat(widths[0], 6, tr(trim(r.name, 45)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, strconv.Itoa(r.qty), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, r.price.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, rate, "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, r.ht.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, r.ttc.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	for _, t := range []struct {
		label string
		value decimal.Decimal
	}{{"Total HT", d.ht}, {"TVA", d.tva}, {"Total TTC", d.ttc}} {
		pdf.CellFormat(165, 6, tr(t.label), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, tr(t.value.StringFixed(2)+" €"), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if d.footnote != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr(d.footnote), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", d.number, err)
	}
	return buf.Bytes(), nil
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
