// Package pdf renders the printable invoice with Maroto v2.
//
// A4 layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: shop name + VAT number  │  invoice number + date   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SELLER: address / phone / email                            │
//	│  CLIENT: name + VAT/phone                                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLE: description | price                                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALS: subtotal / VAT / TOTAL                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR code + legal note                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/fatoora-app/invoicing-api/internal/application/billing"
	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 92, Blue: 74}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var _ billing.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implements billing.InvoicePDFGenerator with Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator builds the generator.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF renders the document and returns its bytes. The QR
// footer embeds the exact PNG stored on the invoice, so the printed code
// matches the persisted artifact byte for byte.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	invoice *entity.Invoice,
	seller *entity.SellerProfile,
) ([]byte, error) {
	if seller == nil {
		seller = &entity.SellerProfile{}
	}
	title := seller.ShopName
	if title == "" {
		title = seller.Name
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Tax Invoice "+invoice.Number, true).
		WithAuthor(title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(invoice, seller, title))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(sellerRow(seller))
	m.AddRows(clientRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(invoice.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(invoice))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range qrFooterRows(invoice) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: shop name + VAT number (left), invoice number + date (right).
func headerRow(invoice *entity.Invoice, seller *entity.SellerProfile, title string) core.Row {
	date := invoice.InvoiceDate.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("VAT No: "+seller.VATNumber, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("SIMPLIFIED TAX INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date: "+date, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// sellerRow: seller contact details.
func sellerRow(seller *entity.SellerProfile) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("SELLER", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Address: %s   |   Phone: %s   |   Email: %s",
				nonEmpty(seller.Address, "—"),
				nonEmpty(seller.Phone, "—"),
				nonEmpty(seller.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// clientRow: buyer details.
func clientRow(invoice *entity.Invoice) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENT", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(invoice.ClientName, "—"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("VAT No: %s   |   Phone: %s",
				nonEmpty(invoice.ClientVATNumber, "—"),
				nonEmpty(invoice.ClientPhone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: items table header.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Description", 9, align.Left),
		h("Price (SAR)", 3, align.Right),
	)
}

// tableItemRows: one row per service line.
func tableItemRows(items []entity.LineItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, item := range items {
		result = append(result, row.New(7).Add(
			col.New(9).Add(text.New(
				item.Name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				item.Price.Round(2).StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: right-aligned totals block.
func totalsRow(invoice *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	vatLabel := fmt.Sprintf("VAT (%s%%):", invoice.VATRate.String())
	return row.New(26).Add(
		col.New(3),
		col.New(3).Add(
			label("Subtotal:"),
			label(vatLabel),
			grandLabel("TOTAL:"),
		),
		col.New(3).Add(
			value(invoice.Subtotal.Round(2).StringFixed(2)),
			value(invoice.VATAmount.Round(2).StringFixed(2)),
			grandValue(invoice.Total.Round(2).StringFixed(2)),
		),
		col.New(3),
	)
}

// qrFooterRows: the persisted QR image plus the legal note.
func qrFooterRows(invoice *entity.Invoice) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("E-INVOICE VERIFICATION", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	if png, ok := decodeQRDataURI(invoice.QRCodeDataURI); ok {
		rows = append(rows, row.New(50).Add(
			col.New(4).Add(image.NewFromBytes(png, extension.Png, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Scan the QR code with the ZATCA app\nto verify this invoice.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("SIMPLIFIED TAX INVOICE", props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 22,
					Left: 3, Color: colorPrimary,
				}),
			),
		))
	} else {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("SIMPLIFIED TAX INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center,
				Color: colorPrimary, Top: 2,
			}),
		)))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"This e-invoice was generated in accordance with the ZATCA e-invoicing "+
				"regulation. Keep this document as your tax record.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))
	return rows
}

// decodeQRDataURI extracts the PNG bytes from a data:image/png;base64 URI.
func decodeQRDataURI(uri string) ([]byte, bool) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(uri, prefix) {
		return nil, false
	}
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return nil, false
	}
	return png, true
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
