package zatca_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
	"github.com/fatoora-app/invoicing-api/internal/infrastructure/zatca"
)

func buildTestInvoice() *entity.Invoice {
	return &entity.Invoice{
		ID:          "11111111-1111-1111-1111-111111111111",
		Number:      "INV-0042",
		ClientName:  "Al Noor Trading",
		Total:       decimal.RequireFromString("115.00"),
		InvoiceDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func buildTestSeller() *entity.SellerProfile {
	return &entity.SellerProfile{
		Name:      "Acme Co",
		VATNumber: "310123456789103",
	}
}

func parseDoc(t *testing.T, data []byte) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data), "document must be well-formed XML")
	return doc
}

// findText returns the text of the first element matching the path below the
// root, e.g. "cbc:ID" or "cac:AccountingCustomerParty/cac:Party/cbc:Name".
func findText(t *testing.T, doc *etree.Document, path string) string {
	t.Helper()
	el := doc.Root().FindElement(path)
	require.NotNil(t, el, "element %s must exist", path)
	return el.Text()
}

func TestBuild_Structure(t *testing.T) {
	svc := zatca.NewXMLBuilderService()
	out, err := svc.Build(&zatca.BuildContext{Invoice: buildTestInvoice(), Seller: buildTestSeller()})
	require.NoError(t, err)

	doc := parseDoc(t, out)
	require.Equal(t, "Invoice", doc.Root().Tag)

	assert.Equal(t, "INV-0042", findText(t, doc, "cbc:ID"))
	assert.Equal(t, "2024-01-15", findText(t, doc, "cbc:IssueDate"))
	assert.Equal(t, "388", findText(t, doc, "cbc:InvoiceTypeCode"))
	assert.Equal(t, "SAR", findText(t, doc, "cbc:DocumentCurrencyCode"))
	assert.Equal(t, "Acme Co", findText(t, doc, "cac:AccountingSupplierParty/cac:Party/cbc:Name"))
	assert.Equal(t, "Al Noor Trading", findText(t, doc, "cac:AccountingCustomerParty/cac:Party/cbc:Name"))
	assert.Equal(t, "115.00", findText(t, doc, "cac:LegalMonetaryTotal/cbc:PayableAmount"))
}

// TestBuild_EscapesSpecialCharacters: buyer names containing markup
// characters must round-trip through parse unchanged.
func TestBuild_EscapesSpecialCharacters(t *testing.T) {
	inv := buildTestInvoice()
	inv.ClientName = `Smith & Sons <Trading> "Riyadh"`

	svc := zatca.NewXMLBuilderService()
	out, err := svc.Build(&zatca.BuildContext{Invoice: inv, Seller: buildTestSeller()})
	require.NoError(t, err)

	doc := parseDoc(t, out)
	assert.Equal(t, inv.ClientName,
		findText(t, doc, "cac:AccountingCustomerParty/cac:Party/cbc:Name"))
}

// TestBuild_EmptyBuyerStillEmitsCustomerParty: the six top-level nodes are
// fixed; a missing value serializes as empty text, never as a missing node.
func TestBuild_EmptyBuyerStillEmitsCustomerParty(t *testing.T) {
	inv := buildTestInvoice()
	inv.ClientName = ""

	svc := zatca.NewXMLBuilderService()
	out, err := svc.Build(&zatca.BuildContext{Invoice: inv, Seller: nil})
	require.NoError(t, err)

	doc := parseDoc(t, out)
	assert.Equal(t, "", findText(t, doc, "cac:AccountingCustomerParty/cac:Party/cbc:Name"))
	assert.Equal(t, "", findText(t, doc, "cac:AccountingSupplierParty/cac:Party/cbc:Name"))

	// the full fixed set of children under the root, in order
	children := doc.Root().ChildElements()
	require.Len(t, children, 7)
	order := make([]string, 0, len(children))
	for _, c := range children {
		order = append(order, c.FullTag())
	}
	assert.Equal(t, []string{
		"cbc:ID", "cbc:IssueDate", "cbc:InvoiceTypeCode", "cbc:DocumentCurrencyCode",
		"cac:AccountingSupplierParty", "cac:AccountingCustomerParty", "cac:LegalMonetaryTotal",
	}, order)
}

func TestBuild_ArabicContent(t *testing.T) {
	inv := buildTestInvoice()
	inv.ClientName = "شركة النور للتجارة"
	seller := buildTestSeller()
	seller.Name = "مؤسسة الأمل"

	svc := zatca.NewXMLBuilderService()
	out, err := svc.Build(&zatca.BuildContext{Invoice: inv, Seller: seller})
	require.NoError(t, err)

	doc := parseDoc(t, out)
	assert.Equal(t, "مؤسسة الأمل", findText(t, doc, "cac:AccountingSupplierParty/cac:Party/cbc:Name"))
	assert.Equal(t, "شركة النور للتجارة", findText(t, doc, "cac:AccountingCustomerParty/cac:Party/cbc:Name"))
}

func TestBuild_Deterministic(t *testing.T) {
	svc := zatca.NewXMLBuilderService()
	ctx := &zatca.BuildContext{Invoice: buildTestInvoice(), Seller: buildTestSeller()}

	first, err1 := svc.Build(ctx)
	second, err2 := svc.Build(ctx)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestBuild_NilContext(t *testing.T) {
	svc := zatca.NewXMLBuilderService()

	_, err := svc.Build(nil)
	var malformed *zatca.MalformedDocumentError
	assert.ErrorAs(t, err, &malformed)

	_, err = svc.Build(&zatca.BuildContext{Invoice: nil})
	assert.ErrorAs(t, err, &malformed)
}
