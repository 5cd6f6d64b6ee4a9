// Package zatca holds the infrastructure for the Fatoora e-invoicing
// pipeline: the minimal UBL-like XML document, the enveloped XML signature
// and the reporting submission client.
package zatca

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
)

// Fixed document codes for the simplified invoice.
const (
	// UBL code 388: tax invoice.
	invoiceTypeCode = "388"
	currencyCode    = "SAR"
)

// MalformedDocumentError reports a failure of the XML serializer itself.
// Domain-field validation is the caller's job, not the encoder's.
type MalformedDocumentError struct {
	Err error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("zatca: cannot serialize invoice document: %v", e.Err)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// BuildContext carries everything the XML encoder needs. The seller profile
// is injected explicitly so the encoder stays a pure function of its input.
type BuildContext struct {
	Invoice *entity.Invoice
	Seller  *entity.SellerProfile
}

// XMLBuilderService renders the minimal UBL-like invoice document. The
// structure is fixed: every node is always emitted, missing
// values become empty text content, and every text node is XML-escaped.
type XMLBuilderService struct{}

// NewXMLBuilderService creates the service.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build generates the invoice document:
//
//	<Invoice>
//	  <cbc:ID>, <cbc:IssueDate>, <cbc:InvoiceTypeCode>388,
//	  <cbc:DocumentCurrencyCode>SAR,
//	  <cac:AccountingSupplierParty>/<cac:Party>/<cbc:Name>,
//	  <cac:AccountingCustomerParty>/<cac:Party>/<cbc:Name>,
//	  <cac:LegalMonetaryTotal>/<cbc:PayableAmount>
//	</Invoice>
func (s *XMLBuilderService) Build(ctx *BuildContext) ([]byte, error) {
	if ctx == nil || ctx.Invoice == nil {
		return nil, &MalformedDocumentError{Err: fmt.Errorf("missing invoice in build context")}
	}

	sellerName := ""
	if ctx.Seller != nil {
		sellerName = ctx.Seller.Name
	}
	issueDate := ""
	if !ctx.Invoice.InvoiceDate.IsZero() {
		issueDate = ctx.Invoice.InvoiceDate.Format("2006-01-02")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "Invoice"}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, &MalformedDocumentError{Err: err}
	}

	writeLeaf(enc, "cbc:ID", ctx.Invoice.Number)
	writeLeaf(enc, "cbc:IssueDate", issueDate)
	writeLeaf(enc, "cbc:InvoiceTypeCode", invoiceTypeCode)
	writeLeaf(enc, "cbc:DocumentCurrencyCode", currencyCode)

	writeParty(enc, "cac:AccountingSupplierParty", sellerName)
	writeParty(enc, "cac:AccountingCustomerParty", ctx.Invoice.ClientName)

	openElement(enc, "cac:LegalMonetaryTotal")
	writeLeaf(enc, "cbc:PayableAmount", ctx.Invoice.Total.Round(2).StringFixed(2))
	closeElement(enc, "cac:LegalMonetaryTotal")

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, &MalformedDocumentError{Err: err}
	}
	if err := enc.Flush(); err != nil {
		return nil, &MalformedDocumentError{Err: err}
	}
	return buf.Bytes(), nil
}

// writeParty emits <wrapper><cac:Party><cbc:Name>name</cbc:Name></cac:Party></wrapper>.
// The wrapper is emitted even when the name is empty (fixed structure).
func writeParty(enc *xml.Encoder, wrapper, name string) {
	openElement(enc, wrapper)
	openElement(enc, "cac:Party")
	writeLeaf(enc, "cbc:Name", name)
	closeElement(enc, "cac:Party")
	closeElement(enc, wrapper)
}

func writeLeaf(enc *xml.Encoder, local, value string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

func openElement(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
}

func closeElement(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}
