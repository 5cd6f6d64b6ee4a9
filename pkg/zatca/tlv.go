// Package zatca implements the TLV (Tag-Length-Value) QR payload required by
// the ZATCA "Fatoora" simplified e-invoicing scheme. Each field is emitted as
// one tag byte, one length byte and the raw UTF-8 value; the concatenated
// buffer is base64-encoded and embedded in the invoice QR code.
package zatca

import (
	"encoding/base64"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// QR field tags in the order mandated by the simplified invoice scheme.
const (
	TagSellerName   byte = 1
	TagVATNumber    byte = 2
	TagTimestamp    byte = 3
	TagInvoiceTotal byte = 4
	TagVATAmount    byte = 5
)

// maxValueLen is the largest value a single length byte can describe.
const maxValueLen = 255

// Field is one TLV entry: a tag in 1..255 and a UTF-8 value whose encoded
// byte length must fit in a single unsigned byte.
type Field struct {
	Tag   byte
	Value string
}

// EncodingError reports a field that cannot be serialized into the TLV
// buffer. Tag identifies the offending field.
type EncodingError struct {
	Tag    byte
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("zatca: tlv field %d: %s", e.Tag, e.Reason)
}

// EncodeTLV serializes the fields, in the given order, into a single TLV
// buffer and returns it base64-encoded (standard alphabet, no line breaks).
//
// All fields are validated before any byte is emitted: a value whose UTF-8
// length exceeds 255 bytes fails with *EncodingError instead of silently
// wrapping the length byte.
func EncodeTLV(fields []Field) (string, error) {
	size := 0
	for _, f := range fields {
		if f.Tag == 0 {
			return "", &EncodingError{Tag: f.Tag, Reason: "tag must be in 1..255"}
		}
		n := len(f.Value) // len() of a string is its UTF-8 byte count
		if n > maxValueLen {
			return "", &EncodingError{
				Tag:    f.Tag,
				Reason: fmt.Sprintf("value is %d bytes, exceeds the single-byte length limit of %d", n, maxValueLen),
			}
		}
		size += 2 + n
	}

	buf := make([]byte, 0, size)
	for _, f := range fields {
		buf = append(buf, f.Tag, byte(len(f.Value)))
		buf = append(buf, f.Value...)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Generate builds the base64 TLV payload for a simplified invoice QR code:
// tags 1..5 carry the seller name, seller VAT registration number, ISO-8601
// issuance timestamp, VAT-inclusive total and VAT amount.
//
// Amounts are rendered with exactly two fraction digits and a period
// separator, no thousands grouping (e.g. 1234.5 -> "1234.50"). Text fields
// are NFC-normalized so the byte length of composed characters (Arabic seller
// names in particular) is stable across input sources.
func Generate(sellerName, vatNumber, timestamp string, totalAmount, vatAmount decimal.Decimal) (string, error) {
	return EncodeTLV([]Field{
		{Tag: TagSellerName, Value: norm.NFC.String(sellerName)},
		{Tag: TagVATNumber, Value: norm.NFC.String(vatNumber)},
		{Tag: TagTimestamp, Value: timestamp},
		{Tag: TagInvoiceTotal, Value: formatAmount(totalAmount)},
		{Tag: TagVATAmount, Value: formatAmount(vatAmount)},
	})
}

// formatAmount renders a monetary value for the TLV payload: two decimals,
// period separator, no locale formatting.
func formatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
