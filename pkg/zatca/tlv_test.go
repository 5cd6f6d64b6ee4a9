package zatca_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatoora-app/invoicing-api/pkg/zatca"
)

// ──────────────────────────────────────────────────────────────────────────────
// TestGenerate_ExactVector is the canary for the QR wire format: if anyone
// changes the tag order, the length prefix or the amount formatting, the
// base64 output changes and this test fails before the code ships.
//
// Buffer layout for the vector below:
//
//	2*5 header bytes + (7 + 15 + 25 + 6 + 5) value bytes = 68 bytes total
// ──────────────────────────────────────────────────────────────────────────────

const (
	testSellerName = "Acme Co"
	testVATNumber  = "310123456789103"
	testTimestamp  = "2024-01-15T10:30:00+03:00"

	testExpectedB64 = "AQdBY21lIENvAg8zMTAxMjM0NTY3ODkxMDMDGTIwMjQtMDEtMTVUMTA6MzA6MDArMDM6MDAEBjEwMC4wMAUFMTUuMDA="
)

func TestGenerate_ExactVector(t *testing.T) {
	got, err := zatca.Generate(
		testSellerName, testVATNumber, testTimestamp,
		decimal.NewFromInt(100), decimal.NewFromInt(15),
	)
	require.NoError(t, err)
	assert.Equal(t, testExpectedB64, got)

	raw, err := base64.StdEncoding.DecodeString(got)
	require.NoError(t, err)
	assert.Len(t, raw, 68, "TLV buffer must be 2*5 + (7+15+25+6+5) = 68 bytes")
}

func TestGenerate_Deterministic(t *testing.T) {
	total := decimal.RequireFromString("250.75")
	vat := decimal.RequireFromString("32.71")

	first, err1 := zatca.Generate(testSellerName, testVATNumber, testTimestamp, total, vat)
	second, err2 := zatca.Generate(testSellerName, testVATNumber, testTimestamp, total, vat)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second, "identical input must always produce a byte-identical payload")
}

// TestGenerate_RoundTrip decodes the payload and re-parses every tag/length/
// value triple, including a multi-byte Arabic seller name.
func TestGenerate_RoundTrip(t *testing.T) {
	sellerAr := "مؤسسة الأمل للتجارة"

	got, err := zatca.Generate(
		sellerAr, "310987654321003", "2024-06-01T09:00:00+03:00",
		decimal.RequireFromString("1234.5"), decimal.RequireFromString("0.1"),
	)
	require.NoError(t, err)

	fields := decodeTLV(t, got)
	require.Len(t, fields, 5)

	assert.Equal(t, []byte{1, 2, 3, 4, 5}, tags(fields))
	assert.Equal(t, sellerAr, fields[0].Value)
	assert.Equal(t, "310987654321003", fields[1].Value)
	assert.Equal(t, "2024-06-01T09:00:00+03:00", fields[2].Value)
	assert.Equal(t, "1234.50", fields[3].Value, "total must carry exactly two fraction digits")
	assert.Equal(t, "0.10", fields[4].Value, "VAT must carry exactly two fraction digits")
}

func TestGenerate_TwoDecimalFormatting(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1234.5", "1234.50"},
		{"0.1", "0.10"},
		{"100", "100.00"},
		{"99.999", "100.00"}, // rounded, not truncated
		{"1000000", "1000000.00"},
	}
	for _, tc := range cases {
		got, err := zatca.Generate(
			testSellerName, testVATNumber, testTimestamp,
			decimal.RequireFromString(tc.in), decimal.Zero,
		)
		require.NoError(t, err)
		fields := decodeTLV(t, got)
		assert.Equal(t, tc.want, fields[3].Value, "total %q", tc.in)
		assert.NotContains(t, fields[3].Value, ",", "no thousands separators")
	}
}

func TestEncodeTLV_RejectsOverlongValue(t *testing.T) {
	long := strings.Repeat("a", 256)
	_, err := zatca.EncodeTLV([]zatca.Field{{Tag: 1, Value: long}})

	var encErr *zatca.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, byte(1), encErr.Tag)
}

// TestEncodeTLV_OverlongMultibyte pins that the guard counts UTF-8 bytes, not
// runes: 128 Arabic letters are 256 bytes and must be rejected.
func TestEncodeTLV_OverlongMultibyte(t *testing.T) {
	long := strings.Repeat("م", 128)
	require.Equal(t, 256, len(long))

	_, err := zatca.EncodeTLV([]zatca.Field{{Tag: zatca.TagSellerName, Value: long}})

	var encErr *zatca.EncodingError
	assert.ErrorAs(t, err, &encErr)
}

func TestEncodeTLV_BoundaryValueAccepted(t *testing.T) {
	exact := strings.Repeat("a", 255)
	got, err := zatca.EncodeTLV([]zatca.Field{{Tag: 7, Value: exact}})
	require.NoError(t, err)

	fields := decodeTLV(t, got)
	require.Len(t, fields, 1)
	assert.Equal(t, exact, fields[0].Value)
}

func TestEncodeTLV_RejectsZeroTag(t *testing.T) {
	_, err := zatca.EncodeTLV([]zatca.Field{{Tag: 0, Value: "x"}})
	assert.Error(t, err)
}

// TestEncodeTLV_AllOrNothing: a bad field anywhere in the sequence must fail
// the whole encoding, never a partial buffer.
func TestEncodeTLV_AllOrNothing(t *testing.T) {
	out, err := zatca.EncodeTLV([]zatca.Field{
		{Tag: 1, Value: "ok"},
		{Tag: 2, Value: strings.Repeat("x", 300)},
	})
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestEncodeTLV_EmptyValue(t *testing.T) {
	got, err := zatca.EncodeTLV([]zatca.Field{{Tag: 1, Value: ""}})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(got)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0}, raw)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// decodeTLV base64-decodes a payload and walks the tag/length/value triples.
func decodeTLV(t *testing.T, b64 string) []zatca.Field {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err, "payload must be valid standard base64")

	var fields []zatca.Field
	for i := 0; i < len(raw); {
		require.GreaterOrEqual(t, len(raw)-i, 2, "truncated TLV header at offset %d", i)
		tag, length := raw[i], int(raw[i+1])
		i += 2
		require.GreaterOrEqual(t, len(raw)-i, length, "value shorter than declared length")
		fields = append(fields, zatca.Field{Tag: tag, Value: string(raw[i : i+length])})
		i += length
	}
	return fields
}

func tags(fields []zatca.Field) []byte {
	out := make([]byte, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Tag)
	}
	return out
}
