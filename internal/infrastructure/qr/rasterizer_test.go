package qr_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatoora-app/invoicing-api/internal/infrastructure/qr"
)

const testPayload = "AQdBY21lIENvAg8zMTAxMjM0NTY3ODkxMDMDGTIwMjQtMDEtMTVUMTA6MzA6MDArMDM6MDAEBjEwMC4wMAUFMTUuMDA="

func TestRasterize_ProducesPNGAndDataURI(t *testing.T) {
	r := qr.NewRasterizer()

	res, err := r.Rasterize(testPayload, qr.Options{Size: 300, Margin: 10})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(res.PNG))
	require.NoError(t, err, "output must be a decodable PNG")
	assert.Equal(t, 320, img.Bounds().Dx(), "300px code + 10px margin on each side")
	assert.Equal(t, 320, img.Bounds().Dy())

	require.True(t, strings.HasPrefix(res.DataURI, "data:image/png;base64,"))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(res.DataURI, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, res.PNG, decoded, "data URI must embed the same PNG bytes")
}

func TestRasterize_Defaults(t *testing.T) {
	r := qr.NewRasterizer()

	res, err := r.Rasterize(testPayload, qr.Options{})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(res.PNG))
	require.NoError(t, err)
	assert.Equal(t, qr.DefaultSize, img.Bounds().Dx(), "zero margin by default when not set")
}

func TestRasterize_EmptyPayload(t *testing.T) {
	r := qr.NewRasterizer()

	_, err := r.Rasterize("", qr.Options{Size: 300, Margin: 10})
	var rerr *qr.RasterizationError
	assert.ErrorAs(t, err, &rerr)
}
