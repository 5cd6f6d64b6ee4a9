// Package qr rasterizes the base64 TLV payload into a PNG QR image.
package qr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// Rendering parameters for the invoice QR: 300px matrix, 10px quiet zone,
// high error correction, UTF-8 content encoding.
const (
	DefaultSize   = 300
	DefaultMargin = 10
)

// RasterizationError reports a failure of the QR image generation.
type RasterizationError struct {
	Err error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("qr: rasterization failed: %v", e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// Options control the output raster.
type Options struct {
	Size   int // pixel size of the code matrix, without margin
	Margin int // white quiet zone, pixels on each side
}

// Result carries both renderings of the same image.
type Result struct {
	PNG     []byte
	DataURI string
}

// Rasterizer renders QR images with boombuler/barcode.
type Rasterizer struct{}

// NewRasterizer creates the rasterizer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{}
}

// Rasterize encodes the payload at high error-correction level and returns
// the PNG bytes plus a data URI. The final image is Size+2*Margin pixels
// square, the code centered on a white canvas.
func (r *Rasterizer) Rasterize(payload string, opts Options) (*Result, error) {
	if payload == "" {
		return nil, &RasterizationError{Err: fmt.Errorf("empty payload")}
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	margin := opts.Margin
	if margin < 0 {
		margin = 0
	}

	code, err := qr.Encode(payload, qr.H, qr.Unicode)
	if err != nil {
		return nil, &RasterizationError{Err: err}
	}
	code, err = barcode.Scale(code, size, size)
	if err != nil {
		return nil, &RasterizationError{Err: err}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, size+2*margin, size+2*margin))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(margin, margin, margin+size, margin+size), code, image.Point{}, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, &RasterizationError{Err: err}
	}

	return &Result{
		PNG:     buf.Bytes(),
		DataURI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
