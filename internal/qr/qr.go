// Package qr renders ticket descriptors as PNG QR codes and moves them
// to and from the base64 form stored on tickets.
package qr

import (
	"encoding/base64"
	"fmt"
	"image/color"

	"github.com/skip2/go-qrcode"
)

// Ticket colours.
var (
	DefaultForeground = color.RGBA{R: 0x00, G: 0x33, B: 0x66, A: 0xff}
	DefaultBackground = color.White
)

// DefaultModuleSize is the pixel size of one QR module.
const DefaultModuleSize = 8

// Encoder renders QR codes as PNG images.
type Encoder struct {
	Level      qrcode.RecoveryLevel
	ModuleSize int
	Foreground color.Color
	Background color.Color
}

// NewEncoder returns an Encoder with the ticket defaults.
func NewEncoder() *Encoder {
	return &Encoder{
		Level:      qrcode.Medium,
		ModuleSize: DefaultModuleSize,
		Foreground: DefaultForeground,
		Background: DefaultBackground,
	}
}

// PNG encodes content into a PNG QR code.
func (e *Encoder) PNG(content string) ([]byte, error) {
	code, err := qrcode.New(content, e.Level)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	code.ForegroundColor = e.Foreground
	code.BackgroundColor = e.Background

	// A negative size is read as pixels per module.
	png, err := code.PNG(-e.ModuleSize)
	if err != nil {
		return nil, fmt.Errorf("qr png: %w", err)
	}
	return png, nil
}

// EncodeBase64 encodes content into a base64 PNG QR code.
func (e *Encoder) EncodeBase64(content string) (string, error) {
	png, err := e.PNG(content)
	if err != nil {
		return "", err
	}
	return EncodeBase64(png), nil
}

// EncodeBase64 returns the standard base64 form of image bytes.
func EncodeBase64(img []byte) string {
	return base64.StdEncoding.EncodeToString(img)
}

// DecodeBase64 returns the image bytes of a base64 payload.
func DecodeBase64(payload string) ([]byte, error) {
	img, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("qr decode: %w", err)
	}
	return img, nil
}

// DataURI returns an inline data URI for a base64 PNG payload.
func DataURI(payload string) string {
	return "data:image/png;base64," + payload
}
