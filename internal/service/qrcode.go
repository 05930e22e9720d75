package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// QRGenerator renders tracking links for orders as PNG QR codes.
type QRGenerator interface {
	TrackingURL(orderID uuid.UUID) string
	Generate(orderID uuid.UUID) ([]byte, error)
}

// DefaultQRGenerator points QR codes at BaseURL/orders/<id>.
type DefaultQRGenerator struct {
	BaseURL string
	Size    int
}

// NewQRGenerator creates a generator for 256px codes.
func NewQRGenerator(baseURL string) DefaultQRGenerator {
	return DefaultQRGenerator{BaseURL: strings.TrimRight(baseURL, "/"), Size: 256}
}

func (g DefaultQRGenerator) TrackingURL(orderID uuid.UUID) string {
	return fmt.Sprintf("%s/orders/%s", g.BaseURL, orderID)
}

func (g DefaultQRGenerator) Generate(orderID uuid.UUID) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(g.TrackingURL(orderID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
