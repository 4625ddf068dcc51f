package utils

import (
	"github.com/skip2/go-qrcode"
)

// GenerateQRCode returns a PNG of the given size encoding content.
func GenerateQRCode(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
