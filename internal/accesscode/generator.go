// Package accesscode generates event access codes and their scannable QR payloads.
package accesscode

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// Alphabet is the 36-symbol set access codes are drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeLength is the number of characters in an access code.
	CodeLength = 8

	qrSize = 400
)

// Generate returns an 8-character access code drawn uniformly at random from
// Alphabet using a cryptographically secure source, so codes cannot be guessed
// from earlier ones.
func Generate() (string, error) {
	code := make([]byte, CodeLength)
	// 256 is not a multiple of 36; reject bytes above the largest multiple
	// to keep the draw uniform.
	max := byte(256 - 256%len(Alphabet))
	buf := make([]byte, 1)
	for i := 0; i < CodeLength; {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		if buf[0] >= max {
			continue
		}
		code[i] = Alphabet[int(buf[0])%len(Alphabet)]
		i++
	}
	return string(code), nil
}

// GenerateQR encodes an access code as a PNG QR image with the highest error
// correction level and returns it as a base64 data URL for direct embedding.
func GenerateQR(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Highest, qrSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
