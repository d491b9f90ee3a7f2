package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoQR marks an image that decodes fine but contains no readable QR code.
var ErrNoQR = errors.New("no qr code found in the image")

// ErrBadImage marks bytes that are not a decodable image at all.
var ErrBadImage = errors.New("uploaded file is not a valid image")

// Decode extracts the QR payload text from raw image bytes.
func Decode(imageBytes []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", ErrNoQR
	}

	text := strings.TrimSpace(result.GetText())
	if text == "" {
		return "", ErrNoQR
	}
	return text, nil
}
