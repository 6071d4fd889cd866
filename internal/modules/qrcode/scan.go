package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
)

var (
	ErrNoCode   = errors.New("no QR code found in image")
	ErrBadImage = errors.New("image could not be read")
)

const minScanPixels = 400

// Scan finds a QR code in an uploaded raster and returns its text.
func Scan(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", apierr.Decode("unreadable_image", fmt.Errorf("%w: %v", ErrBadImage, err))
	}
	text, err := scanImage(img)
	if err == nil {
		return text, nil
	}
	// Small phone crops scan better once enlarged.
	if b := img.Bounds(); b.Dx() < minScanPixels || b.Dy() < minScanPixels {
		if text, err2 := scanImage(upscale(img, minScanPixels)); err2 == nil {
			return text, nil
		}
	}
	return "", apierr.Decode("no_qr_code", ErrNoCode)
}

func scanImage(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	res, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", err
	}
	return res.GetText(), nil
}

func upscale(img image.Image, min int) image.Image {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	if side <= 0 {
		return img
	}
	scale := (min + side - 1) / side
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
