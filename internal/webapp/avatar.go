package webapp

import (
	"bytes"
	"errors"
	"image"
	stddraw "image/draw"
	"image/png"
	"net/http"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"

	_ "image/jpeg"
)

const avatarSize = 512

// processAvatarBytes square-crops an uploaded photo around its center and
// downscales it to a fixed size before it leaves for the API, so oversized
// phone camera shots never travel upstream.
func processAvatarBytes(raw []byte) ([]byte, error) {
	mime := http.DetectContentType(raw)
	switch mime {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return nil, errors.New("photo must be png, jpeg, or webp")
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		decoded, decodeErr := webp.Decode(bytes.NewReader(raw))
		if decodeErr != nil {
			return nil, errors.New("unable to decode photo")
		}
		img = decoded
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid image dimensions")
	}

	cropSize := width
	if height < cropSize {
		cropSize = height
	}
	cropX := (width - cropSize) / 2
	cropY := (height - cropSize) / 2

	cropRect := image.Rect(0, 0, cropSize, cropSize)
	cropped := image.NewRGBA(cropRect)
	srcPoint := image.Point{X: bounds.Min.X + cropX, Y: bounds.Min.Y + cropY}
	stddraw.Draw(cropped, cropRect, img, srcPoint, stddraw.Src)

	resized := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), cropped, cropped.Bounds(), xdraw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, resized); err != nil {
		return nil, errors.New("unable to encode photo")
	}
	return out.Bytes(), nil
}
