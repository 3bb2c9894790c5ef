package imageproc

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"

	"voice-relay/internal/domain/entity"
)

type Config struct {
	MaxWidth int
	Quality  int
	// MaxPixels caps the declared width*height accepted for decoding.
	MaxPixels int
}

func DefaultConfig() Config {
	return Config{
		MaxWidth:  1024,
		Quality:   75,
		MaxPixels: 40_000_000,
	}
}

type Processor struct {
	cfg Config
}

func New(cfg Config) *Processor {
	return &Processor{cfg: cfg}
}

// Prepare decodes a base64 screenshot (raw or data: URL), downsizes it to
// MaxWidth and re-encodes it as JPEG.
func (p *Processor) Prepare(encoded string) (*entity.Screenshot, error) {
	raw, err := decodeBase64Image(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot is not valid base64: %v", entity.ErrBadRequest, err)
	}

	header, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot decode failed: %v", entity.ErrBadRequest, err)
	}
	if header.Width <= 0 || header.Height <= 0 {
		return nil, fmt.Errorf("%w: screenshot has no pixels", entity.ErrBadRequest)
	}
	if p.cfg.MaxPixels > 0 && int64(header.Width)*int64(header.Height) > int64(p.cfg.MaxPixels) {
		return nil, fmt.Errorf("%w: screenshot is %dx%d, over the %d pixel limit",
			entity.ErrBadRequest, header.Width, header.Height, p.cfg.MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot decode failed: %v", entity.ErrBadRequest, err)
	}

	if p.cfg.MaxWidth > 0 && img.Bounds().Dx() > p.cfg.MaxWidth {
		img = imaging.Resize(img, p.cfg.MaxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: p.cfg.Quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func decodeBase64Image(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, fmt.Errorf("data URL without payload")
		}
		s = s[comma+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}
