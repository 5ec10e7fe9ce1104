package importer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/blezek/tga"
	_ "github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	_ "github.com/oov/psd"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// textureKind returns the image type detected from the header, or the extension.
func textureKind(path string, head []byte) string {
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return kind.Extension
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func decodeTexture(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil && strings.ToLower(filepath.Ext(path)) == ".tga" {
		// retry
		f.Seek(0, io.SeekStart)
		img, err = tga.Decode(f)
	}
	return img, err
}

func textureSize(path string) (int, int, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, "", err
	}
	defer f.Close()
	head := make([]byte, 262)
	n, _ := io.ReadFull(f, head)
	kind := textureKind(path, head[:n])
	f.Seek(0, io.SeekStart)
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, kind, err
	}
	return cfg.Width, cfg.Height, kind, nil
}

// scaleTexture fits img into limit x limit keeping the aspect ratio.
func scaleTexture(img image.Image, limit int) image.Image {
	rect := img.Bounds()
	w, h := rect.Dx(), rect.Dy()
	if w <= limit && h <= limit {
		return img
	}
	scale := float32(limit) / float32(w)
	if h > w {
		scale = float32(limit) / float32(h)
	}
	dw, dh := int(float32(w)*scale), int(float32(h)*scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Over, nil)
	return dst
}

// resizeTexture writes a downscaled png copy of a texture larger than TextureMaxSize.
func (s *Session) resizeTexture(t *ImportTexture, out Output) error {
	limit := s.cfg.TextureMaxSize
	if limit <= 0 || !t.Valid {
		return nil
	}
	w, h, kind, err := textureSize(t.Src)
	if err != nil {
		// unknown format, keep as is
		log.Printf("texture %s (%s): %v", t.Src, kind, err)
		return nil
	}
	if w <= limit && h <= limit {
		return nil
	}
	img, err := decodeTexture(t.Src)
	if err != nil {
		return fmt.Errorf("decode %s: %w", t.Src, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaleTexture(img, limit)); err != nil {
		return err
	}
	base := filepath.Base(t.Src)
	locator := strings.TrimSuffix(base, filepath.Ext(base)) + ".png:" + t.Src
	if err := out.WriteResource(locator, buf.Bytes()); err != nil {
		return err
	}
	t.Resized = locator
	log.Printf("texture %s: %dx%d -> %d", t.Src, w, h, limit)
	return nil
}
