package imageprocessor

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"strings"
	"testing"
	"time"

	"encomendas_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int, fill func(x, y int) color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill(x, y))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fixedProcessor() *Processor {
	p := NewProcessor(0)
	p.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return p
}

func TestProcessForMessaging_FitsDimensions(t *testing.T) {
	src := pngOf(t, 3200, 1600, func(x, y int) color.Color { return color.RGBA{200, 100, 50, 255} })

	out, err := fixedProcessor().ProcessForMessaging(bytes.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 1600, out.Width)
	assert.Equal(t, 800, out.Height)
	assert.Equal(t, "encomenda_1700000000123.jpg", out.FileName)
	assert.LessOrEqual(t, len(out.Data), MaxSizeBytes)

	w, h, err := GetImageDimensions(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 1600, w)
	assert.Equal(t, 800, h)
}

func TestProcessForMessaging_SmallImageKeepsSize(t *testing.T) {
	src := pngOf(t, 640, 480, func(x, y int) color.Color { return color.White })
	out, err := fixedProcessor().ProcessForMessaging(bytes.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 640, out.Width)
	assert.Equal(t, 480, out.Height)
}

func TestProcessForMessaging_FallbackScale(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	src := pngOf(t, 400, 400, func(x, y int) color.Color {
		return color.RGBA{uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), 255}
	})

	p := fixedProcessor()
	p.maxBytes = 1 // nothing fits, forces the 0.8 fallback
	out, err := p.ProcessForMessaging(bytes.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 320, out.Width)
	assert.Equal(t, 320, out.Height)
}

func TestBlurImage_Name(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	out, err := fixedProcessor().BlurImage(img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.FileName, "blurred_encomenda_"))
	assert.Equal(t, 100, out.Width)
}

func TestProcess_InvalidImage(t *testing.T) {
	_, err := NewProcessor(0).ProcessForMessaging(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

// pngHeader - сигнатура PNG и один IHDR, без данных
func pngHeader(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := make([]byte, 4+13)
	copy(chunk, "IHDR")
	binary.BigEndian.PutUint32(chunk[4:], width)
	binary.BigEndian.PutUint32(chunk[8:], height)
	chunk[12] = 8 // bit depth
	chunk[13] = 2 // truecolor

	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecode_RejectsTooManyPixelsBeforeDecoding(t *testing.T) {
	w, h, err := GetImageDimensions(bytes.NewReader(pngHeader(30000, 30000)))
	require.NoError(t, err)
	assert.Equal(t, 30000, w)
	assert.Equal(t, 30000, h)

	_, err = NewProcessor(0).Decode(bytes.NewReader(pngHeader(30000, 30000)))
	assert.ErrorIs(t, err, ErrTooManyPixels)
	assert.ErrorIs(t, err, ErrInvalidImage)

	p := NewProcessor(0)
	p.maxPixels = 100
	src := pngOf(t, 20, 10, func(x, y int) color.Color { return color.White })
	_, err = p.ProcessForMessaging(bytes.NewReader(src))
	assert.ErrorIs(t, err, ErrTooManyPixels)
}

// jpegWithOrientation кодирует JPEG и вставляет после SOI сегмент APP1 с тегом Orientation
func jpegWithOrientation(t *testing.T, img image.Image, orientation uint16) []byte {
	t.Helper()
	var enc bytes.Buffer
	require.NoError(t, jpeg.Encode(&enc, img, &jpeg.Options{Quality: 95}))

	var tiff bytes.Buffer
	tiff.WriteString("MM\x00\x2a")
	_ = binary.Write(&tiff, binary.BigEndian, uint32(8))  // IFD0 offset
	_ = binary.Write(&tiff, binary.BigEndian, uint16(1))  // entries
	_ = binary.Write(&tiff, binary.BigEndian, uint16(0x0112))
	_ = binary.Write(&tiff, binary.BigEndian, uint16(3))  // SHORT
	_ = binary.Write(&tiff, binary.BigEndian, uint32(1))  // count
	_ = binary.Write(&tiff, binary.BigEndian, orientation)
	_ = binary.Write(&tiff, binary.BigEndian, uint16(0))  // padding
	_ = binary.Write(&tiff, binary.BigEndian, uint32(0))  // next IFD

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write(enc.Bytes()[:2]) // SOI
	out.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(enc.Bytes()[2:])
	return out.Bytes()
}

func TestDecode_AppliesExifOrientation(t *testing.T) {
	// 40x20, левая половина красная
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			if x < 20 {
				src.Set(x, y, color.RGBA{255, 0, 0, 255})
			} else {
				src.Set(x, y, color.RGBA{0, 0, 255, 255})
			}
		}
	}

	img, err := NewProcessor(0).Decode(bytes.NewReader(jpegWithOrientation(t, src, 6)))
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	// после поворота на 90 по часовой красная половина сверху
	r, _, b, _ := img.At(10, 5).RGBA()
	assert.Greater(t, r, b)
	r, _, b, _ = img.At(10, 35).RGBA()
	assert.Greater(t, b, r)

	plain, err := NewProcessor(0).Decode(bytes.NewReader(jpegWithOrientation(t, src, 1)))
	require.NoError(t, err)
	assert.Equal(t, 40, plain.Bounds().Dx())
}

func TestApplyOrientation(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.RGBA{255, 0, 0, 255})

	cases := []struct {
		orientation int
		w, h        int
		x, y        int
	}{
		{2, 3, 2, 2, 0},
		{3, 3, 2, 2, 1},
		{4, 3, 2, 0, 1},
		{5, 2, 3, 0, 0},
		{6, 2, 3, 1, 0},
		{7, 2, 3, 1, 2},
		{8, 2, 3, 0, 2},
	}
	for _, tc := range cases {
		out := applyOrientation(src, tc.orientation)
		assert.Equal(t, tc.w, out.Bounds().Dx(), "orientation %d", tc.orientation)
		assert.Equal(t, tc.h, out.Bounds().Dy(), "orientation %d", tc.orientation)
		r, _, _, _ := out.At(tc.x, tc.y).RGBA()
		assert.Equal(t, uint32(0xffff), r, "orientation %d", tc.orientation)
	}
	assert.Same(t, src, applyOrientation(src, 1))
}

func TestRedactRegions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	RedactRegions(img, []models.SensitiveRegion{
		{Label: "cpf", X: 0, Y: 0, Width: 500, Height: 500},
		{Label: "phone", X: 900, Y: 900, Width: 500, Height: 500}, // clamped to the corner
		{Label: "rg", X: 10, Y: 10, Width: 0, Height: 100},       // ignored
	})

	r, g, b, _ := img.At(10, 10).RGBA()
	assert.Zero(t, r+g+b)
	r, _, _, _ = img.At(150, 20).RGBA()
	assert.NotZero(t, r)
	r, g, b, _ = img.At(199, 99).RGBA()
	assert.Zero(t, r+g+b)
}

func TestPublicVariant(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	p := fixedProcessor()

	blurred, err := p.PublicVariant(img, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(blurred.FileName, "blurred_"))

	redacted, err := p.PublicVariant(img, []models.SensitiveRegion{{Label: "cpf", Width: 100, Height: 100}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(redacted.FileName, "redacted_"))
}
