package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"time"

	"encomendas_backend/internal/models"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxDimension   = 1600
	MaxSizeBytes   = 1000 * 1024
	InitialQuality = 85
	MinQuality     = 50
	qualityStep    = 5
	fallbackScale  = 0.8
	// больше не декодируем: RGBA такого кадра уже около 200 МБ
	MaxPixels = 50_000_000
	// во сколько раз уменьшаем картинку перед обратным увеличением при размытии
	blurFactor = 12
)

var (
	ErrInvalidImage  = errors.New("invalid image")
	ErrTooManyPixels = fmt.Errorf("%w: too many pixels", ErrInvalidImage)
)

// ProcessedImage - результат обработки фото посылки
type ProcessedImage struct {
	Data     []byte
	FileName string
	Width    int
	Height   int
}

func (p *ProcessedImage) SizeKB() int {
	return len(p.Data) / 1024
}

func (p *ProcessedImage) ContentType() string {
	return "image/jpeg"
}

// Processor сжимает фото посылок до размера, который принимает WhatsApp
type Processor struct {
	quality      int // начальное качество JPEG
	maxDimension int
	maxBytes     int
	maxPixels    int
	now          func() time.Time
}

// NewProcessor creates a new image processor
func NewProcessor(quality int) *Processor {
	if quality < MinQuality || quality > 100 {
		quality = InitialQuality
	}
	return &Processor{
		quality:      quality,
		maxDimension: MaxDimension,
		maxBytes:     MaxSizeBytes,
		maxPixels:    MaxPixels,
		now:          time.Now,
	}
}

// Decode читает jpeg, png или webp. Размер проверяется по заголовку до декодирования,
// JPEG поворачивается по EXIF Orientation.
func (p *Processor) Decode(reader io.Reader) (image.Image, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	width, height, err := GetImageDimensions(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if width*height > p.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, width, height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if format == "jpeg" {
		img = applyOrientation(img, exifOrientation(data))
	}
	return img, nil
}

// ProcessForMessaging: вписывает в 1600x1600 на белом фоне и подбирает качество JPEG
// от начального (85) до 50 с шагом 5. Если и так больше лимита, уменьшает в 0.8 раза и кодирует с качеством 50.
func (p *Processor) ProcessForMessaging(reader io.Reader) (*ProcessedImage, error) {
	img, err := p.Decode(reader)
	if err != nil {
		return nil, err
	}
	return p.ProcessImage(img)
}

// ProcessImage - то же, что ProcessForMessaging, для уже декодированного изображения
func (p *Processor) ProcessImage(img image.Image) (*ProcessedImage, error) {
	w, h := fitDimensions(img.Bounds().Dx(), img.Bounds().Dy(), p.maxDimension)
	canvas := flatten(img, w, h)

	data, err := p.encodeWithinLimit(canvas)
	if err != nil {
		return nil, err
	}

	if len(data) > p.maxBytes {
		w = int(float64(w)*fallbackScale + 0.5)
		h = int(float64(h)*fallbackScale + 0.5)
		canvas = flatten(img, w, h)
		if data, err = encodeJPEG(canvas, MinQuality); err != nil {
			return nil, err
		}
	}

	return &ProcessedImage{
		Data:     data,
		FileName: fmt.Sprintf("encomenda_%d.jpg", p.now().UnixMilli()),
		Width:    w,
		Height:   h,
	}, nil
}

func (p *Processor) BlurImage(img image.Image) (*ProcessedImage, error) {
	w, h := fitDimensions(img.Bounds().Dx(), img.Bounds().Dy(), p.maxDimension)
	canvas := blur(flatten(img, w, h))

	data, err := p.encodeWithinLimit(canvas)
	if err != nil {
		return nil, err
	}

	return &ProcessedImage{
		Data:     data,
		FileName: fmt.Sprintf("blurred_encomenda_%d.jpg", p.now().UnixMilli()),
		Width:    w,
		Height:   h,
	}, nil
}

// ProcessRedacted закрашивает чувствительные области (CPF, адрес, телефон...) и сжимает
func (p *Processor) ProcessRedacted(img image.Image, regions []models.SensitiveRegion) (*ProcessedImage, error) {
	w, h := fitDimensions(img.Bounds().Dx(), img.Bounds().Dy(), p.maxDimension)
	canvas := flatten(img, w, h)
	RedactRegions(canvas, regions)

	data, err := p.encodeWithinLimit(canvas)
	if err != nil {
		return nil, err
	}

	return &ProcessedImage{
		Data:     data,
		FileName: fmt.Sprintf("redacted_encomenda_%d.jpg", p.now().UnixMilli()),
		Width:    w,
		Height:   h,
	}, nil
}

// PublicVariant: с областями - закрашенная версия, без них - размытая
func (p *Processor) PublicVariant(img image.Image, regions []models.SensitiveRegion) (*ProcessedImage, error) {
	if len(regions) > 0 {
		return p.ProcessRedacted(img, regions)
	}
	return p.BlurImage(img)
}

// RedactRegions рисует непрозрачные прямоугольники. Координаты в сетке 0-1000
// переводятся в пиксели и обрезаются по границам изображения.
func RedactRegions(dst draw.Image, regions []models.SensitiveRegion) {
	b := dst.Bounds()
	fill := image.NewUniform(color.Black)
	for _, r := range regions {
		if r.Width <= 0 || r.Height <= 0 {
			continue
		}
		rect := image.Rect(
			b.Min.X+gridToPixels(r.X, b.Dx()),
			b.Min.Y+gridToPixels(r.Y, b.Dy()),
			b.Min.X+gridToPixels(r.X+r.Width, b.Dx()),
			b.Min.Y+gridToPixels(r.Y+r.Height, b.Dy()),
		).Intersect(b)
		if rect.Empty() {
			continue
		}
		draw.Draw(dst, rect, fill, image.Point{}, draw.Src)
	}
}

func gridToPixels(v float64, size int) int {
	if v < 0 {
		v = 0
	}
	if v > models.RegionGridSize {
		v = models.RegionGridSize
	}
	return int(v*float64(size)/models.RegionGridSize + 0.5)
}

func (p *Processor) encodeWithinLimit(img image.Image) ([]byte, error) {
	var data []byte
	for quality := p.quality; quality >= MinQuality; quality -= qualityStep {
		var err error
		data, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(data) <= p.maxBytes {
			break
		}
	}
	return data, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// fitDimensions сохраняет пропорции; изображение только уменьшается
func fitDimensions(width, height, maxDim int) (int, int) {
	if width <= maxDim && height <= maxDim {
		return width, height
	}
	if width > height {
		return maxDim, max(1, int(float64(height)*float64(maxDim)/float64(width)+0.5))
	}
	return max(1, int(float64(width)*float64(maxDim)/float64(height)+0.5)), maxDim
}

// flatten масштабирует изображение на белый фон (прозрачность PNG -> белый)
func flatten(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func blur(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	small := image.NewRGBA(image.Rect(0, 0, max(1, b.Dx()/blurFactor), max(1, b.Dy()/blurFactor)))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)

	dst := image.NewRGBA(b)
	draw.BiLinear.Scale(dst, b, small, small.Bounds(), draw.Src, nil)
	return dst
}

// GetImageDimensions читает только заголовок
func GetImageDimensions(reader io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(reader)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// exifOrientation возвращает тег Orientation (1-8), 1 если его нет
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// applyOrientation отражает и поворачивает так, как фото показывает камера
func applyOrientation(img image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2: // зеркально по горизонтали
				dx, dy = w-1-x, y
			case 3: // 180
				dx, dy = w-1-x, h-1-y
			case 4: // зеркально по вертикали
				dx, dy = x, h-1-y
			case 5: // транспонирование
				dx, dy = y, x
			case 6: // 90 по часовой
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8: // 90 против часовой
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
