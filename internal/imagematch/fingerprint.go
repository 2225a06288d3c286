package imagematch

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"strings"
	"time"

	"github.com/corona10/goimagehash"
	exif "github.com/dsoprea/go-exif/v3"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/GRUUUUDD/dublicate/internal/model"
)

// HashBits is the length of the perceptual hash.
const HashBits = 64

// MaxPixels bounds Width*Height of an image before it is decoded.
const MaxPixels = 1 << 26

// exifTimeLayout is the layout of EXIF DateTime tags.
const exifTimeLayout = "2006:01:02 15:04:05"

// Fingerprint is the perceptual hash of one image.
type Fingerprint struct {
	Path string
	Hash *goimagehash.ImageHash
	Info model.ImageInfo
}

// fingerprintBytes decodes data and hashes the image.
// The header is checked against MaxPixels first so a corrupt header cannot
// make the decoder allocate an arbitrarily large buffer.
func fingerprintBytes(path string, data []byte) (Fingerprint, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Fingerprint{}, fmt.Errorf("%s (%dx%d): %w", path, cfg.Width, cfg.Height, ErrImageTooLarge)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	bounds := img.Bounds()
	info := model.ImageInfo{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}
	readExif(data, &info)

	return Fingerprint{Path: path, Hash: hash, Info: info}, nil
}

// readExif fills the camera and capture time from EXIF data, if present.
// Images without EXIF are left untouched.
func readExif(data []byte, info *model.ImageInfo) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return
	}

	var cameraMake, cameraModel string
	for _, entry := range entries {
		value := strings.TrimSpace(strings.Trim(entry.Formatted, "\x00"))
		switch entry.TagName {
		case "Make":
			cameraMake = value
		case "Model":
			cameraModel = value
		case "DateTimeOriginal":
			if t, err := time.Parse(exifTimeLayout, value); err == nil {
				info.Taken = t
			}
		case "DateTime":
			if info.Taken.IsZero() {
				if t, err := time.Parse(exifTimeLayout, value); err == nil {
					info.Taken = t
				}
			}
		}
	}

	switch {
	case cameraMake != "" && cameraModel != "" && !strings.HasPrefix(cameraModel, cameraMake):
		info.Camera = cameraMake + " " + cameraModel
	case cameraModel != "":
		info.Camera = cameraModel
	default:
		info.Camera = cameraMake
	}
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b Fingerprint) (int, error) {
	return a.Hash.Distance(b.Hash)
}

// Similarity converts a Hamming distance into a score in [0, 1].
func Similarity(distance int) float64 {
	s := 1 - float64(distance)/HashBits
	return min(max(s, 0), 1)
}

// Qualifies reports whether score reaches threshold (inclusive).
func Qualifies(score, threshold float64) bool {
	return score >= threshold
}
