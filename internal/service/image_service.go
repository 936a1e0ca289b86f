package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/nightlight/internal/db"
)

var (
	ErrNotAnImage    = errors.New("uploaded file is not a decodable image")
	ErrUploadMissing = errors.New("uploaded file is required")
)

const webpQuality = 80

// ImageConfig names every directory root and size-class threshold the
// pipeline depends on.
type ImageConfig struct {
	OriginalDir string
	SmallDir    string
	MediumDir   string
	LargeDir    string
	URLPath     string
	SmallWidth  int
	MediumWidth int
	LargeWidth  int
}

// DefaultImageConfig builds the standard layout under root: an original/
// directory plus one directory per size class, with the stock breakpoints.
func DefaultImageConfig(root, urlPath string) ImageConfig {
	return ImageConfig{
		OriginalDir: filepath.Join(root, "original"),
		SmallDir:    filepath.Join(root, "small"),
		MediumDir:   filepath.Join(root, "medium"),
		LargeDir:    filepath.Join(root, "large"),
		URLPath:     urlPath,
		SmallWidth:  450,
		MediumWidth: 800,
		LargeWidth:  1400,
	}
}

// DerivedSet records the variant URL parts actually produced for one image.
// An empty string means the corresponding file does not exist.
type DerivedSet struct {
	SmallPath  string
	MediumPath string
	LargePath  string
}

// DerivationResult pairs one image with its derivation outcome.
type DerivationResult struct {
	Image   *db.PostImage
	Derived DerivedSet
	Err     error
}

// ImageService owns the upload directories and the variant derivation
// pipeline.
type ImageService struct {
	cfg ImageConfig
}

// NewImageService creates an ImageService for the given layout.
func NewImageService(cfg ImageConfig) *ImageService {
	return &ImageService{cfg: cfg}
}

// Config returns the layout the service was built with.
func (s *ImageService) Config() ImageConfig {
	return s.cfg
}

// EnsureLayout idempotently creates the original/small/medium/large
// directories, including intermediate segments. Existing files are never
// touched.
func (s *ImageService) EnsureLayout() error {
	for _, dir := range []string{s.cfg.OriginalDir, s.cfg.SmallDir, s.cfg.MediumDir, s.cfg.LargeDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure image directory %s: %w", dir, err)
		}
	}
	return nil
}

// SaveUpload streams one multipart file into the original directory under a
// store-generated name and returns its descriptor. The client-supplied
// filename is only consulted for the extension.
func (s *ImageService) SaveUpload(fh *multipart.FileHeader) (db.PostImage, error) {
	if fh == nil {
		return db.PostImage{}, ErrUploadMissing
	}

	src, err := fh.Open()
	if err != nil {
		return db.PostImage{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	id := uuid.New().String()
	storedName := id + filepath.Ext(fh.Filename)
	storedPath := filepath.Join(s.cfg.OriginalDir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		return db.PostImage{}, fmt.Errorf("create original file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(storedPath)
		return db.PostImage{}, fmt.Errorf("write original file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(storedPath)
		return db.PostImage{}, fmt.Errorf("close original file: %w", err)
	}

	width, height, err := s.readDimensions(storedPath)
	if err != nil {
		os.Remove(storedPath)
		return db.PostImage{}, err
	}

	return db.PostImage{
		Filename:     id,
		OriginalPath: storedPath,
		Width:        width,
		Height:       height,
	}, nil
}

// Derive conditionally produces the small/medium/large variants of one
// original. A variant is written only when the original's pixel width
// strictly exceeds the class threshold; width equal to the threshold
// produces nothing. On a mid-batch failure the variants already written are
// still reported in the returned set.
func (s *ImageService) Derive(img *db.PostImage) (DerivedSet, error) {
	var set DerivedSet

	classes := []struct {
		width int
		dir   string
		part  string
	}{
		{s.cfg.SmallWidth, s.cfg.SmallDir, "small"},
		{s.cfg.MediumWidth, s.cfg.MediumDir, "medium"},
		{s.cfg.LargeWidth, s.cfg.LargeDir, "large"},
	}

	var decoded image.Image
	for _, class := range classes {
		if img.Width <= class.width {
			continue
		}

		if decoded == nil {
			var err error
			decoded, err = s.decodeOriginal(img.OriginalPath)
			if err != nil {
				return set, err
			}
		}

		name := img.Filename + ".webp"
		if err := s.writeVariant(decoded, class.width, filepath.Join(class.dir, name)); err != nil {
			return set, fmt.Errorf("derive %s variant of %s: %w", class.part, img.Filename, err)
		}

		part := class.part + "/" + name
		switch class.part {
		case "small":
			set.SmallPath = part
		case "medium":
			set.MediumPath = part
		case "large":
			set.LargePath = part
		}
	}

	return set, nil
}

// DeriveAll runs derivation for every image in the batch concurrently and
// returns once all of them have settled. Each outcome, success or failure,
// lands in the slot matching its input position; a failed image never
// aborts its siblings.
func (s *ImageService) DeriveAll(ctx context.Context, images []db.PostImage) []DerivationResult {
	results := make([]DerivationResult, len(images))

	var g errgroup.Group
	for i := range images {
		i := i
		g.Go(func() error {
			img := &images[i]
			if err := ctx.Err(); err != nil {
				results[i] = DerivationResult{Image: img, Err: err}
				return nil
			}
			derived, err := s.Derive(img)
			results[i] = DerivationResult{Image: img, Derived: derived, Err: err}
			return nil
		})
	}
	g.Wait()

	return results
}

// readDimensions decodes only the image header to learn intrinsic size.
func (s *ImageService) readDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, ErrNotAnImage
	}
	return cfg.Width, cfg.Height, nil
}

func (s *ImageService) decodeOriginal(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open original: %w", err)
	}
	defer f.Close()

	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, ErrNotAnImage
	}
	return decoded, nil
}

// writeVariant scales src to the target width, preserving aspect ratio, and
// encodes it as webp at path.
func (s *ImageService) writeVariant(src image.Image, width int, path string) error {
	bounds := src.Bounds()
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := webp.Encode(f, dst, &webp.Options{Quality: webpQuality}); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
