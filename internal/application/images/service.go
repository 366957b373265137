package images

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"flipledger/internal/pkg/fileutil"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes caps a single upload.
const MaxImageBytes = 10 << 20

var extensions = []string{".png", ".jpg", ".jpeg"}

var fileNameRe = regexp.MustCompile(`^[0-9]+\.(png|jpg|jpeg)$`)

// Service stores one photo per build as <Dir>/<sku><ext>. Pixels are never decoded here.
type Service struct {
	Dir string
}

// Save validates the upload and writes it under the build's SKU, replacing any earlier photo.
// It returns the stored file name.
func (s *Service) Save(sku int, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExt(ext) {
		return "", ErrUnsupportedImage
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	mt := mimetype.Detect(data)
	if !mt.Is("image/png") && !mt.Is("image/jpeg") {
		return "", ErrUnsupportedImage
	}

	name := strconv.Itoa(sku) + ext
	if err := fileutil.WriteAtomic(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := s.removeOthers(sku, ext); err != nil {
		return "", err
	}
	return name, nil
}

// Path resolves a stored file name inside Dir.
func (s *Service) Path(fileName string) (string, error) {
	if !fileNameRe.MatchString(fileName) {
		return "", ErrInvalidFileName
	}
	p := filepath.Join(s.Dir, fileName)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrImageNotFound
		}
		return "", err
	}
	return p, nil
}

// Remove deletes a stored image. Missing files are ignored.
func (s *Service) Remove(fileName string) error {
	if fileName == "" {
		return nil
	}
	if !fileNameRe.MatchString(fileName) {
		return ErrInvalidFileName
	}
	err := os.Remove(filepath.Join(s.Dir, fileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Service) removeOthers(sku int, keep string) error {
	for _, ext := range extensions {
		if ext == keep {
			continue
		}
		if err := s.Remove(strconv.Itoa(sku) + ext); err != nil {
			return err
		}
	}
	return nil
}

func allowedExt(ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}
