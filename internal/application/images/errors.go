package images

import "errors"

var (
	ErrUnsupportedImage = errors.New("Only PNG and JPEG images are supported")
	ErrImageTooLarge    = errors.New("Image is too large")
	ErrInvalidFileName  = errors.New("Invalid image file name")
	ErrImageNotFound    = errors.New("Image not found")
)
