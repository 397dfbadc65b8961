package validation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/wasatext/internal/constants"
)

var (
	// ErrPhotoTooLarge is returned for uploads above constants.MaxPhotoSize
	ErrPhotoTooLarge = errors.New("file too large")
	// ErrUnsupportedImage is returned when the upload is not a known image type
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// imageExts maps sniffed content types to the stored file extension
var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ValidateUsername trims name and checks its length in characters.
// It returns the trimmed name.
func ValidateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < constants.MinUsernameLength || n > constants.MaxUsernameLength {
		return "", fmt.Errorf("name must be between %d and %d characters",
			constants.MinUsernameLength, constants.MaxUsernameLength)
	}
	return name, nil
}

// ValidateRequired trims value and rejects it when blank
func ValidateRequired(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s cannot be empty", field)
	}
	return value, nil
}

// ValidateConversationID rejects non-positive ids
func ValidateConversationID(id int) error {
	if id <= 0 {
		return errors.New("conversation id must be positive")
	}
	return nil
}

// DetectImageExt checks size and sniffs the content type of an uploaded photo.
// It returns the extension the file is stored under.
func DetectImageExt(data []byte) (string, error) {
	if int64(len(data)) > constants.MaxPhotoSize {
		return "", ErrPhotoTooLarge
	}
	if len(data) == 0 {
		return "", ErrUnsupportedImage
	}
	ext, ok := imageExts[http.DetectContentType(data[:min(512, len(data))])]
	if !ok {
		return "", ErrUnsupportedImage
	}
	return ext, nil
}
