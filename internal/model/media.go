package model

import "errors"

// UploadResult is returned after a successful avatar upload.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Avatar constraints
const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	AvatarExt          = ".jpg"
	ContentTypeJPEG    = "image/jpeg"
	AvatarCacheControl = "public, max-age=31536000"
)

// Media error codes (used in HTTP responses)
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

// Media errors
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)

// IsAllowedImageType reports whether the content type is accepted for
// avatar uploads.
func IsAllowedImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
