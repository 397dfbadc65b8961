package service

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/wasatext/internal/apipaths"
	"github.com/wasatext/internal/constants"
	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/validation"
)

type photoKind string

const (
	userPhotoKind  photoKind = constants.UserPhotosDir
	groupPhotoKind photoKind = constants.GroupPhotosDir
)

// storePhoto validates and writes an uploaded photo under the uploads dir.
// It returns the public URL the file is served at.
func (s *chatService) storePhoto(ctx context.Context, kind photoKind, owner string, photo domain.PhotoUpload) (string, error) {
	ext, err := validation.DetectImageExt(photo.Data)
	if err != nil {
		s.logger.WarnContext(ctx, "rejected photo upload", "kind", kind, "owner", owner, "filename", photo.Filename, "error", err)
		return "", domain.WrapValidationError("photo", err)
	}

	dir := filepath.Join(s.config.UploadsDir, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.ErrorContext(ctx, "failed to create uploads dir", "dir", dir, "error", err)
		return "", domain.WrapFileSystem("create uploads dir", err)
	}

	name := owner + ext
	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, photo.Data, 0o644); err != nil {
		s.logger.ErrorContext(ctx, "failed to write photo", "path", dst, "filename", photo.Filename, "error", err)
		return "", domain.WrapFileSystem("write photo", err)
	}

	s.logger.InfoContext(ctx, "photo stored", "kind", kind, "owner", owner, "path", dst)
	return path.Join(apipaths.Uploads, string(kind), name), nil
}
