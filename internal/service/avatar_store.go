package service

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrBadAvatar the upload is too large or not a supported image
var ErrBadAvatar = fmt.Errorf("%w: avatar must be a png, jpeg, gif or webp image", ErrValidation)

var avatarTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// AvatarStore writes uploaded profile pictures under dir
type AvatarStore struct {
	dir     string
	maxSize int64
}

func NewAvatarStore(dir string, maxSize int64) *AvatarStore {
	return &AvatarStore{dir: dir, maxSize: maxSize}
}

// Save validates the upload by content and stores it under a random name.
// The returned name is relative to the media directory.
func (s *AvatarStore) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", ErrBadAvatar
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if !mimetype.EqualsAny(mt.String(), avatarTypes...) {
		return "", ErrBadAvatar
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := filepath.Join("avatars", uuid.NewString()+mt.Extension())
	dst := filepath.Join(s.dir, name)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("create avatar dir: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create avatar: %w", err)
	}
	_, err = io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write avatar: %w", err)
	}
	return filepath.ToSlash(name), nil
}

// Remove deletes an avatar previously returned by Save. Names outside the
// avatars directory are ignored, as is a file that is already gone.
func (s *AvatarStore) Remove(name string) error {
	clean := path.Clean(name)
	if !strings.HasPrefix(clean, "avatars/") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove avatar: %w", err)
	}
	return nil
}
