package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrNotImage        = errors.New("only image files are allowed")
	ErrReceiptTooLarge = errors.New("receipt exceeds the size limit")
	ErrReceiptNotFound = errors.New("receipt not found")
)

const receiptPrefix = "receipt-"

// Both the extension and the sniffed content must be on these lists.
var (
	imageExtensions = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true}
	imageMIMETypes  = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
)

// ReceiptStore keeps uploaded payment receipts on local disk.
type ReceiptStore struct {
	dir      string
	maxBytes int64
}

func NewReceiptStore(dir string, maxBytes int64) (*ReceiptStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ReceiptStore{dir: dir, maxBytes: maxBytes}, nil
}

func (r *ReceiptStore) MaxBytes() int64 { return r.maxBytes }

// Save validates the upload and writes it under a fresh
// receipt-<unixmillis>-<uuid><ext> name, which it returns.
func (r *ReceiptStore) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > r.maxBytes {
		return "", ErrReceiptTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExtensions[ext] {
		return "", ErrNotImage
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), imageMIMETypes...) {
		return "", ErrNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := fmt.Sprintf("%s%d-%s%s", receiptPrefix, time.Now().UnixMilli(), uuid.NewString(), ext)
	dst, err := os.OpenFile(filepath.Join(r.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create receipt: %w", err)
	}
	if _, err := io.Copy(dst, io.LimitReader(src, r.maxBytes)); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write receipt: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("write receipt: %w", err)
	}
	return name, nil
}

// Path resolves a stored receipt name. Names that could escape the upload
// directory are reported as not found.
func (r *ReceiptStore) Path(name string) (string, error) {
	if name != filepath.Base(name) || !strings.HasPrefix(name, receiptPrefix) {
		return "", ErrReceiptNotFound
	}
	p := filepath.Join(r.dir, name)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", ErrReceiptNotFound
	}
	return p, nil
}

// Remove deletes a stored receipt; a missing file is not an error.
func (r *ReceiptStore) Remove(name string) error {
	p, err := r.Path(name)
	if errors.Is(err, ErrReceiptNotFound) {
		return nil
	}
	return os.Remove(p)
}
