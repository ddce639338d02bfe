package moderation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
)

// Kind describes one class of accepted upload.
type Kind struct {
	Name       string
	Dir        string
	Extensions []string
	MaxBytes   int64
	// Sniffed, when set, restricts the detected content type.
	Sniffed []string
}

var (
	ImageKind = Kind{
		Name:       "image",
		Dir:        "images",
		Extensions: []string{"png", "jpg", "jpeg", "gif", "webp"},
		MaxBytes:   5 << 20,
		Sniffed:    []string{"image/png", "image/jpeg", "image/gif", "image/webp"},
	}
	DocumentKind = Kind{
		Name:       "document",
		Dir:        "documents",
		Extensions: []string{"pdf", "doc", "docx", "txt"},
		MaxBytes:   10 << 20,
	}
)

func (k Kind) allows(ext string) bool {
	for _, e := range k.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// StoredFile is what Files.Save wrote.
type StoredFile struct {
	// URL is the public path served under /uploads.
	URL         string
	ContentType string
	Size        int64
}

// Files writes uploads below a root folder as {kind dir}/{unix}_{uid}_{name}.
type Files struct {
	root string
	now  func() time.Time
}

// NewFiles returns a store rooted at folder.
func NewFiles(folder string) *Files {
	return &Files{root: folder, now: time.Now}
}

// Root is the folder served as /uploads.
func (f *Files) Root() string {
	return f.root
}

// Save validates and writes one file.
func (f *Files) Save(kind Kind, userID int64, filename string, r io.Reader) (StoredFile, error) {
	base := unsafeName.ReplaceAllString(filepath.Base(filename), "_")
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	if base == "" || base == "." || !kind.allows(ext) {
		return StoredFile{}, apperr.Newf(apperr.ErrValidation, "Invalid file type. Allowed: %s", strings.Join(kind.Extensions, ", "))
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return StoredFile{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return StoredFile{}, apperr.New(apperr.ErrValidation, "No file selected")
	}
	detected := mimetype.Detect(head)
	if len(kind.Sniffed) > 0 && !sniffedOneOf(detected, kind.Sniffed) {
		return StoredFile{}, apperr.Newf(apperr.ErrValidation, "File content is not a valid %s", kind.Name)
	}

	dir := filepath.Join(f.root, kind.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("create upload dir: %w", err)
	}
	name := strconv.FormatInt(f.now().Unix(), 10) + "_" + strconv.FormatInt(userID, 10) + "_" + base
	full := filepath.Join(dir, name)
	out, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create upload: %w", err)
	}

	written, err := io.Copy(out, io.LimitReader(io.MultiReader(bytes.NewReader(head), r), kind.MaxBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > kind.MaxBytes {
		err = apperr.Newf(apperr.ErrValidation, "File too large. Maximum size: %dMB", kind.MaxBytes>>20)
	}
	if err != nil {
		_ = os.Remove(full)
		return StoredFile{}, err
	}

	return StoredFile{
		URL:         path.Join("/uploads", kind.Dir, name),
		ContentType: detected.String(),
		Size:        written,
	}, nil
}

// Remove deletes the file behind a public URL produced by Save. Missing files are ignored.
func (f *Files) Remove(url string) error {
	rel := strings.TrimPrefix(path.Clean(url), "/uploads/")
	if rel == url || strings.Contains(rel, "..") {
		return fmt.Errorf("upload path %q outside upload folder", url)
	}
	err := os.Remove(filepath.Join(f.root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func sniffedOneOf(m *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if m.Is(a) {
			return true
		}
	}
	return false
}
