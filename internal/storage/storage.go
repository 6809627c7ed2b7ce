package storage

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/spf13/afero"
)

// Folders used by the catalog resources, relative to the public root.
const (
	CategoryFolder = "assets/categories"
	ProductFolder  = "assets/images"
)

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ImageExtensions lists the upload types accepted as images.
var ImageExtensions = []string{".jpeg", ".jpg", ".png", ".gif", ".svg", ".webp"}

// IsImage reports whether filename carries an accepted image extension.
func IsImage(filename string) bool {
	ext := strings.ToLower(path.Ext(filename))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FileStore persists uploaded files and hands back a public reference.
type FileStore interface {
	Save(folder string, upload Upload) (string, error)
	Delete(ref string) error
	Within(folder, ref string) bool
}

var _ FileStore = (*Store)(nil)

// Store keeps files on an afero filesystem rooted at the public directory.
type Store struct {
	fs      afero.Fs
	baseURL string
	now     func() time.Time
}

func New(fs afero.Fs, baseURL string) *Store {
	return &Store{fs: fs, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// NewOS returns a Store writing below root on the local disk.
func NewOS(root, baseURL string) *Store {
	return New(afero.NewBasePathFs(afero.NewOsFs(), root), baseURL)
}

// Save writes the upload as <slug>_<YYYYMMDD_HHMMSS><ext> inside folder and
// returns its public URL.
func (s *Store) Save(folder string, upload Upload) (string, error) {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if err := s.fs.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create folder %s: %w", folder, err)
	}

	ext := strings.ToLower(path.Ext(upload.Filename))
	base := slug.Make(strings.TrimSuffix(path.Base(upload.Filename), path.Ext(upload.Filename)))
	if base == "" {
		base = "file"
	}
	stamp := s.now().Format("20060102_150405")

	name := fmt.Sprintf("%s_%s%s", base, stamp, ext)
	for i := 1; ; i++ {
		exists, err := afero.Exists(s.fs, path.Join(folder, name))
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", name, err)
		}
		if !exists {
			break
		}
		name = fmt.Sprintf("%s_%s_%d%s", base, stamp, i, ext)
	}

	f, err := s.fs.OpenFile(path.Join(folder, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, upload.Content); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	return s.baseURL + "/" + folder + "/" + name, nil
}

// Delete removes the file a reference points to. References to other hosts
// and files that are already gone are ignored.
func (s *Store) Delete(ref string) error {
	p := s.pathOf(ref)
	if p == "" {
		return nil
	}
	err := s.fs.Remove(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	return nil
}

// Exists reports whether a reference resolves to a stored file.
func (s *Store) Exists(ref string) bool {
	p := s.pathOf(ref)
	if p == "" {
		return false
	}
	ok, err := afero.Exists(s.fs, p)
	return err == nil && ok
}

// Within reports whether ref resolves to a file stored below folder.
func (s *Store) Within(folder, ref string) bool {
	p := s.pathOf(ref)
	folder = strings.Trim(path.Clean("/"+folder), "/")
	return p != "" && folder != "" && strings.HasPrefix(p, folder+"/")
}

func (s *Store) pathOf(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		base, err := url.Parse(s.baseURL)
		if err != nil || !strings.EqualFold(u.Host, base.Host) {
			return ""
		}
		ref = strings.TrimPrefix(u.Path, strings.TrimRight(base.Path, "/"))
	}

	p := strings.TrimPrefix(path.Clean("/"+ref), "/")
	if p == "" || p == "." {
		return ""
	}
	return p
}
