// Package picker lets the user choose a photo from disk and describes the chosen file.
package picker

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ImageExtensions are the file types offered by the picker.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// ErrNotImage is returned for files whose extension is not an image type.
var ErrNotImage = errors.New("not an image file")

// File is a readable local image.
type File struct {
	Path string
	Name string
	Size int64
}

// Open opens the file for reading.
func (f File) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// ReadAll returns the file contents.
func (f File) ReadAll() ([]byte, error) {
	return os.ReadFile(f.Path)
}

// ContentType sniffs the MIME type from the first bytes of data.
func ContentType(data []byte) string {
	return http.DetectContentType(data)
}

// CheckReadable verifies the user may read path. It is the gate a file passes before
// it is handed to an upload.
func CheckReadable(path string) error {
	if !isImage(path) {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrNotImage)
	}
	fh, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("permission denied: %s", filepath.Base(path))
		}
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	return fh.Close()
}

// Resolve turns a path into a File. Failures are logged and reported as ok=false.
func Resolve(path string) (File, bool) {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		log.Printf("debug: resolve %q: %v", path, err)
		return File{}, false
	}
	st, err := os.Stat(abs)
	if err != nil {
		log.Printf("debug: stat %q: %v", abs, err)
		return File{}, false
	}
	if st.IsDir() {
		log.Printf("debug: %q is a directory", abs)
		return File{}, false
	}
	return File{Path: abs, Name: filepath.Base(abs), Size: st.Size()}, true
}

// Preview summarises an image header.
type Preview struct {
	Format string
	Width  int
	Height int
}

func (p Preview) String() string {
	return fmt.Sprintf("%s %dx%d", p.Format, p.Width, p.Height)
}

// Describe decodes the image header of f.
func Describe(f File) (Preview, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return Preview{}, err
	}
	defer fh.Close()
	cfg, format, err := image.DecodeConfig(fh)
	if err != nil {
		return Preview{}, fmt.Errorf("decode %s: %w", f.Name, err)
	}
	return Preview{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

func isImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
