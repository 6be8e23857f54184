package internal

import (
	"io"

	"github.com/spf13/afero"
)

// FileSource reads attachments from an afero filesystem.
type FileSource struct {
	Fs afero.Fs
}

// NewFileSource returns a FileSource over fs. A nil fs means the OS
// filesystem.
func NewFileSource(fs afero.Fs) *FileSource {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileSource{Fs: fs}
}

// IsReadable reports whether path names a regular file that can be opened.
func (s *FileSource) IsReadable(path string) bool {
	fi, err := s.Fs.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	f, err := s.Fs.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// Open opens path for reading.
func (s *FileSource) Open(path string) (io.ReadCloser, error) {
	return s.Fs.Open(path)
}
