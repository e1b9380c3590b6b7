package ingest

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// File is the file-like value a file picker emits.
type File interface {
	Name() string
	// Type is the declared MIME type, as given.
	Type() string
	// Size is the declared size in bytes.
	Size() int64
	Open() (io.ReadCloser, error)
}

type localFile struct {
	path     string
	mimeType string
	size     int64
}

// OpenLocal describes a file on disk. The MIME type is derived from the file
// extension, the way browsers fill in File.type.
func OpenLocal(path string) (File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("ingest: file path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("ingest: %s is a directory", path)
	}
	return &localFile{
		path:     path,
		mimeType: typeByExtension(path),
		size:     info.Size(),
	}, nil
}

func (f *localFile) Name() string { return filepath.Base(f.path) }
func (f *localFile) Type() string { return f.mimeType }
func (f *localFile) Size() int64  { return f.size }

func (f *localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

type multipartFile struct {
	header *multipart.FileHeader
}

// FromMultipart adapts an uploaded form part. The MIME type is the part's
// Content-Type header verbatim, falling back to the filename extension when
// the header is absent.
func FromMultipart(header *multipart.FileHeader) File {
	return &multipartFile{header: header}
}

func (f *multipartFile) Name() string { return f.header.Filename }

func (f *multipartFile) Type() string {
	if declared := f.header.Header.Get("Content-Type"); declared != "" {
		return declared
	}
	return typeByExtension(f.header.Filename)
}

func (f *multipartFile) Size() int64 { return f.header.Size }

func (f *multipartFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

type memoryFile struct {
	name     string
	mimeType string
	data     []byte
}

// NewMemoryFile wraps in-memory content. mimeType is kept verbatim.
func NewMemoryFile(name, mimeType string, data []byte) File {
	return &memoryFile{name: name, mimeType: mimeType, data: data}
}

func (f *memoryFile) Name() string { return f.name }
func (f *memoryFile) Type() string { return f.mimeType }
func (f *memoryFile) Size() int64  { return int64(len(f.data)) }

func (f *memoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// typeByExtension strips any parameters the system MIME table attaches.
func typeByExtension(name string) string {
	value := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return ""
	}
	return mediaType
}
