package filestorage

import "io"

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Save writes r under subPath with a generated name and returns its public URL
	Save(r io.Reader, subPath, ext string) (string, error)

	// DeleteFile removes a file previously returned by Save
	DeleteFile(fileURL string) error

	// GetFullPath returns the filesystem path for a URL returned by Save
	GetFullPath(fileURL string) string
}
