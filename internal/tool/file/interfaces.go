package file

import "context"

// reader is the slice of the path jail used by read_file.
type reader interface {
	Read(path string) (string, error)
}

// refactorer rewrites a file through the fast-coder tier.
type refactorer interface {
	Refactor(ctx context.Context, path, objective string) bool
}
