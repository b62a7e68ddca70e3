package directory

import "os"

// lister is the slice of the path jail used for listing.
type lister interface {
	List(dir string) ([]string, error)
	Stat(path string) (os.FileInfo, error)
}

// ignoreMatcher reports whether a root-relative path is gitignored.
type ignoreMatcher interface {
	ShouldIgnore(relativePath string, isDir bool) bool
}
