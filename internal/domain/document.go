package domain

// Document identifies one report file found under a source root.
type Document struct {
	// Path is the location used to open the file.
	Path string
	// RelPath is Path relative to the source root.
	RelPath string
	// Name is the base file name.
	Name string
	// Dir is the directory of RelPath, "." for files at the root.
	Dir string
}

// Listing is the outcome of a discovery walk.
type Listing struct {
	Documents []Document
	// Skipped counts report files left out because they sit in an
	// ignored directory.
	Skipped int
}
