package constants

import "strings"

// FileFormat identifies the source document format for a job.
type FileFormat string

const (
	DOC  FileFormat = "DOC"
	DOCX FileFormat = "DOCX"
	PDF  FileFormat = "PDF"
)

// MaxFileSize is the upload ceiling enforced before a job is created.
const MaxFileSize = 10 * 1024 * 1024 // 10 MB

// AllowedExtensions holds the accepted resume file extensions (lowercase, no dot).
var AllowedExtensions = map[string]struct{}{
	"doc":  {},
	"docx": {},
	"pdf":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat resolves a normalized extension to a FileFormat, or "" if unsupported.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "doc":
		return DOC
	case "docx":
		return DOCX
	case "pdf":
		return PDF
	}
	return ""
}
