package transcript

import "io"

const (
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeCSV  = "text/csv"
)

// Export is a rendered file ready to be streamed to the caller. Body must be closed.
type Export struct {
	Name        string
	ContentType string
	Body        io.ReadCloser
}
