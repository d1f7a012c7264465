package storage

import (
	"path/filepath"
	"strings"

	"github.com/secmon-lab/earmark/pkg/domain/model/transcript"
)

func contentTypeOf(object string) string {
	switch strings.ToLower(filepath.Ext(object)) {
	case ".docx":
		return transcript.ContentTypeDOCX
	case ".csv":
		return transcript.ContentTypeCSV
	default:
		return ""
	}
}
