package errutil

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/types"
)

var (
	// IDs
	SessionIDKey = goerr.NewTypedKey[types.SessionID]("session_id")
	RequestIDKey = goerr.NewTypedKey[string]("request_id")

	// Upload and files
	FilenameKey = goerr.NewTypedKey[string]("filename")
	FilePathKey = goerr.NewTypedKey[string]("file_path")
	SizeKey     = goerr.NewTypedKey[int64]("size")
	LimitKey    = goerr.NewTypedKey[int64]("limit")
	ObjectKey   = goerr.NewTypedKey[string]("object")

	// Configuration
	ParameterKey = goerr.NewTypedKey[string]("parameter")

	// External services
	ServiceKey      = goerr.NewTypedKey[string]("service")
	ModelKey        = goerr.NewTypedKey[string]("model")
	StatusKey       = goerr.NewTypedKey[string]("status")
	ErrorMessageKey = goerr.NewTypedKey[string]("error_message")
)
