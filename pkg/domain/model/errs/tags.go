package errs

import "github.com/m-mizutani/goerr/v2"

var (
	// Client errors (4xx)
	TagConfiguration  = goerr.NewTag("configuration")   // 400, missing credential
	TagValidation     = goerr.NewTag("validation")      // 400
	TagInvalidRequest = goerr.NewTag("invalid_request") // 400, malformed body
	TagNotFound       = goerr.NewTag("not_found")       // 400, unknown session
	TagNoAnalysis     = goerr.NewTag("no_analysis")     // 400
	TagTooLarge       = goerr.NewTag("too_large")       // 413

	// Server errors (5xx)
	TagProvider = goerr.NewTag("provider") // 500, transcription or analysis provider failure
	TagInternal = goerr.NewTag("internal") // 500
)
