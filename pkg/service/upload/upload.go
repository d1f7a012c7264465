package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/model/errs"
	"github.com/secmon-lab/earmark/pkg/utils/clock"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
	"github.com/secmon-lab/earmark/pkg/utils/logging"
	"github.com/secmon-lab/earmark/pkg/utils/safe"
)

// DefaultMaxSize is the largest accepted upload, 500 MiB.
const DefaultMaxSize int64 = 500 << 20

// Service writes uploaded audio into a scratch directory.
type Service struct {
	dir     string
	maxSize int64

	mu sync.Mutex
	// lastPrefix is the most recently issued scratch prefix. Prefixes are strictly
	// increasing so no two uploads share a session identifier, even after the earlier
	// scratch file has been removed or when only the extension differs.
	lastPrefix int64
}

type Option func(*Service)

func WithMaxSize(n int64) Option {
	return func(s *Service) {
		s.maxSize = n
	}
}

func New(dir string, opts ...Option) (*Service, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to create upload directory", goerr.TV(errutil.FilePathKey, dir))
	}

	s := &Service{
		dir:     dir,
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) MaxSize() int64 {
	return s.maxSize
}

// ScratchFile is an uploaded file owned by exactly one request.
type ScratchFile struct {
	// Path is the absolute location of the scratch file.
	Path string
	// Name is the scratch file name: a unique numeric prefix, "_" and the original name.
	Name string
	// OriginalName is the name supplied by the uploader.
	OriginalName string
	Size         int64
}

func (x *ScratchFile) Remove(ctx context.Context) {
	safe.Remove(ctx, x.Path)
}

// SanitizeName strips any directory part from an uploaded file name.
func SanitizeName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// Receive persists r under a collision-free scratch name. On any failure no file is left
// behind.
func (s *Service) Receive(ctx context.Context, r io.Reader, originalName string) (*ScratchFile, error) {
	name := SanitizeName(originalName)
	if name == "" {
		return nil, goerr.New("No file selected",
			goerr.T(errs.TagValidation),
			goerr.TV(errutil.FilenameKey, originalName),
		)
	}

	f, scratchName, err := s.create(ctx, name)
	if err != nil {
		return nil, err
	}

	scratch := &ScratchFile{
		Path:         filepath.Join(s.dir, scratchName),
		Name:         scratchName,
		OriginalName: name,
	}

	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	closeErr := f.Close()
	if err != nil {
		scratch.Remove(ctx)
		return nil, goerr.Wrap(err, "failed to save upload", goerr.TV(errutil.FilenameKey, name))
	}
	if closeErr != nil {
		scratch.Remove(ctx)
		return nil, goerr.Wrap(closeErr, "failed to save upload", goerr.TV(errutil.FilenameKey, name))
	}
	if n > s.maxSize {
		scratch.Remove(ctx)
		return nil, goerr.New(fmt.Sprintf("File exceeds the maximum upload size of %s", humanize.IBytes(uint64(s.maxSize))),
			goerr.T(errs.TagTooLarge),
			goerr.TV(errutil.FilenameKey, name),
			goerr.TV(errutil.SizeKey, n),
			goerr.TV(errutil.LimitKey, s.maxSize),
		)
	}
	scratch.Size = n

	logging.From(ctx).Debug("upload saved",
		"scratch", scratchName,
		"size", humanize.IBytes(uint64(n)),
	)

	return scratch, nil
}

// nextPrefix returns the current time in nanoseconds, or the previous prefix plus one when
// the clock has not moved past it.
func (s *Service) nextPrefix(ctx context.Context) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := max(clock.Now(ctx).UnixNano(), s.lastPrefix+1)
	s.lastPrefix = prefix
	return prefix
}

// create opens a new file exclusively under a fresh prefix. A file left by another
// process sharing the directory makes it draw the next prefix.
func (s *Service) create(ctx context.Context, name string) (*os.File, string, error) {
	for range 100 {
		scratchName := fmt.Sprintf("%d_%s", s.nextPrefix(ctx), name)
		f, err := os.OpenFile(filepath.Join(s.dir, scratchName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			return f, scratchName, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", goerr.Wrap(err, "failed to create scratch file", goerr.TV(errutil.FilenameKey, name))
		}
	}
	return nil, "", goerr.New("failed to allocate scratch file name", goerr.TV(errutil.FilenameKey, name))
}

// With receives r, runs fn with the scratch file and removes the file on every exit
// path, including a panic in fn.
func (s *Service) With(ctx context.Context, r io.Reader, originalName string, fn func(scratch *ScratchFile) error) error {
	scratch, err := s.Receive(ctx, r, originalName)
	if err != nil {
		return err
	}
	defer scratch.Remove(ctx)

	return fn(scratch)
}
