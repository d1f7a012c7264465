package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/interfaces"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
)

// MemoryClient keeps objects in process memory. It is used by tests and by the one-shot
// CLI commands that never serve downloads.
type MemoryClient struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ interfaces.StorageClient = &MemoryClient{}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		objects: make(map[string][]byte),
	}
}

func (m *MemoryClient) PutObject(ctx context.Context, object string) io.WriteCloser {
	return &memoryWriter{
		client: m,
		object: object,
		buffer: &bytes.Buffer{},
	}
}

func (m *MemoryClient) GetObject(ctx context.Context, object string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.objects[object]
	if !exists {
		return nil, goerr.Wrap(ErrObjectNotFound, "failed to get object", goerr.TV(errutil.ObjectKey, object))
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Objects returns the stored object names in lexical order.
func (m *MemoryClient) Objects() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.objects))
	for name := range m.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *MemoryClient) Close(ctx context.Context) {}

type memoryWriter struct {
	client *MemoryClient
	object string
	buffer *bytes.Buffer
	closed bool
	mu     sync.Mutex
}

func (w *memoryWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, goerr.New("writer is closed")
	}

	return w.buffer.Write(p)
}

// Close publishes the buffered content, replacing any previous object of the same name.
func (w *memoryWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	data := bytes.Clone(w.buffer.Bytes())
	if data == nil {
		data = []byte{}
	}

	w.client.mu.Lock()
	defer w.client.mu.Unlock()

	w.client.objects[w.object] = data
	w.closed = true

	return nil
}
