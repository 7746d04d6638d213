package catalog

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/panel-storefront/internal/domain/product"
)

// maxDocumentSize bounds catalog documents read from files or over HTTP.
const maxDocumentSize = 8 << 20

var (
	_ product.Repository = (*DocumentSource)(nil)
	_ product.Repository = (*FileSource)(nil)
	_ product.Repository = (*HTTPSource)(nil)
)

// DocumentSource serves a catalog document held in memory, such as the one
// embedded into the binary.
type DocumentSource struct {
	data []byte
}

// NewDocumentSource creates a source over an in-memory document.
func NewDocumentSource(data []byte) *DocumentSource {
	return &DocumentSource{data: data}
}

// List decodes the document.
func (s *DocumentSource) List(_ context.Context) ([]product.Product, error) {
	return Decode(s.data)
}

// FileSource reads the catalog document from a file on every fetch.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// List reads and decodes the file.
func (s *FileSource) List(_ context.Context) ([]product.Product, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxDocumentSize))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.path)
	}
	return Decode(data)
}

// HTTPSource fetches the catalog document with a GET request on every fetch.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source fetching url. A nil client is replaced by an
// otelhttp-instrumented one.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &HTTPSource{url: url, client: client}
}

// List fetches and decodes the document.
func (s *HTTPSource) List(ctx context.Context) ([]product.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch catalog")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	return Decode(data)
}
