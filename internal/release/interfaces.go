package release

import (
	"context"

	"batch-release/internal/models"
	"batch-release/internal/region"
)

// Renderer turns certificate data into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, data models.CertificateData) ([]byte, error)
}

// RendererFactory prepares a Renderer for one record. Template mode parses
// the template here, once per viewer session.
type RendererFactory interface {
	Prepare(ctx context.Context, record models.CertificateRecord) (Renderer, error)
}

type RendererFactoryFunc func(ctx context.Context, record models.CertificateRecord) (Renderer, error)

func (f RendererFactoryFunc) Prepare(ctx context.Context, record models.CertificateRecord) (Renderer, error) {
	return f(ctx, record)
}

type RegionProvider interface {
	Resolve(ctx context.Context, locator region.Locator) region.Result
}

// PrintInvoker hands a live document to the print path and returns a ticket
// the browser opens in its print window. Errors wrapping ErrPrintBlocked are
// reported to the user as a notice.
type PrintInvoker interface {
	Print(ctx context.Context, handle string) (string, error)
}

// DocumentPublisher owns the one live handle of a viewer session.
type DocumentPublisher interface {
	Replace(doc []byte) (string, error)
	Current() string
	Close()
}
