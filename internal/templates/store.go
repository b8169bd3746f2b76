// Package templates loads and replaces the pre-printed certificate form.
package templates

import (
	"context"
	"fmt"
	"log/slog"

	"batch-release/internal/assembly"
	"batch-release/internal/config"
)

// Store holds the single active template.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, raw []byte) error
}

func NewStore(ctx context.Context, cfg config.TemplateConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Source {
	case "s3":
		client, err := NewS3Client(ctx, *cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, cfg.S3.Bucket, cfg.S3.Key, logger), nil
	case "file", "":
		return NewFileStore(cfg.Path, logger), nil
	default:
		return nil, fmt.Errorf("unknown template source: %s", cfg.Source)
	}
}

// Replace validates raw as a usable template before saving it. Invalid
// uploads return the *assembly.TemplateLoadError and leave the current
// template in place.
func Replace(ctx context.Context, store Store, raw []byte) (*assembly.Template, error) {
	tmpl, err := assembly.ParseTemplate(raw)
	if err != nil {
		return nil, err
	}
	if err := store.Save(ctx, raw); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	return tmpl, nil
}
