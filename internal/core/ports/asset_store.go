package ports

import (
	"context"
	"io"
)

// AssetStore persists uploaded files and returns their public path (e.g. /uploads/x.png).
type AssetStore interface {
	Save(ctx context.Context, originalName string, content io.Reader) (string, error)
	Remove(ctx context.Context, publicPath string) error
}

// AssetCleaner schedules best-effort asset removal. It never reports failure to the caller.
type AssetCleaner interface {
	Schedule(publicPath string)
}
