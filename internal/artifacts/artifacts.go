// Package artifacts archives generated images.
package artifacts

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

// Store persists one image under key and returns where it went
type Store interface {
	Put(ctx context.Context, key string, png []byte) (string, error)
}

// Key names the archived image of a job finished at t
func Key(correlationID uint64, t time.Time) string {
	return fmt.Sprintf("%s/%s-%d.png", t.Format("2006-01-02"), t.Format("150405"), correlationID)
}

// New creates the store for the configured backend. A nil store disables archiving.
func New(ctx context.Context, cfg *utils.Config) (Store, error) {
	switch cfg.ArtifactBackend {
	case "", "none":
		return nil, nil
	case "local":
		return NewLocalStore(afero.NewOsFs(), cfg.ArtifactRoot), nil
	case "minio":
		store, err := NewMinIOStore(ctx, MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.ArtifactBackend)
	}
}
