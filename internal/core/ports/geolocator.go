package ports

import (
	"context"

	"github.com/hive-corporation/f2b-notifier/internal/core/domain"
)

// Geolocator resolves an IP address to its country of origin.
type Geolocator interface {
	// Locate is best-effort: any failure yields an Unenriched result.
	Locate(ctx context.Context, ip string) domain.Enrichment
	Name() string
}
