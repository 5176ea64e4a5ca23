package geo

import (
	"context"

	"github.com/hive-corporation/f2b-notifier/internal/core/domain"
)

// Disabled is the Geolocator used when enrichment is turned off in config.
type Disabled struct{}

func (Disabled) Name() string {
	return "disabled"
}

func (Disabled) Locate(context.Context, string) domain.Enrichment {
	return domain.Unenrich(nil)
}
