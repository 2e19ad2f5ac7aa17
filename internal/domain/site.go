package domain

import (
	"context"
	"log/slog"
)

// SiteInfo describes where a charger is installed, as reported by the
// cloud API.
type SiteInfo struct {
	SiteID      string
	CircuitID   string
	ChargerName string
}

// SiteResolver maps a charger id to its site metadata.
type SiteResolver interface {
	ResolveSite(ctx context.Context, chargerID string) (SiteInfo, error)
}

// EnrichWithSite stamps a canonical record with site metadata for the
// charger it came from. A nil resolver or a lookup failure leaves the
// record untouched (graceful degradation); normalization never depends on
// the cloud API being reachable.
func EnrichWithSite(ctx context.Context, rec *Record, chargerID string, resolver SiteResolver, logger *slog.Logger) {
	if rec == nil || resolver == nil || chargerID == "" {
		return
	}

	info, err := resolver.ResolveSite(ctx, chargerID)
	if err != nil {
		logger.Warn("site lookup failed",
			"charger_id", chargerID,
			"data_name", rec.DataName,
			"error", err,
		)
		return
	}

	rec.SiteID = info.SiteID
	rec.CircuitID = info.CircuitID
	rec.ChargerName = info.ChargerName
}
