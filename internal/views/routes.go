package views

import (
	"time"

	"github.com/campsight/campsight/internal/config"
	"github.com/campsight/campsight/internal/routes"
)

// DefaultFallbackDelay is how long renderers should hold off before swapping
// in placeholder content, to avoid a flash on fast loads.
const DefaultFallbackDelay = 200 * time.Millisecond

// Definitions returns the dashboard route table. Every view declares its
// loader and placeholder here; building the registry wraps them into lazy
// units with the given retry budget. The overview and campaign list are
// flagged critical so they are warmed before first paint.
func Definitions(retries int) []routes.Route[Page] {
	return []routes.Route[Page]{
		{
			Path:        "/",
			Title:       "Overview",
			Description: "Cross-campaign performance at a glance",
			Preload:     true,
			Loader:      overviewPage,
			Fallback:    Placeholder("Overview"),
			Retries:     retries,
			Delay:       DefaultFallbackDelay,
		},
		{
			Path:        "/campaigns",
			Description: "Campaign inventory and status",
			Preload:     true,
			Loader:      campaignsPage,
			Fallback:    Placeholder("Campaigns"),
			Retries:     retries,
			Delay:       DefaultFallbackDelay,
		},
		{
			Path:     "/campaigns/:id",
			Title:    "Campaign Detail",
			Loader:   campaignDetailPage,
			Fallback: Placeholder("Campaign Detail"),
			Retries:  retries,
			Delay:    DefaultFallbackDelay,
		},
		{
			Path:        "/audiences",
			Description: "Audience segments and growth",
			Loader:      audiencesPage,
			Fallback:    Placeholder("Audiences"),
			Retries:     retries,
			Delay:       DefaultFallbackDelay,
		},
		{
			Path:        "/analytics",
			Description: "Traffic and conversion analytics",
			Loader:      analyticsPage,
			Fallback:    Placeholder("Analytics"),
			Retries:     retries,
			Delay:       DefaultFallbackDelay,
		},
		{
			Path:        "/analytics/reports",
			Description: "Weekly performance digest",
			Loader:      reportsPage,
			Fallback:    Placeholder("Reports"),
			Retries:     retries,
			Delay:       DefaultFallbackDelay,
		},
		{
			Path:        "/settings",
			Description: "Workspace preferences",
			Loader:      settingsPage,
			Fallback:    Placeholder("Settings"),
			Retries:     retries,
			Delay:       DefaultFallbackDelay,
		},
	}
}

// NewRegistry builds the dashboard route registry from cfg.
func NewRegistry(cfg *config.Config) (*routes.Registry[Page], error) {
	return routes.New(
		Definitions(cfg.Preload.Retries),
		routes.WithDefaultTitle[Page](cfg.App.DefaultTitle),
	)
}
