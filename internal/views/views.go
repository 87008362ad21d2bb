// Package views defines the CampSight dashboard pages and their lazy
// loaders. Page content is derived from embedded campaign and segment
// fixtures, so view loading stays deterministic while still doing real
// decode-and-aggregate work at load time.
package views

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed data/campaigns.json
var campaignsJSON []byte

//go:embed data/segments.json
var segmentsJSON []byte

// printer is the locale-aware message printer for number formatting.
// Uses English locale for consistent thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// Page is the rendered content of one dashboard view.
type Page struct {
	Heading string
	Body    string
}

// Placeholder returns the fallback page shown while a view's real content
// has not loaded yet.
func Placeholder(title string) Page {
	return Page{
		Heading: title,
		Body:    "Content is still loading.",
	}
}

// Campaign is one marketing campaign from the embedded fixture.
type Campaign struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Channel     string `json:"channel"`
	Budget      int64  `json:"budget"`
	Impressions int64  `json:"impressions"`
	Clicks      int64  `json:"clicks"`
	Conversions int64  `json:"conversions"`
}

// CTR returns the click-through rate as a percentage.
func (c Campaign) CTR() float64 {
	if c.Impressions == 0 {
		return 0
	}
	return float64(c.Clicks) / float64(c.Impressions) * 100
}

// ConversionRate returns conversions per click as a percentage.
func (c Campaign) ConversionRate() float64 {
	if c.Clicks == 0 {
		return 0
	}
	return float64(c.Conversions) / float64(c.Clicks) * 100
}

// Segment is one audience segment from the embedded fixture.
type Segment struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Size        int64   `json:"size"`
	Growth      float64 `json:"growth"`
	Description string  `json:"description"`
}

func loadCampaigns() ([]Campaign, error) {
	var campaigns []Campaign
	if err := json.Unmarshal(campaignsJSON, &campaigns); err != nil {
		return nil, fmt.Errorf("decode campaign fixture: %w", err)
	}
	if len(campaigns) == 0 {
		return nil, errors.New("campaign fixture is empty")
	}
	return campaigns, nil
}

func loadSegments() ([]Segment, error) {
	var segments []Segment
	if err := json.Unmarshal(segmentsJSON, &segments); err != nil {
		return nil, fmt.Errorf("decode segment fixture: %w", err)
	}
	if len(segments) == 0 {
		return nil, errors.New("segment fixture is empty")
	}
	return segments, nil
}

func formatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

func formatMoney(n int64) string {
	return printer.Sprintf("$%d", n)
}

func overviewPage(context.Context) (Page, error) {
	campaigns, err := loadCampaigns()
	if err != nil {
		return Page{}, err
	}

	var active int
	var impressions, clicks, conversions int64
	top := campaigns[0]
	for _, c := range campaigns {
		if c.Status == "active" {
			active++
		}
		impressions += c.Impressions
		clicks += c.Clicks
		conversions += c.Conversions
		if c.Conversions > top.Conversions {
			top = c
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Campaigns: %d (%d active)\n", len(campaigns), active)
	fmt.Fprintf(&b, "Impressions: %s\n", formatCount(impressions))
	fmt.Fprintf(&b, "Clicks: %s\n", formatCount(clicks))
	fmt.Fprintf(&b, "Conversions: %s\n", formatCount(conversions))
	fmt.Fprintf(&b, "Top performer: %s (%s conversions)", top.Name, formatCount(top.Conversions))

	return Page{Heading: "Overview", Body: b.String()}, nil
}

func campaignsPage(context.Context) (Page, error) {
	campaigns, err := loadCampaigns()
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	for i, c := range campaigns {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-22s %-8s %10s budget  %s impressions",
			c.Name, c.Status, formatMoney(c.Budget), formatCount(c.Impressions))
	}

	return Page{Heading: "Campaigns", Body: b.String()}, nil
}

func campaignDetailPage(context.Context) (Page, error) {
	// The detail view is parameterized by campaign id at navigation time;
	// the lazily loaded part is the view itself.
	body := strings.Join([]string{
		"Select a campaign to inspect spend pacing, creative",
		"performance, and conversion funnels for a single campaign.",
	}, "\n")
	return Page{Heading: "Campaign Detail", Body: body}, nil
}

func audiencesPage(context.Context) (Page, error) {
	segments, err := loadSegments()
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	for i, s := range segments {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-22s %10s members  %+.1f%%  %s",
			s.Name, formatCount(s.Size), s.Growth, s.Description)
	}

	return Page{Heading: "Audiences", Body: b.String()}, nil
}

func analyticsPage(context.Context) (Page, error) {
	campaigns, err := loadCampaigns()
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	for i, c := range campaigns {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-22s CTR %5.2f%%  conversion %5.2f%%",
			c.Name, c.CTR(), c.ConversionRate())
	}

	return Page{Heading: "Analytics", Body: b.String()}, nil
}

func reportsPage(context.Context) (Page, error) {
	campaigns, err := loadCampaigns()
	if err != nil {
		return Page{}, err
	}

	bestCTR := campaigns[0]
	bestConversion := campaigns[0]
	var spend int64
	for _, c := range campaigns {
		if c.CTR() > bestCTR.CTR() {
			bestCTR = c
		}
		if c.ConversionRate() > bestConversion.ConversionRate() {
			bestConversion = c
		}
		spend += c.Budget
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly digest\n")
	fmt.Fprintf(&b, "Best CTR: %s (%.2f%%)\n", bestCTR.Name, bestCTR.CTR())
	fmt.Fprintf(&b, "Best conversion rate: %s (%.2f%%)\n", bestConversion.Name, bestConversion.ConversionRate())
	fmt.Fprintf(&b, "Committed budget: %s", formatMoney(spend))

	return Page{Heading: "Reports", Body: b.String()}, nil
}

func settingsPage(context.Context) (Page, error) {
	body := strings.Join([]string{
		"Workspace: default",
		"Timezone: UTC",
		"Currency: USD",
		"Data retention: 13 months",
	}, "\n")
	return Page{Heading: "Settings", Body: body}, nil
}
