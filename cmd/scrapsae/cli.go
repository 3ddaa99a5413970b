package main

import (
	"context"
	"io"
	"log/slog"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/engine"
	"github.com/oscarfg78/ScrapSAE-sub000/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	DB         *sqlite.DB
	Sites      scrapsae.SiteService
	Staging    *sqlite.StagingSink
	Metrics    scrapsae.MetricsService
	Audit      scrapsae.AuditService
	Patterns   scrapsae.PatternService
	Controller *engine.Controller
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Sites    SitesCmd    `cmd:"" help:"Manage site profiles"`
	Run      RunCmd      `cmd:"" help:"Scrape one or more sites"`
	Status   StatusCmd   `cmd:"" help:"Show the most recent run for each site"`
	Products ProductsCmd `cmd:"" help:"List staged products for a site"`
	Metrics  MetricsCmd  `cmd:"" help:"Show execution metrics for a site"`
	Audit    AuditCmd    `cmd:"" help:"Show the configuration change history for a site"`
	Patterns PatternsCmd `cmd:"" help:"Show learned URL patterns for a site"`

	Debug bool `help:"Enable debug logging" short:"d"`
}

// SitesCmd groups the site profile subcommands.
type SitesCmd struct {
	Add    SitesAddCmd    `cmd:"" help:"Register a new site"`
	List   SitesListCmd   `cmd:"" help:"List registered sites"`
	Show   SitesShowCmd   `cmd:"" help:"Show a site's full profile"`
	Update SitesUpdateCmd `cmd:"" help:"Update a site's configuration"`
	Delete SitesDeleteCmd `cmd:"" help:"Delete a site profile"`
}

// SitesAddCmd is the "sites add" subcommand.
type SitesAddCmd struct {
	Name    string `arg:"" help:"Site name"`
	URL     string `arg:"" help:"Site base URL"`
	Title   string `help:"Title selector"`
	Price   string `help:"Price selector"`
	SKU     string `help:"SKU selector" name:"sku"`
	Nav     string `help:"Navigation (category link) selector"`
	MaxProducts int `help:"Cap on products per run (0 = unlimited)"`
	Inactive bool  `help:"Register the site without activating it"`
}

// SitesListCmd is the "sites list" subcommand.
type SitesListCmd struct {
	All bool `help:"Include inactive sites"`
}

// SitesShowCmd is the "sites show" subcommand.
type SitesShowCmd struct {
	Site string `arg:"" help:"Site name or ID"`
}

// SitesUpdateCmd is the "sites update" subcommand.
type SitesUpdateCmd struct {
	Site        string `arg:"" help:"Site name or ID"`
	Title       string `help:"New title selector (promotes the old one to fallback)"`
	Price       string `help:"New price selector"`
	SKU         string `help:"New SKU selector" name:"sku"`
	Timeout     string `help:"Navigation timeout (e.g. 45s)"`
	Delay       string `help:"Step delay between traversal steps (e.g. 1s)"`
	MaxProducts int    `help:"Cap on products per run" default:"-1"`

	SitemapExclude []string `help:"Regex patterns for sitemap URLs to skip (replaces the list)" name:"sitemap-exclude"`

	Activate   bool `help:"Mark the site active"`
	Deactivate bool `help:"Mark the site inactive"`
}

// SitesDeleteCmd is the "sites delete" subcommand.
type SitesDeleteCmd struct {
	Site  string `arg:"" help:"Site name or ID"`
	Force bool   `help:"Confirm deletion"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Sites    []string `arg:"" help:"Site names or IDs to scrape"`
	MaxDepth int      `help:"Category recursion depth bound" default:"0"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	Site string `arg:"" optional:"" help:"Site name or ID (default: all active sites)"`
}

// ProductsCmd is the "products" subcommand.
type ProductsCmd struct {
	Site   string `arg:"" help:"Site name or ID"`
	Limit  int    `help:"Maximum rows to print" default:"50"`
	Export string `help:"Write products as Markdown files to this directory instead of printing" placeholder:"DIR"`
}

// MetricsCmd is the "metrics" subcommand.
type MetricsCmd struct {
	Site  string `arg:"" help:"Site name or ID"`
	Limit int    `help:"Number of runs to show" default:"5"`
}

// AuditCmd is the "audit" subcommand.
type AuditCmd struct {
	Site  string `arg:"" help:"Site name or ID"`
	Limit int    `help:"Number of entries to show" default:"20"`
}

// PatternsCmd is the "patterns" subcommand.
type PatternsCmd struct {
	Site string `arg:"" help:"Site name or ID"`
}

// findSite resolves a site reference given as either an ID or a name.
func findSite(deps *Dependencies, ref string) (*scrapsae.SiteProfile, error) {
	site, err := deps.Sites.FindSiteByID(deps.Ctx, ref)
	if err == nil {
		return site, nil
	}
	if scrapsae.ErrorCode(err) != scrapsae.ENOTFOUND {
		return nil, err
	}

	sites, err := deps.Sites.FindSites(deps.Ctx, scrapsae.SiteFilter{Name: &ref})
	if err != nil {
		return nil, err
	}
	if len(sites) == 0 {
		return nil, scrapsae.Errorf(scrapsae.ENOTFOUND, "site %q not found", ref)
	}
	return sites[0], nil
}
