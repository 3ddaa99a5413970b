package main

import (
	"fmt"
	"path/filepath"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/fs"
)

// roundTo is the display precision for durations.
const roundTo = time.Millisecond

// Run executes the "products" command.
func (c *ProductsCmd) Run(deps *Dependencies) error {
	site, err := findSite(deps, c.Site)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	limit := c.Limit
	if c.Export != "" {
		// Exports always cover the full staging table.
		limit = 0
	}

	products, err := deps.Staging.FindProductsBySite(deps.Ctx, site.ID, limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	if len(products) == 0 {
		fmt.Fprintf(deps.Stdout, "No staged products for %q.\n", site.Name)
		return nil
	}

	if c.Export != "" {
		return c.export(deps, products)
	}

	for _, p := range products {
		sku := p.SKU
		if sku == "" {
			sku = "-"
		}
		price := p.Price
		if price == "" {
			price = "-"
		}
		fmt.Fprintf(deps.Stdout, "%-20s %-12s %s\n", sku, price, p.Title)
	}
	fmt.Fprintf(deps.Stdout, "%d products\n", len(products))
	return nil
}

// export writes products to the target directory via a staged commit, so an
// interrupted export leaves any previous one intact.
func (c *ProductsCmd) export(deps *Dependencies, products []*scrapsae.Product) error {
	store := fs.NewExportStore(filepath.Dir(c.Export), filepath.Base(c.Export))
	for _, p := range products {
		if err := store.Save(p); err != nil {
			store.Abort()
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
			return err
		}
	}
	if err := store.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Exported %d products to %s\n", len(products), c.Export)
	return nil
}

// Run executes the "status" command. Run state lives in the run process, so
// status is reported from the most recent persisted snapshot per site.
func (c *StatusCmd) Run(deps *Dependencies) error {
	var sites []*scrapsae.SiteProfile
	if c.Site != "" {
		site, err := findSite(deps, c.Site)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
			return err
		}
		sites = append(sites, site)
	} else {
		active := true
		found, err := deps.Sites.FindSites(deps.Ctx, scrapsae.SiteFilter{Active: &active})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
			return err
		}
		sites = found
	}

	if len(sites) == 0 {
		fmt.Fprintln(deps.Stdout, "No active sites.")
		return nil
	}

	for _, site := range sites {
		snapshots, err := deps.Metrics.FindMetricsBySite(deps.Ctx, site.ID, 1)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
			return err
		}
		if len(snapshots) == 0 {
			fmt.Fprintf(deps.Stdout, "%-20s never run\n", site.Name)
			continue
		}

		m := snapshots[0]
		state := "completed"
		switch {
		case m.EndedAt.IsZero():
			state = "in progress"
		case m.RequiresManualIntervention:
			state = "needs attention"
		}
		fmt.Fprintf(deps.Stdout, "%-20s %-15s last run %s, %d products\n",
			site.Name, state, m.StartedAt.Format(time.RFC3339), m.ProductsFound)
	}
	return nil
}

// Run executes the "metrics" command.
func (c *MetricsCmd) Run(deps *Dependencies) error {
	site, err := findSite(deps, c.Site)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	snapshots, err := deps.Metrics.FindMetricsBySite(deps.Ctx, site.ID, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	if len(snapshots) == 0 {
		fmt.Fprintf(deps.Stdout, "No runs recorded for %q.\n", site.Name)
		return nil
	}

	for _, m := range snapshots {
		fmt.Fprintf(deps.Stdout, "%s  started %s\n", m.ExecutionID, m.StartedAt.Format(time.RFC3339))
		fmt.Fprintf(deps.Stdout, "  pages %d, products %d (skipped %d), timeouts %d, nav errors %d, avg load %s\n",
			m.PagesVisited, m.ProductsFound, m.ProductsSkipped, m.Timeouts, m.NavigationErrors,
			m.AvgPageLoad.Round(roundTo))
		for selector, sm := range m.Selectors {
			fmt.Fprintf(deps.Stdout, "  %-40s %d/%d ok (%.0f%%)\n",
				selector, sm.Successes, sm.Attempts, sm.SuccessRate()*100)
		}
		if m.RequiresManualIntervention {
			fmt.Fprintln(deps.Stdout, "  requires manual intervention")
		}
	}
	return nil
}

// Run executes the "audit" command.
func (c *AuditCmd) Run(deps *Dependencies) error {
	site, err := findSite(deps, c.Site)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	changes, err := deps.Audit.FindChangesBySite(deps.Ctx, site.ID, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	if len(changes) == 0 {
		fmt.Fprintf(deps.Stdout, "No configuration changes recorded for %q.\n", site.Name)
		return nil
	}

	for _, ch := range changes {
		fmt.Fprintf(deps.Stdout, "%s  [%s]  %s: %q -> %q\n",
			ch.CreatedAt.Format(time.RFC3339), ch.Source, ch.Property, ch.OldValue, ch.NewValue)
		if ch.Reason != "" {
			fmt.Fprintf(deps.Stdout, "  %s\n", ch.Reason)
		}
	}
	return nil
}

// Run executes the "patterns" command.
func (c *PatternsCmd) Run(deps *Dependencies) error {
	site, err := findSite(deps, c.Site)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	patterns, err := deps.Patterns.FindPatternsBySite(deps.Ctx, site.ID)
	if err != nil {
		if scrapsae.ErrorCode(err) == scrapsae.ENOTFOUND {
			fmt.Fprintf(deps.Stdout, "No learned patterns for %q yet.\n", site.Name)
			return nil
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "confidence %.2f (updated %s)\n",
		patterns.Confidence, patterns.UpdatedAt.Format(time.RFC3339))
	if patterns.ProductTemplate != "" {
		fmt.Fprintf(deps.Stdout, "product:     %s\n", patterns.ProductTemplate)
	}
	if patterns.ListingTemplate != "" {
		fmt.Fprintf(deps.Stdout, "listing:     %s\n", patterns.ListingTemplate)
	}
	if patterns.SubcategoryTemplate != "" {
		fmt.Fprintf(deps.Stdout, "subcategory: %s\n", patterns.SubcategoryTemplate)
	}
	if patterns.NavigationHint != "" {
		fmt.Fprintf(deps.Stdout, "navigation:  %s\n", patterns.NavigationHint)
	}
	return nil
}
