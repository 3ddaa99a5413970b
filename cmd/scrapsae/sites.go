package main

import (
	"encoding/json"
	"fmt"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Run executes the "sites add" command.
func (c *SitesAddCmd) Run(deps *Dependencies) error {
	site := &scrapsae.SiteProfile{
		Name:    c.Name,
		BaseURL: c.URL,
		Strategies: []scrapsae.StrategyDefinition{
			{Name: "direct", Priority: 1, Enabled: true},
			{Name: "list", Priority: 2, Enabled: true},
			{Name: "hybrid", Priority: 3, Enabled: true},
		},
		Selectors: scrapsae.SiteSelectors{
			Title: c.Title,
			Price: c.Price,
			SKU:   c.SKU,
		},
		MaxProducts:       c.MaxProducts,
		NavigationTimeout: 30 * time.Second,
		StepDelay:         500 * time.Millisecond,
		Active:            !c.Inactive,
	}
	if c.Nav != "" {
		site.Selectors.Navigation = []string{c.Nav}
	}

	if err := deps.Sites.CreateSite(deps.Ctx, site); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added site %q (%s)\n", site.Name, site.ID)
	return nil
}

// Run executes the "sites list" command.
func (c *SitesListCmd) Run(deps *Dependencies) error {
	filter := scrapsae.SiteFilter{}
	if !c.All {
		active := true
		filter.Active = &active
	}

	sites, err := deps.Sites.FindSites(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	if len(sites) == 0 {
		fmt.Fprintln(deps.Stdout, "No sites found. Use 'scrapsae sites add' to register one.")
		return nil
	}

	for _, s := range sites {
		state := "active"
		if !s.Active {
			state = "inactive"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", s.ID, s.Name, s.BaseURL, state)
	}

	return nil
}

// Run executes the "sites show" command.
func (c *SitesShowCmd) Run(deps *Dependencies) error {
	site, err := findSite(deps, c.Site)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	out, err := json.MarshalIndent(site, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, string(out))
	return nil
}

// Run executes the "sites update" command.
func (c *SitesUpdateCmd) Run(deps *Dependencies) error {
	site, err := findSite(deps, c.Site)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	upd := scrapsae.SiteUpdate{}

	// Selector updates go through Promote so the prior selector is kept
	// as a fallback.
	if c.Title != "" || c.Price != "" || c.SKU != "" {
		selectors := site.Selectors
		for field, sel := range map[string]string{
			scrapsae.FieldTitle: c.Title,
			scrapsae.FieldPrice: c.Price,
			scrapsae.FieldSKU:   c.SKU,
		} {
			if sel == "" {
				continue
			}
			if err := selectors.Promote(field, sel); err != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
				return err
			}
		}
		upd.Selectors = &selectors
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: invalid timeout %q\n", c.Timeout)
			return err
		}
		upd.NavigationTimeout = &d
	}
	if c.Delay != "" {
		d, err := time.ParseDuration(c.Delay)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: invalid delay %q\n", c.Delay)
			return err
		}
		upd.StepDelay = &d
	}
	if c.MaxProducts >= 0 {
		upd.MaxProducts = &c.MaxProducts
	}
	if len(c.SitemapExclude) > 0 {
		upd.SitemapExcludes = &c.SitemapExclude
	}
	if c.Activate {
		active := true
		upd.Active = &active
	}
	if c.Deactivate {
		active := false
		upd.Active = &active
	}

	updated, err := deps.Sites.UpdateSite(deps.Ctx, site.ID, upd)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	// Manual edits land in the same audit trail as automatic ones.
	for field, sel := range map[string]string{
		"selectors.title": c.Title,
		"selectors.price": c.Price,
		"selectors.sku":   c.SKU,
	} {
		if sel == "" {
			continue
		}
		_ = deps.Audit.AppendChange(deps.Ctx, &scrapsae.ConfigurationChange{
			SiteID:   site.ID,
			Property: field,
			NewValue: sel,
			Source:   scrapsae.ChangeSourceManual,
			Reason:   "operator update",
		})
	}

	fmt.Fprintf(deps.Stdout, "Updated site %q\n", updated.Name)
	return nil
}

// Run executes the "sites delete" command.
func (c *SitesDeleteCmd) Run(deps *Dependencies) error {
	site, err := findSite(deps, c.Site)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	if !c.Force {
		fmt.Fprintf(deps.Stdout, "This deletes site %q and its staged products. Re-run with --force to confirm.\n", site.Name)
		return nil
	}

	if err := deps.Sites.DeleteSite(deps.Ctx, site.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted site %q\n", site.Name)
	return nil
}
