package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"golang.org/x/sync/errgroup"
)

// Run executes the "run" command: one session per requested site,
// concurrently. The first interrupt signal stops every session
// gracefully; in-flight navigations observe the cancellation.
func (c *RunCmd) Run(deps *Dependencies) error {
	sites := make([]*scrapsae.SiteProfile, 0, len(c.Sites))
	for _, ref := range c.Sites {
		site, err := findSite(deps, ref)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scrapsae.ErrorMessage(err))
			return err
		}
		sites = append(sites, site)
	}

	if c.MaxDepth > 0 {
		deps.Controller.Engine.MaxDepth = c.MaxDepth
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(deps.Stderr, "stopping...")
		for _, site := range sites {
			_ = deps.Controller.Stop(site.ID)
		}
	}()

	g, ctx := errgroup.WithContext(deps.Ctx)
	for _, site := range sites {
		g.Go(func() error {
			session, err := deps.Controller.Start(ctx, site.ID)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "%s: %s\n", site.Name, scrapsae.ErrorMessage(err))
				return err
			}
			fmt.Fprintf(deps.Stdout, "%s: started execution %s\n", site.Name, session.ExecutionID)

			if err := deps.Controller.Wait(ctx, site.ID); err != nil {
				return err
			}

			final, err := deps.Controller.Status(site.ID)
			if err != nil {
				return err
			}

			switch final.State {
			case scrapsae.StateCompleted:
				if result := deps.Controller.Result(site.ID); result != nil {
					fmt.Fprintf(deps.Stdout,
						"%s: completed in %s (%d found, %d created, %d updated, %d skipped)\n",
						site.Name, result.Duration.Round(roundTo),
						result.ProductsFound, result.ProductsCreated,
						result.ProductsUpdated, result.ProductsSkipped)
				} else {
					fmt.Fprintf(deps.Stdout, "%s: completed\n", site.Name)
				}
				printAppliedChanges(deps, site, session.StartedAt)
			case scrapsae.StateStopped:
				fmt.Fprintf(deps.Stdout, "%s: stopped\n", site.Name)
			default:
				fmt.Fprintf(deps.Stderr, "%s: %s %s\n", site.Name, final.State, final.Message)
				return scrapsae.Errorf(scrapsae.EINTERNAL, "run for %q ended in state %s", site.Name, final.State)
			}
			return nil
		})
	}

	return g.Wait()
}

// printAppliedChanges reports configuration changes the analyzer applied
// during this run. Audit read failures are not worth failing a completed
// run over.
func printAppliedChanges(deps *Dependencies, site *scrapsae.SiteProfile, since time.Time) {
	changes, err := deps.Audit.FindChangesBySite(deps.Ctx, site.ID, 20)
	if err != nil {
		return
	}
	for _, change := range changes {
		if change.Source != scrapsae.ChangeSourceAuto || change.CreatedAt.Before(since) {
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s: applied %s: %q -> %q (%s)\n",
			site.Name, change.Property, change.OldValue, change.NewValue, change.Reason)
	}
}
