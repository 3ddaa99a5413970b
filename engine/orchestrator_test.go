package engine_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/engine"
	"github.com/oscarfg78/ScrapSAE-sub000/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func namedStrategy(name string, fn func() ([]*scrapsae.Product, error)) *mock.Strategy {
	return &mock.Strategy{
		NameFn: func() string { return name },
		ExecuteFn: func(_ context.Context, _ scrapsae.PageDriver, _ *scrapsae.SiteProfile, _ string) ([]*scrapsae.Product, error) {
			return fn()
		},
	}
}

func stubPage() *mock.PageDriver {
	return &mock.PageDriver{
		URLFn: func() string { return "https://example.com/p" },
	}
}

func TestOrchestrator_Execute(t *testing.T) {
	t.Parallel()

	site := &scrapsae.SiteProfile{
		ID:   "site-1",
		Name: "example",
		Strategies: []scrapsae.StrategyDefinition{
			{Name: scrapsae.StrategyDirect, Priority: 1, Enabled: true},
			{Name: scrapsae.StrategyList, Priority: 2, Enabled: true},
			{Name: scrapsae.StrategyFamilies, Priority: 3, Enabled: true},
		},
	}

	t.Run("first strategy that yields products wins", func(t *testing.T) {
		t.Parallel()

		listCalled := false
		o := engine.NewOrchestrator(discardLogger(),
			namedStrategy(scrapsae.StrategyDirect, func() ([]*scrapsae.Product, error) {
				return []*scrapsae.Product{{Title: "from direct"}}, nil
			}),
			namedStrategy(scrapsae.StrategyList, func() ([]*scrapsae.Product, error) {
				listCalled = true
				return []*scrapsae.Product{{Title: "from list"}}, nil
			}),
			namedStrategy(scrapsae.StrategyFamilies, func() ([]*scrapsae.Product, error) {
				return nil, nil
			}),
		)

		products := o.Execute(context.Background(), stubPage(), site, "exec-1")

		require.Len(t, products, 1)
		assert.Equal(t, "from direct", products[0].Title)
		assert.False(t, listCalled, "lower-priority strategy must not run after a success")
	})

	t.Run("falls through failures and empty results", func(t *testing.T) {
		t.Parallel()

		o := engine.NewOrchestrator(discardLogger(),
			namedStrategy(scrapsae.StrategyDirect, func() ([]*scrapsae.Product, error) {
				return nil, errors.New("selector error")
			}),
			namedStrategy(scrapsae.StrategyList, func() ([]*scrapsae.Product, error) {
				return nil, nil
			}),
			namedStrategy(scrapsae.StrategyFamilies, func() ([]*scrapsae.Product, error) {
				return []*scrapsae.Product{{Title: "variant"}}, nil
			}),
		)

		products := o.Execute(context.Background(), stubPage(), site, "exec-1")

		require.Len(t, products, 1)
		assert.Equal(t, "variant", products[0].Title)
	})

	t.Run("every strategy failing yields an empty result, not an error", func(t *testing.T) {
		t.Parallel()

		o := engine.NewOrchestrator(discardLogger(),
			namedStrategy(scrapsae.StrategyDirect, func() ([]*scrapsae.Product, error) {
				return nil, errors.New("boom")
			}),
			namedStrategy(scrapsae.StrategyList, func() ([]*scrapsae.Product, error) {
				return nil, errors.New("boom")
			}),
			namedStrategy(scrapsae.StrategyFamilies, func() ([]*scrapsae.Product, error) {
				return nil, errors.New("boom")
			}),
		)

		assert.Empty(t, o.Execute(context.Background(), stubPage(), site, "exec-1"))
	})

	t.Run("respects configured priority order", func(t *testing.T) {
		t.Parallel()

		reordered := &scrapsae.SiteProfile{
			ID:   "site-2",
			Name: "example",
			Strategies: []scrapsae.StrategyDefinition{
				{Name: scrapsae.StrategyDirect, Priority: 9, Enabled: true},
				{Name: scrapsae.StrategyFamilies, Priority: 1, Enabled: true},
			},
		}

		var order []string
		o := engine.NewOrchestrator(discardLogger(),
			namedStrategy(scrapsae.StrategyDirect, func() ([]*scrapsae.Product, error) {
				order = append(order, scrapsae.StrategyDirect)
				return []*scrapsae.Product{{Title: "direct"}}, nil
			}),
			namedStrategy(scrapsae.StrategyFamilies, func() ([]*scrapsae.Product, error) {
				order = append(order, scrapsae.StrategyFamilies)
				return nil, nil
			}),
		)

		o.Execute(context.Background(), stubPage(), reordered, "exec-1")

		assert.Equal(t, []string{scrapsae.StrategyFamilies, scrapsae.StrategyDirect}, order)
	})

	t.Run("skips disabled strategies", func(t *testing.T) {
		t.Parallel()

		partial := &scrapsae.SiteProfile{
			ID:   "site-3",
			Name: "example",
			Strategies: []scrapsae.StrategyDefinition{
				{Name: scrapsae.StrategyDirect, Priority: 1, Enabled: false},
				{Name: scrapsae.StrategyList, Priority: 2, Enabled: true},
			},
		}

		o := engine.NewOrchestrator(discardLogger(),
			namedStrategy(scrapsae.StrategyDirect, func() ([]*scrapsae.Product, error) {
				t.Error("disabled strategy must not run")
				return nil, nil
			}),
			namedStrategy(scrapsae.StrategyList, func() ([]*scrapsae.Product, error) {
				return []*scrapsae.Product{{Title: "list"}}, nil
			}),
		)

		products := o.Execute(context.Background(), stubPage(), partial, "exec-1")
		require.Len(t, products, 1)
		assert.Equal(t, "list", products[0].Title)
	})
}
