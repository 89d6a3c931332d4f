// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve locates open-access PDF URLs for selected papers. Each
// paper runs through a fixed strategy chain (OpenAlex, Unpaywall, Semantic
// Scholar, NBER direct) stopping at the first match; exhausting the chain
// flags the paper for manual download, which is a normal outcome, not an
// error. Resolution across papers runs on a small worker pool.
package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/litscout/pkg/types"
)

// Strategy is one way of finding an open-access PDF URL for a paper.
// Resolve returns "" when the strategy has no match; an error is treated
// the same as no match by the chain.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, p types.Paper) (string, error)
}

// Outcome is the result of resolving one paper.
type Outcome struct {
	// ID is the paper's identity.
	ID string

	// PDFURL is the resolved URL, "" when the chain was exhausted.
	PDFURL string

	// Strategy names the strategy that matched, "" on exhaustion.
	Strategy string

	// Manual reports that no strategy matched.
	Manual bool
}

// Resolver runs the strategy chain.
type Resolver struct {
	strategies []Strategy
	timeout    time.Duration
	workers    int
}

// New builds a resolver with the standard chain in priority order.
// The Semantic Scholar strategy shares one rate limiter across all workers
// so the pool never exceeds the API's request budget.
func New(cfg types.ResolveConfig, client *http.Client) *Resolver {
	timeout := cfg.StrategyTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 3
	}

	perSecond := cfg.SemanticScholarRate
	if perSecond <= 0 {
		perSecond = 0.3
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), 1)

	return &Resolver{
		strategies: []Strategy{
			&openAlexStrategy{client: client, email: cfg.Email, userAgent: cfg.UserAgent},
			&unpaywallStrategy{client: client, email: cfg.Email, userAgent: cfg.UserAgent},
			&semanticScholarStrategy{client: client, apiKey: cfg.SemanticScholarAPIKey, userAgent: cfg.UserAgent, limiter: limiter},
			&nberStrategy{},
		},
		timeout: timeout,
		workers: workers,
	}
}

// NewWithChain builds a resolver over an explicit strategy chain.
func NewWithChain(cfg types.ResolveConfig, strategies ...Strategy) *Resolver {
	r := New(cfg, http.DefaultClient)
	r.strategies = strategies
	return r
}

// Resolve runs the chain for one paper. Each strategy gets its own timeout;
// a strategy that errors or finds nothing hands over to the next one.
func (r *Resolver) Resolve(ctx context.Context, p types.Paper) Outcome {
	for _, s := range r.strategies {
		sctx, cancel := context.WithTimeout(ctx, r.timeout)
		url, err := s.Resolve(sctx, p)
		cancel()
		if err != nil || url == "" {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return Outcome{ID: p.ID, PDFURL: url, Strategy: s.Name()}
	}
	return Outcome{ID: p.ID, Manual: true}
}

// BatchSummary reports the outcome of a resolution pass.
type BatchSummary struct {
	Resolved int
	Manual   int
}

// ResolveBatch resolves papers concurrently on the worker pool and reports
// per-paper progress on w. Outcomes are returned in input order.
func (r *Resolver) ResolveBatch(ctx context.Context, papers []types.Paper, w io.Writer) ([]Outcome, BatchSummary) {
	outcomes := make([]Outcome, len(papers))

	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup
	for i, p := range papers {
		wg.Add(1)
		go func(i int, p types.Paper) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = r.Resolve(ctx, p)
		}(i, p)
	}
	wg.Wait()

	var sum BatchSummary
	for i, o := range outcomes {
		if o.Manual {
			sum.Manual++
			fmt.Fprintf(w, "  %s: no open-access PDF, manual download\n", papers[i].Title)
		} else {
			sum.Resolved++
			fmt.Fprintf(w, "  %s: resolved via %s\n", papers[i].Title, o.Strategy)
		}
	}
	return outcomes, sum
}
