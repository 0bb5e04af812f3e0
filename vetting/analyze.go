package vetting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyURL is returned when there is nothing to analyze.
var ErrEmptyURL = errors.New("url is empty")

// DefaultLookupTimeout bounds a single domain age lookup.
const DefaultLookupTimeout = 10 * time.Second

// Analyzer runs the static checks for one URL at a time. It holds no
// per-request state and is safe for concurrent use.
type Analyzer struct {
	Ages          AgeResolver
	LookupTimeout time.Duration
	Metrics       *Metrics
	Now           func() time.Time
}

// NewAnalyzer returns an Analyzer backed by ages. A zero timeout uses DefaultLookupTimeout.
func NewAnalyzer(ages AgeResolver, lookupTimeout time.Duration, metrics *Metrics) *Analyzer {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &Analyzer{
		Ages:          ages,
		LookupTimeout: lookupTimeout,
		Metrics:       metrics,
		Now:           time.Now,
	}
}

// Analyze scores rawURL. The URL must already carry a scheme (see NormalizeURL).
// A failed domain age lookup is part of a normal result; only unexpected
// internal failures are returned as errors.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (resp *StaticAnalysisResponse, err error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrEmptyURL
	}

	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("analyze %s: %v", rawURL, r)
		}
		if err != nil {
			a.Metrics.observeFailure()
		}
	}()

	info := ParseDomain(rawURL)

	var (
		keywords      []string
		suspiciousTLD bool
		ageDays       *int
	)

	g, gctx := errgroup.WithContext(ctx)

	// WHOIS
	g.Go(func() error {
		ageDays = a.domainAge(gctx, info.LookupName())
		return nil
	})

	// Keywords + TLD
	g.Go(recovered("lexical checks", func() error {
		keywords = MatchKeywords(rawURL)
		suspiciousTLD = IsSuspiciousTLD(info.TLD)
		return nil
	}))

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", rawURL, err)
	}
	// caller gone
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", rawURL, err)
	}

	risk := CalculateRisk(Signals{
		HasHTTPS:           info.HasHTTPS,
		DomainAgeDays:      ageDays,
		SuspiciousKeywords: keywords,
		SuspiciousTLD:      suspiciousTLD,
	})
	a.Metrics.observeAnalysis(risk.Score)

	log.Printf("[ANALYZE] %s -> domain=%s score=%d level=%s (https:%d age:%d keywords:%d tld:%d)",
		rawURL, info.Domain, risk.Score, ClassifyRisk(risk.Score),
		risk.Breakdown.HTTPS, risk.Breakdown.DomainAge, risk.Breakdown.Keywords, risk.Breakdown.TLD)

	return &StaticAnalysisResponse{
		StaticRiskScore: risk.Score,
		StaticReasons:   risk.Reasons,
		StaticAnalysis: StaticAnalysisMetadata{
			Domain:             info.Domain,
			TLD:                info.TLD,
			HasHTTPS:           info.HasHTTPS,
			DomainAgeDays:      ageDays,
			SuspiciousKeywords: keywords,
			SuspiciousTLD:      suspiciousTLD,
		},
	}, nil
}

func (a *Analyzer) domainAge(ctx context.Context, domain string) *int {
	if a.Ages == nil || domain == "" {
		a.Metrics.observeWhois(0, nil, true)
		return nil
	}

	start := time.Now()
	days, err := a.resolveAge(ctx, domain)
	a.Metrics.observeWhois(time.Since(start), err, false)
	if err != nil {
		logWhoisFailure(domain, err)
		return nil
	}
	return days
}

// resolveAge reports a panicking resolver as a failed lookup.
func (a *Analyzer) resolveAge(ctx context.Context, domain string) (days *int, err error) {
	defer func() {
		if r := recover(); r != nil {
			days, err = nil, fmt.Errorf("whois panic: %v", r)
		}
	}()
	return ResolveAge(ctx, a.Ages, domain, a.LookupTimeout, a.now())
}

func (a *Analyzer) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// recovered turns a panic inside fn into an error for the errgroup.
func recovered(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s: %v", name, r)
			}
		}()
		return fn()
	}
}
