package vetting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	parser "github.com/likexian/whois-parser"
)

// ErrNoCreationDate is returned when a WHOIS record carries no usable creation date.
var ErrNoCreationDate = errors.New("whois record has no creation date")

// AgeResolver looks up when a domain was registered.
type AgeResolver interface {
	CreationDate(ctx context.Context, domain string) (time.Time, error)
}

// AgeResolverFunc adapts a plain function to AgeResolver.
type AgeResolverFunc func(ctx context.Context, domain string) (time.Time, error)

func (f AgeResolverFunc) CreationDate(ctx context.Context, domain string) (time.Time, error) {
	return f(ctx, domain)
}

//
// WHOIS LOOKUP
//

// WhoisAgeResolver reads creation dates from public WHOIS servers.
type WhoisAgeResolver struct {
	query func(domain string) (string, error)
}

// NewWhoisAgeResolver returns a resolver whose network calls give up after timeout.
func NewWhoisAgeResolver(timeout time.Duration) *WhoisAgeResolver {
	c := whois.NewClient()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &WhoisAgeResolver{query: func(domain string) (string, error) {
		return c.Whois(domain)
	}}
}

func (r *WhoisAgeResolver) CreationDate(ctx context.Context, domain string) (time.Time, error) {
	type result struct {
		raw string
		err error
	}

	// the whois client has no context support
	done := make(chan result, 1)
	go func() {
		// nobody else can recover on this goroutine
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("whois panic: %v", p)}
			}
		}()
		raw, err := r.query(domain)
		done <- result{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return time.Time{}, fmt.Errorf("whois query %s: %w", domain, res.err)
		}
		return CreationDateFromRecord(res.raw)
	}
}

// CreationDateFromRecord parses a raw WHOIS response and returns its creation date.
func CreationDateFromRecord(raw string) (time.Time, error) {
	p, err := parser.Parse(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("whois parse: %w", err)
	}
	if p.Domain == nil {
		return time.Time{}, ErrNoCreationDate
	}

	if p.Domain.CreatedDateInTime != nil && !p.Domain.CreatedDateInTime.IsZero() {
		return *p.Domain.CreatedDateInTime, nil
	}

	created, ok := parseCreatedDate(p.Domain.CreatedDate)
	if !ok {
		return time.Time{}, ErrNoCreationDate
	}
	return created, nil
}

var createdLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
}

// parseCreatedDate reads the first timestamp of a creation date field.
// Some registries return several dates in one field.
func parseCreatedDate(field string) (time.Time, bool) {
	first := strings.TrimSpace(field)
	if i := strings.IndexAny(first, ",\n"); i >= 0 {
		first = strings.TrimSpace(first[:i])
	}
	if first == "" {
		return time.Time{}, false
	}

	for _, l := range createdLayouts {
		t, err := time.Parse(l, first)
		if err == nil && !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResolveAge returns the domain's age in whole days. The age is nil when it
// cannot be determined; the error then only says why, callers score nil as
// "age unknown" and never abort on it.
func ResolveAge(ctx context.Context, resolver AgeResolver, domain string, timeout time.Duration, now time.Time) (*int, error) {
	if resolver == nil || domain == "" {
		return nil, nil
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	created, err := resolver.CreationDate(ctx, domain)
	if err != nil {
		return nil, err
	}
	if created.IsZero() {
		return nil, ErrNoCreationDate
	}

	days := AgeInDays(created, now)
	return &days, nil
}

// AgeInDays is the number of whole days between created and now, never negative.
func AgeInDays(created, now time.Time) int {
	days := int(now.Sub(created).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func logWhoisFailure(domain string, err error) {
	log.Printf("[WHOIS] Domain age unavailable for %s: %v", domain, err)
}
