package vetting

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

// mockAgeResolver answers lookups with a fixed age or error.
type mockAgeResolver struct {
	ageDays int
	err     error
	calls   atomic.Int32
	domains chan string
}

func (m *mockAgeResolver) CreationDate(ctx context.Context, domain string) (time.Time, error) {
	m.calls.Add(1)
	if m.domains != nil {
		m.domains <- domain
	}
	if m.err != nil {
		return time.Time{}, m.err
	}
	return testNow.AddDate(0, 0, -m.ageDays), nil
}

func newTestAnalyzer(ages AgeResolver) *Analyzer {
	a := NewAnalyzer(ages, time.Second, nil)
	a.Now = func() time.Time { return testNow }
	return a
}

func TestAnalyze_PhishingURLWithWhoisDown(t *testing.T) {
	a := newTestAnalyzer(&mockAgeResolver{err: errors.New("whois unavailable")})

	resp, err := a.Analyze(context.Background(), "http://verify-login-update.xyz")
	require.NoError(t, err)

	assert.Equal(t, 70, resp.StaticRiskScore)
	assert.Equal(t, StaticAnalysisMetadata{
		Domain:             "verify-login-update.xyz",
		TLD:                ".xyz",
		HasHTTPS:           false,
		DomainAgeDays:      nil,
		SuspiciousKeywords: []string{"login", "verify", "update"},
		SuspiciousTLD:      true,
	}, resp.StaticAnalysis)
	assert.Equal(t, []string{
		"Website does not use HTTPS encryption",
		"Could not verify domain age (WHOIS unavailable)",
		"Found 3 suspicious keyword(s) in URL: login, verify, update",
		"Domain uses a suspicious top-level domain (TLD)",
	}, resp.StaticReasons)
}

func TestAnalyze_EstablishedDomainHitsFloor(t *testing.T) {
	a := newTestAnalyzer(&mockAgeResolver{ageDays: 1000})

	resp, err := a.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, 5, resp.StaticRiskScore)
	require.NotNil(t, resp.StaticAnalysis.DomainAgeDays)
	assert.Equal(t, 1000, *resp.StaticAnalysis.DomainAgeDays)
	assert.Empty(t, resp.StaticAnalysis.SuspiciousKeywords)
	assert.NotNil(t, resp.StaticAnalysis.SuspiciousKeywords)
	assert.False(t, resp.StaticAnalysis.SuspiciousTLD)
	assert.True(t, resp.StaticAnalysis.HasHTTPS)
}

func TestAnalyze_LooksUpRegistrableDomain(t *testing.T) {
	ages := &mockAgeResolver{ageDays: 400, domains: make(chan string, 1)}
	a := newTestAnalyzer(ages)

	_, err := a.Analyze(context.Background(), "https://login.accounts.example.co.uk/reset")
	require.NoError(t, err)

	assert.Equal(t, "example.co.uk", <-ages.domains)
}

func TestAnalyze_Idempotent(t *testing.T) {
	a := newTestAnalyzer(&mockAgeResolver{ageDays: 45})

	first, err := a.Analyze(context.Background(), "https://secure-update.top/account")
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), "https://secure-update.top/account")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// 0 https + 20 age + 15 keywords + 20 tld
	assert.Equal(t, 55, first.StaticRiskScore)
}

func TestAnalyze_SlowWhoisTimesOut(t *testing.T) {
	slow := AgeResolverFunc(func(ctx context.Context, domain string) (time.Time, error) {
		select {
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		case <-time.After(5 * time.Second):
			return testNow, nil
		}
	})
	a := newTestAnalyzer(slow)
	a.LookupTimeout = 20 * time.Millisecond

	start := time.Now()
	resp, err := a.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Nil(t, resp.StaticAnalysis.DomainAgeDays)
	assert.Equal(t, 15, resp.StaticRiskScore)
}

func TestAnalyze_NoDomainSkipsLookup(t *testing.T) {
	ages := &mockAgeResolver{ageDays: 1000}
	a := newTestAnalyzer(ages)

	resp, err := a.Analyze(context.Background(), "https://")
	require.NoError(t, err)

	assert.Equal(t, int32(0), ages.calls.Load())
	assert.Equal(t, "", resp.StaticAnalysis.Domain)
	assert.Len(t, resp.StaticReasons, 4)
}

func TestAnalyze_NilResolver(t *testing.T) {
	a := newTestAnalyzer(nil)

	resp, err := a.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Nil(t, resp.StaticAnalysis.DomainAgeDays)
}

func TestAnalyze_EmptyURL(t *testing.T) {
	a := newTestAnalyzer(&mockAgeResolver{})

	_, err := a.Analyze(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestAnalyze_PanickingResolverMeansAgeUnknown(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	broken := AgeResolverFunc(func(ctx context.Context, domain string) (time.Time, error) {
		panic("registry client exploded")
	})
	a := newTestAnalyzer(broken)
	a.Metrics = m

	resp, err := a.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, 15, resp.StaticRiskScore)
	assert.Nil(t, resp.StaticAnalysis.DomainAgeDays)
	assert.Equal(t, "Could not verify domain age (WHOIS unavailable)", resp.StaticReasons[1])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.whoisLookups.WithLabelValues(whoisOutcomeFailure)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.failures))
}

func TestAnalyze_CanceledContext(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	a := newTestAnalyzer(&mockAgeResolver{ageDays: 400})
	a.Metrics = m

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := a.Analyze(ctx, "https://example.com")
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures))
}

func TestAnalyze_IDNLookupUsesASCII(t *testing.T) {
	ages := &mockAgeResolver{ageDays: 400, domains: make(chan string, 1)}
	a := newTestAnalyzer(ages)

	resp, err := a.Analyze(context.Background(), "https://www.münchen.de/login")
	require.NoError(t, err)

	assert.Equal(t, "xn--mnchen-3ya.de", <-ages.domains)
	assert.Equal(t, "münchen.de", resp.StaticAnalysis.Domain)
	assert.Equal(t, ".de", resp.StaticAnalysis.TLD)
}

func TestRecovered(t *testing.T) {
	err := recovered("lexical checks", func() error {
		panic("boom")
	})()
	require.Error(t, err)
	assert.Equal(t, "lexical checks: boom", err.Error())

	assert.NoError(t, recovered("ok", func() error { return nil })())
}

func TestAnalyze_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	a := newTestAnalyzer(&mockAgeResolver{err: errors.New("refused")})
	a.Metrics = m

	_, err := a.Analyze(context.Background(), "http://verify-login-update.xyz")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues(string(RiskLevelHigh))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.whoisLookups.WithLabelValues(whoisOutcomeFailure)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.failures))
}
