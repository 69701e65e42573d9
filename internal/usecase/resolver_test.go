package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stockroom/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a scriptable provider with call counting
type stubProvider struct {
	name     string
	disabled bool
	record   *domain.ProductRecord
	err      error
	delay    time.Duration
	calls    int
}

func (p *stubProvider) Name() string  { return p.name }
func (p *stubProvider) Enabled() bool { return !p.disabled }

func (p *stubProvider) Lookup(ctx context.Context, upc string) (*domain.ProductRecord, error) {
	p.calls++
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.record, nil
}

func record(upc, title string) *domain.ProductRecord {
	return &domain.ProductRecord{UPC: upc, Title: title}
}

func TestResolve_FirstProviderWins(t *testing.T) {
	primary := &stubProvider{name: "primary", record: record("012345678905", "Widget")}
	secondary := &stubProvider{name: "secondary", record: record("012345678905", "Wrong")}
	tertiary := &stubProvider{name: "tertiary", record: record("012345678905", "AlsoWrong")}

	r := NewResolver([]domain.Provider{primary, secondary, tertiary}, time.Second)

	got, err := r.Resolve(context.Background(), "012345678905")

	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Title)

	// Chain must stop at the first match
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
	assert.Equal(t, 0, tertiary.calls)
}

func TestResolve_SkipsDisabledProvider(t *testing.T) {
	primary := &stubProvider{name: "primary", disabled: true, record: record("012345678905", "Widget")}
	secondary := &stubProvider{name: "secondary", record: record("012345678905", "Gadget")}

	r := NewResolver([]domain.Provider{primary, secondary}, time.Second)

	got, err := r.Resolve(context.Background(), "012345678905")

	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Title)
	// No request is ever made to a disabled provider
	assert.Equal(t, 0, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestResolve_UnauthorizedFallsThrough(t *testing.T) {
	primary := &stubProvider{name: "primary", err: domain.ErrProviderUnauthorized}
	secondary := &stubProvider{name: "secondary", record: record("012345678905", "Gadget")}

	r := NewResolver([]domain.Provider{primary, secondary}, time.Second)

	got, err := r.Resolve(context.Background(), "012345678905")

	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Title)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestResolve_NoMatchFallsThrough(t *testing.T) {
	primary := &stubProvider{name: "primary", err: domain.ErrNoMatch}
	secondary := &stubProvider{name: "secondary", err: domain.ErrNoMatch}
	tertiary := &stubProvider{name: "tertiary", record: record("012345678905", "Spread")}

	r := NewResolver([]domain.Provider{primary, secondary, tertiary}, time.Second)

	got, err := r.Resolve(context.Background(), "012345678905")

	require.NoError(t, err)
	assert.Equal(t, "Spread", got.Title)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, 1, tertiary.calls)
}

func TestResolve_TransientErrorFallsThrough(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("connection refused")}
	secondary := &stubProvider{name: "secondary", record: record("012345678905", "Gadget")}

	r := NewResolver([]domain.Provider{primary, secondary}, time.Second)

	got, err := r.Resolve(context.Background(), "012345678905")

	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Title)
}

func TestResolve_TimeoutCancelsOnlyThatProvider(t *testing.T) {
	slow := &stubProvider{name: "slow", delay: 200 * time.Millisecond, record: record("012345678905", "Late")}
	fast := &stubProvider{name: "fast", record: record("012345678905", "Gadget")}

	r := NewResolver([]domain.Provider{slow, fast}, 20*time.Millisecond)

	got, err := r.Resolve(context.Background(), "012345678905")

	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Title)
	assert.Equal(t, 1, slow.calls)
	assert.Equal(t, 1, fast.calls)
}

func TestResolve_ExhaustionIsNotFound(t *testing.T) {
	providers := []domain.Provider{
		&stubProvider{name: "primary", err: errors.New("boom")},
		&stubProvider{name: "secondary", err: domain.ErrNoMatch},
		&stubProvider{name: "tertiary", err: domain.ErrProviderUnauthorized},
	}

	r := NewResolver(providers, time.Second)

	got, err := r.Resolve(context.Background(), "012345678905")

	assert.Nil(t, got)
	// Internal provider errors never leak; exhaustion is a plain not-found
	assert.ErrorIs(t, err, domain.ErrNoMatch)
	assert.NotErrorIs(t, err, domain.ErrProviderUnauthorized)
}

func TestResolve_NilRecordWithoutErrorTreatedAsNoMatch(t *testing.T) {
	broken := &stubProvider{name: "broken"} // returns (nil, nil)
	fallback := &stubProvider{name: "fallback", record: record("012345678905", "Gadget")}

	r := NewResolver([]domain.Provider{broken, fallback}, time.Second)

	got, err := r.Resolve(context.Background(), "012345678905")

	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Title)
}

func TestResolve_CallerCancellationStopsChain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := &stubProvider{name: "slow", delay: 50 * time.Millisecond}
	next := &stubProvider{name: "next", record: record("012345678905", "Gadget")}

	r := NewResolver([]domain.Provider{slow, next}, time.Second)

	got, err := r.Resolve(ctx, "012345678905")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, next.calls)
}
