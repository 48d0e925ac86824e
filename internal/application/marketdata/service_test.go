package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-backend/internal/domain"
)

type stubPrices struct {
	quote domain.Money
	calls int
}

func (s *stubPrices) Quote(ctx context.Context, assetIdentifier string) (domain.Money, error) {
	s.calls++
	return s.quote, nil
}

type stubRates struct {
	rate  domain.ExchangeRate
	calls int
}

func (s *stubRates) Rate(ctx context.Context, from, to string) (domain.ExchangeRate, error) {
	s.calls++
	return s.rate, nil
}

func setupMarketData(t *testing.T) (*Service, *stubPrices, *stubRates, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	rate, err := domain.NewExchangeRate("USD", "EUR", decimal.RequireFromString("0.9"), time.Now().UTC())
	require.NoError(t, err)

	prices := &stubPrices{quote: domain.MustMoney("150", "USD")}
	rates := &stubRates{rate: rate}
	return &Service{Prices: prices, Rates: rates, Redis: rdb}, prices, rates, mr
}

func TestQuote_CachesUntilTTL(t *testing.T) {
	svc, prices, _, mr := setupMarketData(t)
	ctx := context.Background()

	q, err := svc.Quote(ctx, "NASDAQ:AAPL")
	require.NoError(t, err)
	assert.True(t, q.Equal(domain.MustMoney("150", "USD")))
	assert.Equal(t, 1, prices.calls)

	// Second lookup is served from Redis.
	q, err = svc.Quote(ctx, "NASDAQ:AAPL")
	require.NoError(t, err)
	assert.True(t, q.Equal(domain.MustMoney("150", "USD")))
	assert.Equal(t, 1, prices.calls)

	// Expiry forces a fresh fetch.
	mr.FastForward(defaultQuoteTTL + time.Second)
	_, err = svc.Quote(ctx, "NASDAQ:AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, prices.calls)
}

func TestQuote_NilRedisGoesStraightToSource(t *testing.T) {
	prices := &stubPrices{quote: domain.MustMoney("150", "USD")}
	svc := &Service{Prices: prices}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Quote(ctx, "NASDAQ:AAPL")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, prices.calls)

	_, err := svc.Quote(ctx, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExchangeRateAndConvert(t *testing.T) {
	svc, _, rates, _ := setupMarketData(t)
	ctx := context.Background()

	converted, err := svc.Convert(ctx, domain.MustMoney("100", "USD"), "EUR")
	require.NoError(t, err)
	assert.True(t, converted.Equal(domain.MustMoney("90", "EUR")))
	assert.Equal(t, 1, rates.calls)

	// Cached on the second conversion.
	_, err = svc.Convert(ctx, domain.MustMoney("50", "USD"), "EUR")
	require.NoError(t, err)
	assert.Equal(t, 1, rates.calls)

	// Same-currency conversions never hit the source.
	same, err := svc.Convert(ctx, domain.MustMoney("100", "USD"), "USD")
	require.NoError(t, err)
	assert.True(t, same.Equal(domain.MustMoney("100", "USD")))
	assert.Equal(t, 1, rates.calls)
}

func TestValue_PricesHolding(t *testing.T) {
	svc, _, _, _ := setupMarketData(t)
	ctx := context.Background()
	now := time.Now().UTC()

	holding, _, err := domain.OpenPosition(uuid.New(), "NASDAQ:AAPL",
		domain.MustQuantity("10"), domain.MustMoney("100", "USD"), now)
	require.NoError(t, err)

	v, err := svc.Value(ctx, holding)
	require.NoError(t, err)
	assert.True(t, v.MarketValue.Equal(domain.MustMoney("1500", "USD")))
	assert.True(t, v.UnrealizedGainLoss.Equal(domain.MustMoney("500", "USD")))
	assert.Equal(t, "NASDAQ:AAPL", v.AssetIdentifier)
}
