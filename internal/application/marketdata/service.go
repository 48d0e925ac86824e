package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"folio-backend/internal/domain"
)

const defaultQuoteTTL = 5 * time.Minute

// PriceSource supplies per-unit market quotes for an asset.
type PriceSource interface {
	Quote(ctx context.Context, assetIdentifier string) (domain.Money, error)
}

// RateSource supplies exchange rates between currencies.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (domain.ExchangeRate, error)
}

// Service fronts the price and rate sources with a Redis cache. A nil Redis
// client disables caching; every lookup goes straight to the source.
type Service struct {
	Prices PriceSource
	Rates  RateSource
	Redis  *redis.Client
	TTL    time.Duration
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultQuoteTTL
}

func quoteKey(assetIdentifier string) string {
	return "marketdata:quote:" + assetIdentifier
}

func rateKey(from, to string) string {
	return "marketdata:rate:" + from + ":" + to
}

// Quote returns the current per-unit price, served from cache when fresh.
func (s *Service) Quote(ctx context.Context, assetIdentifier string) (domain.Money, error) {
	if assetIdentifier == "" {
		return domain.Money{}, fmt.Errorf("%w: asset identifier is required", domain.ErrValidation)
	}

	if s.Redis != nil {
		raw, err := s.Redis.Get(ctx, quoteKey(assetIdentifier)).Result()
		if err == nil {
			var m domain.Money
			if err := json.Unmarshal([]byte(raw), &m); err == nil {
				return m, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			return domain.Money{}, err
		}
	}

	quote, err := s.Prices.Quote(ctx, assetIdentifier)
	if err != nil {
		return domain.Money{}, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(quote); err == nil {
			s.Redis.Set(ctx, quoteKey(assetIdentifier), raw, s.ttl())
		}
	}
	return quote, nil
}

type cachedRate struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	Rate string    `json:"rate"`
	AsOf time.Time `json:"as_of"`
}

// ExchangeRate returns the from -> to rate, served from cache when fresh.
func (s *Service) ExchangeRate(ctx context.Context, from, to string) (domain.ExchangeRate, error) {
	if s.Redis != nil {
		raw, err := s.Redis.Get(ctx, rateKey(from, to)).Result()
		if err == nil {
			var c cachedRate
			if err := json.Unmarshal([]byte(raw), &c); err == nil {
				if r, err := rateFromCache(c); err == nil {
					return r, nil
				}
			}
		} else if !errors.Is(err, redis.Nil) {
			return domain.ExchangeRate{}, err
		}
	}

	rate, err := s.Rates.Rate(ctx, from, to)
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	if s.Redis != nil {
		raw, err := json.Marshal(cachedRate{
			From: rate.From,
			To:   rate.To,
			Rate: rate.Rate.String(),
			AsOf: rate.AsOf,
		})
		if err == nil {
			s.Redis.Set(ctx, rateKey(from, to), raw, s.ttl())
		}
	}
	return rate, nil
}

func rateFromCache(c cachedRate) (domain.ExchangeRate, error) {
	rate, err := decimal.NewFromString(c.Rate)
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	return domain.NewExchangeRate(c.From, c.To, rate, c.AsOf)
}

// Valuation prices a holding at the current quote: market value and the
// unrealized gain against remaining cost basis.
type Valuation struct {
	AssetIdentifier    string       `json:"asset_identifier"`
	QuotedPrice        domain.Money `json:"quoted_price"`
	MarketValue        domain.Money `json:"market_value"`
	UnrealizedGainLoss domain.Money `json:"unrealized_gain_loss"`
}

// Value computes the holding's market valuation at the cached quote.
func (s *Service) Value(ctx context.Context, holding *domain.PositionHolding) (Valuation, error) {
	quote, err := s.Quote(ctx, holding.AssetIdentifier)
	if err != nil {
		return Valuation{}, err
	}
	value, err := holding.MarketValue(quote)
	if err != nil {
		return Valuation{}, err
	}
	unrealized, err := holding.UnrealizedGainLoss(quote)
	if err != nil {
		return Valuation{}, err
	}
	return Valuation{
		AssetIdentifier:    holding.AssetIdentifier,
		QuotedPrice:        quote,
		MarketValue:        value,
		UnrealizedGainLoss: unrealized,
	}, nil
}

// Convert restates an amount in another currency at the cached rate. Amounts
// already in the target currency pass through unchanged.
func (s *Service) Convert(ctx context.Context, amount domain.Money, toCurrency string) (domain.Money, error) {
	if amount.Currency() == toCurrency {
		return amount, nil
	}
	rate, err := s.ExchangeRate(ctx, amount.Currency(), toCurrency)
	if err != nil {
		return domain.Money{}, err
	}
	return rate.Convert(amount)
}
