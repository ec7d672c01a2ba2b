// Package features turns raw market/on-chain series into a normalized
// FeatureSnapshot. Each sub-builder fails soft: an empty upstream series
// degrades its section to nil, it never aborts the rest of the snapshot.
// Repository failures are real errors and propagate.
package features

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/persistence"
)

// DefaultExchangeKeywords is the fallback keyword list used to classify a
// whale transfer endpoint as a centralized exchange. Matching is
// case-insensitive substring.
var DefaultExchangeKeywords = []string{
	"binance", "coinbase", "kraken", "bitfinex", "bitstamp", "bybit",
	"okx", "okex", "deribit", "kucoin", "mexc", "huobi", "gate", "gemini",
}

// Builder assembles FeatureSnapshots from a MarketReader. It is stateless
// beyond its injected collaborators and safe for concurrent use.
type Builder struct {
	market           persistence.MarketReader
	exchangeKeywords []string
}

// NewBuilder creates a feature builder. An empty keyword list falls back to
// DefaultExchangeKeywords.
func NewBuilder(market persistence.MarketReader, exchangeKeywords []string) *Builder {
	if len(exchangeKeywords) == 0 {
		exchangeKeywords = DefaultExchangeKeywords
	}
	lowered := make([]string, 0, len(exchangeKeywords))
	for _, kw := range exchangeKeywords {
		lowered = append(lowered, strings.ToLower(kw))
	}
	return &Builder{market: market, exchangeKeywords: lowered}
}

// Build produces one FeatureSnapshot for (symbol, pair, interval) as of
// asOfMs (UTC milliseconds). A zero asOfMs means "now"; every sub-builder is
// pinned to the same instant so a pinned build is fully reproducible. The
// seven sub-builders run concurrently and are joined before assembly.
func (b *Builder) Build(ctx context.Context, symbol, pair, interval string, asOfMs int64) (*domain.FeatureSnapshot, error) {
	if asOfMs <= 0 {
		asOfMs = time.Now().UnixMilli()
	}

	snap := &domain.FeatureSnapshot{
		Symbol:      strings.ToUpper(symbol),
		Pair:        strings.ToUpper(pair),
		Interval:    interval,
		GeneratedAt: time.UnixMilli(asOfMs).UTC(),
	}

	var (
		wg   sync.WaitGroup
		errs = make([]error, 7)
	)
	run := func(i int, name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				errs[i] = fmt.Errorf("%s features: %w", name, err)
			}
		}()
	}

	run(0, "funding", func() (err error) {
		snap.Funding, err = b.buildFunding(ctx, snap.Pair)
		return err
	})
	run(1, "open interest", func() (err error) {
		snap.OpenInterest, err = b.buildOpenInterest(ctx, snap.Symbol, interval, asOfMs)
		return err
	})
	run(2, "whale", func() (err error) {
		snap.Whales, err = b.buildWhales(ctx, snap.Symbol, asOfMs)
		return err
	})
	run(3, "etf", func() (err error) {
		snap.ETF, err = b.buildETF(ctx, asOfMs)
		return err
	})
	run(4, "sentiment", func() (err error) {
		snap.Sentiment, err = b.buildSentiment(ctx, asOfMs)
		return err
	})
	run(5, "microstructure", func() (err error) {
		snap.Microstructure, err = b.buildMicrostructure(ctx, snap.Symbol, snap.Pair, interval, asOfMs)
		return err
	})
	run(6, "liquidation", func() (err error) {
		snap.Liquidations, err = b.buildLiquidations(ctx, snap.Symbol, interval, asOfMs)
		return err
	})
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return snap, nil
}
