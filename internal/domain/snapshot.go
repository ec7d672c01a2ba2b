package domain

import "time"

// FeatureSnapshot is the point-in-time feature set for one (symbol, pair,
// interval). Sections are nil when the upstream series had no data; numeric
// leaves are nil when the value could not be computed. Nil always means
// "unknown", never zero.
type FeatureSnapshot struct {
	Symbol      string    `json:"symbol"`
	Pair        string    `json:"pair"`
	Interval    string    `json:"interval"`
	GeneratedAt time.Time `json:"generated_at"`

	Funding        *FundingFeature        `json:"funding"`
	OpenInterest   *OpenInterestFeature   `json:"open_interest"`
	Whales         *WhalesFeature         `json:"whales"`
	ETF            *ETFFeature            `json:"etf"`
	Sentiment      *SentimentFeature      `json:"sentiment"`
	Microstructure *MicrostructureFeature `json:"microstructure"`
	Liquidations   *LiquidationsFeature   `json:"liquidations"`
}

// FundingFeature aggregates perp funding rates across exchanges.
type FundingFeature struct {
	Interval    string                      `json:"interval"`
	HeatScore   *float64                    `json:"heat_score"`
	Consensus   *float64                    `json:"consensus"`
	PerExchange map[string]*ExchangeFunding `json:"per_exchange"`
}

// ExchangeFunding holds per-exchange funding statistics over the rolling
// sample window.
type ExchangeFunding struct {
	Latest *float64 `json:"latest"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	ZScore *float64 `json:"z_score"`
}

// OpenInterestFeature tracks aggregate open interest momentum.
type OpenInterestFeature struct {
	Latest      *float64 `json:"latest"`
	PctChange6h *float64 `json:"pct_change_6h"`
	PctChange24 *float64 `json:"pct_change_24h"`
	EMA6        *float64 `json:"ema_6"`
}

// WhalesFeature summarizes large on-chain transfers to and from labeled
// exchange addresses.
type WhalesFeature struct {
	Window24h     WhaleWindow       `json:"window_24h"`
	Window7d      WhaleWindow       `json:"window_7d"`
	PressureScore *float64          `json:"pressure_score"`
	SampleSize    WhaleSampleSize   `json:"sample_size"`
	IsStale       bool              `json:"is_stale"`
}

// WhaleWindow aggregates transfer flow over a lookback window.
type WhaleWindow struct {
	InflowUSD    float64 `json:"inflow_usd"`
	OutflowUSD   float64 `json:"outflow_usd"`
	CountInflow  int     `json:"count_inflow"`
	CountOutflow int     `json:"count_outflow"`
	NetUSD       float64 `json:"net_usd"`
}

// WhaleSampleSize records how many transfers fell into each window.
type WhaleSampleSize struct {
	D24 int `json:"d24"`
	D7  int `json:"d7"`
}

// ETFFeature tracks spot ETF net flows.
type ETFFeature struct {
	LatestFlow *float64 `json:"latest_flow"`
	MA7        *float64 `json:"ma_7"`
	MA30       *float64 `json:"ma_30"`
}

// SentimentFeature carries the fear/greed index and its moving averages.
type SentimentFeature struct {
	Value          *int     `json:"value"`
	Classification string   `json:"classification"`
	MA7            *float64 `json:"ma_7"`
	MA30           *float64 `json:"ma_30"`
}

// MicrostructureFeature groups orderbook, taker flow, and price state. The
// section is always present; subsections are nil when their series is empty.
type MicrostructureFeature struct {
	Orderbook *OrderbookFeature `json:"orderbook"`
	TakerFlow *TakerFlowFeature `json:"taker_flow"`
	Price     *PriceFeature     `json:"price"`
}

// OrderbookFeature is the latest aggregated depth snapshot.
type OrderbookFeature struct {
	BidDepth  *float64 `json:"bid_depth"`
	AskDepth  *float64 `json:"ask_depth"`
	Imbalance *float64 `json:"imbalance"`
	BidQty    *float64 `json:"bid_qty"`
	AskQty    *float64 `json:"ask_qty"`
}

// TakerFlowFeature aggregates taker buy/sell volume over the recent window.
type TakerFlowFeature struct {
	BuyVolume  *float64 `json:"buy_volume"`
	SellVolume *float64 `json:"sell_volume"`
	BuyRatio   *float64 `json:"buy_ratio"`
}

// PriceFeature is the latest close and its 24-bar change.
type PriceFeature struct {
	LastClose   *float64 `json:"last_close"`
	PctChange24 *float64 `json:"pct_change_24h"`
}

// LiquidationsFeature tracks forced liquidation volume.
type LiquidationsFeature struct {
	Latest LiquidationSide `json:"latest"`
	Sum24h LiquidationSide `json:"sum_24h"`
}

// LiquidationSide splits liquidation USD volume by side.
type LiquidationSide struct {
	Longs  *float64 `json:"longs"`
	Shorts *float64 `json:"shorts"`
}
