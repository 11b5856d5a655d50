package model

// Quote is a single instrument quote from the market data provider.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"changesPercentage"`
	Volume    int64   `json:"volume"`
}

// Yield is a named treasury yield, e.g. "US 10Y".
type Yield struct {
	Name  string
	Price float64
}

// MoverKind labels a mover as a gainer or a loser.
type MoverKind string

const (
	MoverGainer MoverKind = "gainers"
	MoverLoser  MoverKind = "losers"
)

// Mover is a stock with one of the largest intraday moves.
type Mover struct {
	Symbol    string
	Name      string
	Price     float64
	ChangePct float64
	Volume    int64
	Kind      MoverKind
}

// Snapshot holds everything collected for one briefing. Sections that could
// not be fetched are left empty; the analyst renders them as unavailable.
type Snapshot struct {
	Headlines  []string
	Yields     []Yield
	Benchmarks []Quote
	Movers     []Mover
}

// Empty reports whether no section contains any data at all.
func (s *Snapshot) Empty() bool {
	return len(s.Headlines) == 0 && len(s.Yields) == 0 &&
		len(s.Benchmarks) == 0 && len(s.Movers) == 0
}
