package demo

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// TimestampLayout is the layout the shop logs transaction times in.
const TimestampLayout = "2006-01-02 15:04:05"

// GeneratorConfig controls synthetic transaction generation.
type GeneratorConfig struct {
	Location     *time.Location
	Span         time.Duration
	Count        int
	Seed         int64
	PlayerCount  int
	SellFraction float64
}

// DefaultGeneratorConfig returns a week of activity from a dozen players.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Count:        1500,
		Span:         7 * 24 * time.Hour,
		Seed:         7713,
		PlayerCount:  12,
		SellFraction: 0.45,
		Location:     time.Local,
	}
}

var playerNames = []string{
	"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi",
	"Ivan", "Judy", "Mallory", "Niaj", "Olivia", "Peggy", "Rupert", "Sybil",
	"Trent", "Victor", "Walter", "Xena",
}

// Generator produces realistic shop transactions.
type Generator struct {
	rng    *rand.Rand
	config GeneratorConfig
}

// NewGenerator creates a generator. The same seed always yields the same log.
func NewGenerator(config GeneratorConfig) *Generator {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.PlayerCount <= 0 || config.PlayerCount > len(playerNames) {
		config.PlayerCount = len(playerNames)
	}
	if config.Span <= 0 {
		config.Span = 24 * time.Hour
	}
	return &Generator{
		rng:    rand.New(rand.NewSource(config.Seed)), //nolint:gosec // demo data only
		config: config,
	}
}

// Generate creates config.Count transactions spread over the span ending at now,
// newest first. Recent hours are busier so the trend panels have something to show.
func (g *Generator) Generate(now time.Time) []model.Transaction {
	txs := make([]model.Transaction, 0, g.config.Count)
	for i := 0; i < g.config.Count; i++ {
		// Squaring skews offsets towards the present.
		r := g.rng.Float64()
		ago := time.Duration(r * r * float64(g.config.Span))
		txs = append(txs, g.Next(now.Add(-ago)))
	}

	sortNewestFirst(txs)
	return txs
}

// Next creates a single transaction at ts.
func (g *Generator) Next(ts time.Time) model.Transaction {
	entry := defaultCatalog[g.rng.Intn(len(defaultCatalog))]
	player := playerNames[g.rng.Intn(g.config.PlayerCount)]

	txType := model.TypeBuy
	if g.rng.Float64() < g.config.SellFraction {
		txType = model.TypeSell
	}

	amount := 1
	if entry.maxStack > 1 {
		amount = 1 + g.rng.Intn(entry.maxStack)
	}

	// Unit prices wander ±20% around base so the price history has shape.
	unit := entry.basePrice * (0.8 + 0.4*g.rng.Float64())
	if txType == model.TypeSell {
		unit *= 0.7
	}

	ts = ts.In(g.config.Location).Truncate(time.Second)
	return model.Transaction{
		Timestamp:    ts,
		RawTimestamp: ts.Format(TimestampLayout),
		PlayerName:   player,
		Type:         txType,
		Item:         entry.item,
		Category:     entry.category,
		Amount:       amount,
		Price:        round2(unit * float64(amount)),
	}
}

// String describes the generator settings.
func (g *Generator) String() string {
	return fmt.Sprintf("demo generator (seed=%d, count=%d, span=%s)", g.config.Seed, g.config.Count, g.config.Span)
}
