package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/model"
)

// AccountCard is the presentation view of one account.
type AccountCard struct {
	ID      model.ID
	Name    string
	Type    string
	Balance decimal.Decimal
	Active  bool
}

// Cards lists accounts in stored order.
func Cards(snap model.Snapshot) []AccountCard {
	cards := make([]AccountCard, 0, len(snap.Accounts))
	for _, acc := range snap.Accounts {
		cards = append(cards, AccountCard{
			ID:      acc.ID,
			Name:    acc.Name,
			Type:    acc.Type,
			Balance: acc.Balance,
			Active:  acc.Active,
		})
	}
	return cards
}

// Dashboard bundles every derived view for a single render pass.
type Dashboard struct {
	ActiveID   model.ID
	Budget     BudgetUsage
	Recent     []model.Transaction
	Categories CategoryBreakdown
	Segments   []Segment
	Accounts   []AccountCard
}

// HasActive reports whether an account is selected.
func (d Dashboard) HasActive() bool {
	return d.ActiveID != ""
}

// Build derives the dashboard for the snapshot's active account.
func Build(snap model.Snapshot, recentLimit int) Dashboard {
	var activeID model.ID
	if acc, ok := snap.ActiveAccount(); ok {
		activeID = acc.ID
	}

	categories := Categories(snap, activeID)
	return Dashboard{
		ActiveID:   activeID,
		Budget:     Budget(snap, activeID),
		Recent:     Recent(snap, activeID, recentLimit),
		Categories: categories,
		Segments:   Segments(categories),
		Accounts:   Cards(snap),
	}
}
