// Package pnl derives the profit/loss outcome of a closed trade.
package pnl

import (
	"errors"
	"math"

	"github.com/trade-journal/internal/models"
)

// ErrUnknownType is returned when the trade direction is not Buy or Sell.
// An undefined direction has no profit semantics, so this fails loudly
// instead of guessing.
var ErrUnknownType = errors.New("pnl: unknown trade type")

// Classify maps a trade direction and entry/exit price pair to an outcome.
// A missing or non-finite price yields the empty PnLStatus ("undetermined")
// with no error. Equal prices are Neutral regardless of direction.
func Classify(tradeType models.TradeType, entryPrice, exitPrice *float64) (models.PnLStatus, error) {
	if !tradeType.Valid() {
		return "", ErrUnknownType
	}
	if entryPrice == nil || exitPrice == nil {
		return "", nil
	}

	entry, exit := *entryPrice, *exitPrice
	if !isFinite(entry) || !isFinite(exit) {
		return "", nil
	}

	if entry == exit {
		return models.PnLNeutral, nil
	}

	if tradeType == models.TradeTypeBuy {
		if exit > entry {
			return models.PnLProfit, nil
		}
		return models.PnLLoss, nil
	}

	// Sell
	if exit < entry {
		return models.PnLProfit, nil
	}
	return models.PnLLoss, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
