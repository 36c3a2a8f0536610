package revenue

import (
	"time"

	"main/internal/ledger"
	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"main/internal/errors"
)

const openPositionBatchSize = 10

// OpenPositionTrades reconstructs, from history before the cutoff, the most
// recent same-side fills whose volumes sum to the position offset. The oldest
// included fill is trimmed (volume exactly, price and fee proportionally) so
// the reconstructed sequence sums to exactly offset. Returned oldest first.
//
// This is how a period P&L calculation carries in the fills that created the
// position open at the period start, without replaying all history.
func OpenPositionTrades(store ledger.Store, actor string, offset model.Money, cutoff time.Time) ([]*model.Trade, error) {
	if offset.IsZero() {
		return nil, nil
	}

	side := enum.SideAsk
	if offset.IsPositive() {
		side = enum.SideBid
	}

	target := offset.Abs()
	collected := make([]*model.Trade, 0, openPositionBatchSize)
	total := model.ZeroMoney(offset.Currency)

	for total.LessThan(target) {
		exclude := make([]string, 0, len(collected))
		for _, t := range collected {
			exclude = append(exclude, t.UniqueID)
		}

		batch, err := store.TradesBefore(actor, side, cutoff, exclude, openPositionBatchSize)
		if err != nil {
			return nil, err
		}

		if len(batch) == 0 {
			return nil, errors.Wrapf(exception.ErrInsufficientHistory,
				"have %s of %s before %s", total, target, cutoff.Format(time.RFC3339))
		}

		for _, t := range batch {
			if total.LessThan(target) {
				collected = append(collected, t)
				total = total.Add(t.Volume)
			}
		}
	}

	// Trim the oldest included fill so the total hits the offset exactly.
	// Volume is assigned outright; price and fee scale by the kept ratio.
	last := collected[len(collected)-1].Copy()
	volumeToTrim := total.Sub(target)
	volumeToKeep := last.Volume.Sub(volumeToTrim)

	ratio := volumeToKeep.Amount.Div(last.Volume.Amount)
	last.Price = last.Price.MulDec(ratio)
	last.Fee = last.Fee.MulDec(ratio)
	last.Volume = volumeToKeep

	collected[len(collected)-1] = last

	// Oldest first, like every other trade list around here.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}

	return collected, nil
}
