package position

import (
	"testing"
	"time"

	"main/internal/model"
	"main/internal/model/enum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tradeAt(side enum.Side, price, volume string, at time.Time) *model.Trade {
	t := model.NewTrade(side, model.MustMoney(price, "USD"), model.MustMoney("0", "USD"),
		model.MustMoney(volume, "BTC"), "simex", "")
	t.TimeCreated = at

	return t
}

func TestSplitTrivial(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	matched, open := Split([]*model.Trade{
		tradeAt(enum.SideBid, "100", "1", base),
		tradeAt(enum.SideAsk, "110", "1", base.Add(time.Minute)),
	})

	require.Len(t, matched, 2)
	require.Empty(t, open)

	delta := DeltaOf(matched, "USD", "BTC")
	assert.True(t, delta.Volume.IsZero())
	assert.Equal(t, "10", delta.Fiat.Amount.String())
}

func TestSplitPartial(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// A 2.0 buy met by a 0.25 sell: the buy splits 0.25 matched / 1.75 open.
	buy := tradeAt(enum.SideBid, "200", "2", base)
	sell := tradeAt(enum.SideAsk, "30", "0.25", base.Add(time.Minute))

	matched, open := Split([]*model.Trade{buy, sell})

	require.Len(t, matched, 2)
	require.Len(t, open, 1)

	var matchedBuy *model.Trade
	for _, m := range matched {
		if m.Side == enum.SideBid {
			matchedBuy = m
		}
	}
	require.NotNil(t, matchedBuy)

	// Price and fee scale with the 0.125 consumed fraction.
	assert.Equal(t, "0.25", matchedBuy.Volume.Amount.String())
	assert.Equal(t, "25", matchedBuy.Price.Amount.String())

	assert.Equal(t, "1.75", open[0].Volume.Amount.String())
	assert.Equal(t, "175", open[0].Price.Amount.String())

	// The input is untouched.
	assert.Equal(t, "2", buy.Volume.Amount.String())
	assert.Equal(t, "200", buy.Price.Amount.String())
}

func TestSplitConservation(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	trades := []*model.Trade{
		tradeAt(enum.SideBid, "100", "1", base),
		tradeAt(enum.SideAsk, "55", "0.5", base.Add(1*time.Minute)),
		tradeAt(enum.SideBid, "303", "3", base.Add(2*time.Minute)),
		tradeAt(enum.SideAsk, "120", "1.2", base.Add(3*time.Minute)),
		tradeAt(enum.SideBid, "77", "0.7", base.Add(4*time.Minute)),
		tradeAt(enum.SideAsk, "260", "2.6", base.Add(5*time.Minute)),
	}

	matched, open := Split(trades)

	totalVolume := model.ZeroMoney("BTC")
	totalNotional := model.ZeroMoney("USD")
	for _, tr := range append(append([]*model.Trade{}, matched...), open...) {
		totalVolume = totalVolume.Add(tr.Volume)
		totalNotional = totalNotional.Add(tr.Price)
	}

	assert.Equal(t, "9", totalVolume.Amount.String())
	assert.Equal(t, "915", totalNotional.Amount.String())

	// Residual sits on the bid side: 4.7 bought, 4.3 sold.
	require.NotEmpty(t, open)
	for _, tr := range open {
		assert.Equal(t, enum.SideBid, tr.Side)
	}

	delta := DeltaOf(matched, "USD", "BTC")
	assert.True(t, delta.Volume.IsZero())
}

func TestSplitMatchedComesInPairs(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	matched, _ := Split([]*model.Trade{
		tradeAt(enum.SideBid, "100", "1", base),
		tradeAt(enum.SideAsk, "40", "0.4", base.Add(1*time.Minute)),
		tradeAt(enum.SideAsk, "90", "0.9", base.Add(2*time.Minute)),
	})

	require.Equal(t, 0, len(matched)%2)
	for i := 0; i+1 < len(matched); i += 2 {
		assert.True(t, matched[i].Volume.Equal(matched[i+1].Volume))
		assert.NotEqual(t, matched[i].Side, matched[i+1].Side)
	}
}

func TestSplitEmptyAndOneSided(t *testing.T) {
	matched, open := Split(nil)
	assert.Empty(t, matched)
	assert.Empty(t, open)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	matched, open = Split([]*model.Trade{tradeAt(enum.SideBid, "100", "1", base)})
	assert.Empty(t, matched)
	require.Len(t, open, 1)
	assert.Equal(t, "1", open[0].Volume.Amount.String())
}
