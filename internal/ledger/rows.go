package ledger

import (
	"time"

	"main/internal/model"
	"main/internal/model/enum"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
)

// Row types mirror the ledger schema. Every amount column is numeric(24,14)
// with its currency code stored beside it, so replays reconstruct exact Money
// values.

type accountRow struct {
	Name             string          `gorm:"primaryKey;size:64"`
	PositionCache    decimal.Decimal `gorm:"type:numeric(24,14)"`
	PositionCurrency string          `gorm:"size:8"`
}

func (accountRow) TableName() string { return "accounts" }

type balanceRow struct {
	AccountName string          `gorm:"primaryKey;size:64"`
	Currency    string          `gorm:"primaryKey;size:8"`
	Amount      decimal.Decimal `gorm:"type:numeric(24,14)"`
}

func (balanceRow) TableName() string { return "account_balances" }

type orderRow struct {
	UniqueID                 string          `gorm:"primaryKey;size:64"`
	Actor                    string          `gorm:"index;size:64"`
	Venue                    string          `gorm:"index;size:64"`
	VenueOrderID             string          `gorm:"index;size:128"`
	Side                     string          `gorm:"size:8"`
	Status                   string          `gorm:"size:16"`
	Volume                   decimal.Decimal `gorm:"type:numeric(24,14)"`
	VolumeCurrency           string          `gorm:"size:8"`
	Price                    decimal.Decimal `gorm:"type:numeric(24,14)"`
	PriceCurrency            string          `gorm:"size:8"`
	FundamentalValue         decimal.Decimal `gorm:"type:numeric(24,14)"`
	FundamentalValueCurrency string          `gorm:"size:8"`
	TimeCreated              time.Time       `gorm:"index"`
}

func (orderRow) TableName() string { return "orders" }

type tradeRow struct {
	UniqueID                 string          `gorm:"primaryKey;size:64"`
	OrderUniqueID            string          `gorm:"index;size:64"`
	Actor                    string          `gorm:"index;size:64"`
	Venue                    string          `gorm:"index;size:64"`
	Side                     string          `gorm:"size:8"`
	Price                    decimal.Decimal `gorm:"type:numeric(24,14)"`
	PriceCurrency            string          `gorm:"size:8"`
	Fee                      decimal.Decimal `gorm:"type:numeric(24,14)"`
	FeeCurrency              string          `gorm:"size:8"`
	Volume                   decimal.Decimal `gorm:"type:numeric(24,14)"`
	VolumeCurrency           string          `gorm:"size:8"`
	ExchangeRate             decimal.Decimal `gorm:"type:numeric(24,14)"`
	FundamentalValue         decimal.Decimal `gorm:"type:numeric(24,14)"`
	FundamentalValueCurrency string          `gorm:"size:8"`
	VenueTradeID             string          `gorm:"index;size:128"`
	TimeCreated              time.Time       `gorm:"index"`
}

func (tradeRow) TableName() string { return "trades" }

type transactionRow struct {
	UniqueID       string          `gorm:"primaryKey;size:64"`
	AccountName    string          `gorm:"index;size:64"`
	Type           string          `gorm:"size:16"`
	Status         string          `gorm:"index;size:16"`
	Amount         decimal.Decimal `gorm:"type:numeric(24,14)"`
	AmountCurrency string          `gorm:"size:8"`
	Fee            decimal.Decimal `gorm:"type:numeric(24,14)"`
	FeeCurrency    string          `gorm:"size:8"`
	Details        string          `gorm:"type:text"`
	TimeCreated    time.Time       `gorm:"index"`
	TimeCompleted  *time.Time
}

func (transactionRow) TableName() string { return "transactions" }

func orderToRow(o *model.Order) orderRow {
	return orderRow{
		UniqueID:                 o.UniqueID,
		Actor:                    o.Actor,
		Venue:                    o.Venue,
		VenueOrderID:             o.VenueOrderID,
		Side:                     o.Side.String(),
		Status:                   o.Status.String(),
		Volume:                   o.Volume.Amount,
		VolumeCurrency:           o.Volume.Currency,
		Price:                    o.Price.Amount,
		PriceCurrency:            o.Price.Currency,
		FundamentalValue:         o.FundamentalValue.Amount,
		FundamentalValueCurrency: o.FundamentalValue.Currency,
		TimeCreated:              o.TimeCreated,
	}
}

func rowToOrder(r orderRow) *model.Order {
	o := &model.Order{
		UniqueID:     r.UniqueID,
		Actor:        r.Actor,
		Side:         enum.ParseSide(r.Side),
		Venue:        r.Venue,
		VenueOrderID: r.VenueOrderID,
		Volume:       model.MoneyFromDecimal(r.Volume, r.VolumeCurrency),
		Price:        model.MoneyFromDecimal(r.Price, r.PriceCurrency),
		Status:       enum.ParseOrderStatus(r.Status),
		TimeCreated:  r.TimeCreated,
	}

	if r.FundamentalValueCurrency != "" {
		o.FundamentalValue = model.MoneyFromDecimal(r.FundamentalValue, r.FundamentalValueCurrency)
	}

	return o
}

func tradeToRow(o *model.Order, t *model.Trade) tradeRow {
	return tradeRow{
		UniqueID:                 t.UniqueID,
		OrderUniqueID:            o.UniqueID,
		Actor:                    o.Actor,
		Venue:                    t.Venue,
		Side:                     t.Side.String(),
		Price:                    t.Price.Amount,
		PriceCurrency:            t.Price.Currency,
		Fee:                      t.Fee.Amount,
		FeeCurrency:              t.Fee.Currency,
		Volume:                   t.Volume.Amount,
		VolumeCurrency:           t.Volume.Currency,
		ExchangeRate:             t.ExchangeRate,
		FundamentalValue:         t.FundamentalValue.Amount,
		FundamentalValueCurrency: t.FundamentalValue.Currency,
		VenueTradeID:             t.VenueTradeID,
		TimeCreated:              t.TimeCreated,
	}
}

func rowToTrade(r tradeRow) *model.Trade {
	t := &model.Trade{
		UniqueID:     r.UniqueID,
		Side:         enum.ParseSide(r.Side),
		Price:        model.MoneyFromDecimal(r.Price, r.PriceCurrency),
		Fee:          model.MoneyFromDecimal(r.Fee, r.FeeCurrency),
		Volume:       model.MoneyFromDecimal(r.Volume, r.VolumeCurrency),
		Venue:        r.Venue,
		VenueTradeID: r.VenueTradeID,
		TimeCreated:  r.TimeCreated,
		ExchangeRate: r.ExchangeRate,
	}

	if r.FundamentalValueCurrency != "" {
		t.FundamentalValue = model.MoneyFromDecimal(r.FundamentalValue, r.FundamentalValueCurrency)
	}

	return t
}

func transactionToRow(t *model.Transaction) (transactionRow, error) {
	row := transactionRow{
		UniqueID:       t.UniqueID,
		Type:           t.Type.String(),
		Status:         t.Status.String(),
		Amount:         t.Amount.Amount,
		AmountCurrency: t.Amount.Currency,
		TimeCreated:    t.TimeCreated,
	}

	if t.Account != nil {
		row.AccountName = t.Account.Name
	}

	if t.Fee != nil {
		row.Fee = t.Fee.Amount
		row.FeeCurrency = t.Fee.Currency
	}

	if !t.TimeCompleted.IsZero() {
		completed := t.TimeCompleted
		row.TimeCompleted = &completed
	}

	if len(t.Details) > 0 {
		details, err := sonic.ConfigFastest.MarshalToString(t.Details)
		if err != nil {
			return transactionRow{}, err
		}
		row.Details = details
	}

	return row, nil
}

func rowToTransaction(r transactionRow, account *model.Account) (*model.Transaction, error) {
	t := &model.Transaction{
		UniqueID:    r.UniqueID,
		Type:        enum.ParseTransactionType(r.Type),
		Status:      enum.ParseTransactionStatus(r.Status),
		Amount:      model.MoneyFromDecimal(r.Amount, r.AmountCurrency),
		Account:     account,
		TimeCreated: r.TimeCreated,
	}

	if r.FeeCurrency != "" {
		fee := model.MoneyFromDecimal(r.Fee, r.FeeCurrency)
		t.Fee = &fee
	}

	if r.TimeCompleted != nil {
		t.TimeCompleted = *r.TimeCompleted
	}

	if r.Details != "" {
		if err := sonic.ConfigFastest.UnmarshalFromString(r.Details, &t.Details); err != nil {
			return nil, err
		}
	}

	return t, nil
}
