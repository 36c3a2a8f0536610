package ledger

import (
	"fmt"
	"net/url"
	"time"

	"main/internal/errors"
	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// PGOption defines the ledger database connection.
type PGOption struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode"`
}

func (opt PGOption) dsn() string {
	host := opt.Host
	if host == "" {
		host = "localhost"
	}

	port := opt.Port
	if port == 0 {
		port = 5432
	}

	sslMode := opt.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := &url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", host, port),
		RawQuery: "sslmode=" + sslMode,
	}

	if opt.User != "" {
		if opt.Password != "" {
			u.User = url.UserPassword(opt.User, opt.Password)
		} else {
			u.User = url.User(opt.User)
		}
	}

	if opt.Database != "" {
		u.Path = "/" + opt.Database
	}

	return u.String()
}

// PG is the Postgres-backed Store. All reads and writes run inside one open
// database transaction; Flush commits it and opens the next one, which is
// what lets other processes' writes (manual balance fixes, other bots)
// become visible between harness iterations.
type PG struct {
	db *gorm.DB
	tx *gorm.DB
}

var _ Store = (*PG)(nil)

// OpenPG connects to the ledger database and migrates the schema.
func OpenPG(opt PGOption) (*PG, error) {
	db, err := gorm.Open(postgres.Open(opt.dsn()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open ledger database")
	}

	return NewPG(db)
}

// NewPG wraps an existing gorm connection.
func NewPG(db *gorm.DB) (*PG, error) {
	if err := db.AutoMigrate(
		&accountRow{}, &balanceRow{}, &orderRow{}, &tradeRow{}, &transactionRow{},
	); err != nil {
		return nil, errors.Wrap(err, "migrate ledger schema")
	}

	return &PG{db: db, tx: db.Begin()}, nil
}

func (s *PG) Account(name string) (*model.Account, error) {
	var row accountRow
	if err := s.tx.Where("name = ?", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, exception.ErrAccountNotFound
		}

		return nil, err
	}

	var balances []balanceRow
	if err := s.tx.Where("account_name = ?", name).Find(&balances).Error; err != nil {
		return nil, err
	}

	account := &model.Account{
		Name:          row.Name,
		Balance:       model.NewBalance(),
		PositionCache: model.MoneyFromDecimal(row.PositionCache, row.PositionCurrency),
	}

	for _, b := range balances {
		account.Balance.Set(model.MoneyFromDecimal(b.Amount, b.Currency))
	}

	return account, nil
}

func (s *PG) SaveAccount(a *model.Account) error {
	row := accountRow{
		Name:             a.Name,
		PositionCache:    a.PositionCache.Amount,
		PositionCurrency: a.PositionCache.Currency,
	}

	if err := s.tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return err
	}

	for _, currency := range a.Balance.Currencies() {
		b := balanceRow{
			AccountName: a.Name,
			Currency:    currency,
			Amount:      a.Balance.Get(currency).Amount,
		}
		if err := s.tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&b).Error; err != nil {
			return err
		}
	}

	return nil
}

func (s *PG) SaveOrder(o *model.Order) error {
	row := orderToRow(o)
	if err := s.tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return err
	}

	for _, t := range o.Trades {
		tr := tradeToRow(o, t)
		if err := s.tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&tr).Error; err != nil {
			return err
		}
	}

	return nil
}

func (s *PG) OrdersByVenueOrderID(venue string, venueOrderIDs []string) ([]*model.Order, error) {
	if len(venueOrderIDs) == 0 {
		return nil, nil
	}

	var rows []orderRow
	err := s.tx.
		Where("venue = ?", venue).
		Where("venue_order_id IN ?", venueOrderIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.Order, 0, len(rows))
	for _, row := range rows {
		o := rowToOrder(row)

		var trades []tradeRow
		err := s.tx.
			Where("order_unique_id = ?", row.UniqueID).
			Order("time_created ASC").
			Find(&trades).Error
		if err != nil {
			return nil, err
		}

		for _, tr := range trades {
			o.Trades = append(o.Trades, rowToTrade(tr))
		}

		out = append(out, o)
	}

	return out, nil
}

func (s *PG) TradesBefore(actor string, side enum.Side, cutoff time.Time, exclude []string, limit int) ([]*model.Trade, error) {
	query := s.tx.
		Where("actor = ?", actor).
		Where("side = ?", side.String()).
		Where("time_created < ?", cutoff)

	if len(exclude) > 0 {
		query = query.Where("unique_id NOT IN ?", exclude)
	}

	var rows []tradeRow
	if err := query.Order("time_created DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*model.Trade, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToTrade(row))
	}

	return out, nil
}

func (s *PG) TradesInPeriod(f TradeFilter) ([]*model.Trade, error) {
	var rows []tradeRow
	if err := s.tradeQuery(f).Order("time_created ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*model.Trade, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToTrade(row))
	}

	return out, nil
}

type sideSum struct {
	Side  string
	Total decimal.Decimal
}

func (s *PG) VolumeBySide(f TradeFilter) (decimal.Decimal, decimal.Decimal, error) {
	var sums []sideSum
	err := s.tradeQuery(f).
		Model(&tradeRow{}).
		Select("side, COALESCE(SUM(volume), 0) AS total").
		Group("side").
		Scan(&sums).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	bid, ask := decimal.Zero, decimal.Zero
	for _, sum := range sums {
		switch enum.ParseSide(sum.Side) {
		case enum.SideBid:
			bid = sum.Total
		case enum.SideAsk:
			ask = sum.Total
		}
	}

	return bid, ask, nil
}

func (s *PG) NotionalBySide(f TradeFilter, currency string) (model.Money, model.Money, error) {
	var sums []sideSum
	err := s.tradeQuery(f).
		Model(&tradeRow{}).
		Select(
			"side, COALESCE(SUM(CASE WHEN price_currency = ? THEN price ELSE price * exchange_rate END), 0) AS total",
			currency,
		).
		Group("side").
		Scan(&sums).Error
	if err != nil {
		return model.Money{}, model.Money{}, err
	}

	bids, asks := model.ZeroMoney(currency), model.ZeroMoney(currency)
	for _, sum := range sums {
		switch enum.ParseSide(sum.Side) {
		case enum.SideBid:
			bids = model.MoneyFromDecimal(sum.Total, currency)
		case enum.SideAsk:
			asks = model.MoneyFromDecimal(sum.Total, currency)
		}
	}

	return bids, asks, nil
}

func (s *PG) FeesInPeriod(f TradeFilter, currency string) (model.Money, error) {
	// Mirrors Trade.FeeInCurrency: volume-currency fees are valued at the
	// trade's fundamental-value snapshot before the rate conversion.
	var total decimal.Decimal
	err := s.tradeQuery(f).
		Model(&tradeRow{}).
		Select(`COALESCE(SUM(CASE
			WHEN fee_currency = @c THEN fee
			WHEN fee_currency = volume_currency AND fundamental_value_currency = @c THEN fee * fundamental_value
			WHEN fee_currency = volume_currency THEN fee * fundamental_value * exchange_rate
			ELSE fee * exchange_rate
		END), 0)`, map[string]any{"c": currency}).
		Scan(&total).Error
	if err != nil {
		return model.Money{}, err
	}

	return model.MoneyFromDecimal(total, currency), nil
}

func (s *PG) SaveTransaction(t *model.Transaction) error {
	row, err := transactionToRow(t)
	if err != nil {
		return err
	}

	return s.tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *PG) PendingDeposits(account *model.Account, currency string) ([]*model.Transaction, error) {
	var rows []transactionRow
	err := s.tx.
		Where("account_name = ?", account.Name).
		Where("type = ?", enum.TransactionTypeDeposit.String()).
		Where("status = ?", enum.TransactionStatusInTransit.String()).
		Where("amount_currency = ?", currency).
		Order("time_created ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTransaction(row, account)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, nil
}

func (s *PG) LedgerBalance(account string) (model.Balance, error) {
	balance := model.NewBalance()

	var trades []tradeRow
	if err := s.tx.Where("actor = ?", account).Find(&trades).Error; err != nil {
		return nil, err
	}

	for _, row := range trades {
		effect := rowToTrade(row).PositionEffect()
		for _, currency := range effect.Currencies() {
			balance.Add(effect.Get(currency))
		}
	}

	var transactions []transactionRow
	err := s.tx.
		Where("account_name = ?", account).
		Where("status = ?", enum.TransactionStatusCompleted.String()).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	for _, row := range transactions {
		t, err := rowToTransaction(row, nil)
		if err != nil {
			return nil, err
		}

		effect := t.PositionEffect()
		for _, currency := range effect.Currencies() {
			balance.Add(effect.Get(currency))
		}
	}

	return balance, nil
}

// Flush commits the running transaction and opens a fresh one.
func (s *PG) Flush() error {
	if err := s.tx.Commit().Error; err != nil {
		return errors.Wrap(err, "commit ledger transaction")
	}

	s.tx = s.db.Begin()

	return nil
}

// Close commits outstanding writes and releases the connection pool.
func (s *PG) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (s *PG) tradeQuery(f TradeFilter) *gorm.DB {
	query := s.tx.Model(&tradeRow{})

	if f.Actor != "" {
		query = query.Where("actor = ?", f.Actor)
	}
	if f.Venue != "" {
		query = query.Where("venue = ?", f.Venue)
	}
	if !f.Start.IsZero() {
		query = query.Where("time_created >= ?", f.Start)
	}
	if !f.End.IsZero() {
		query = query.Where("time_created < ?", f.End)
	}

	return query
}
