// Command audit runs one full reconciliation pass and exits. Operators use
// it to check the books without starting the trading loop, typically after a
// manual fix.
package main

import (
	"context"
	"flag"
	"os"

	"main/internal/audit"
	"main/internal/ledger"
	"main/internal/ops"
	"main/internal/venue"

	"github.com/yanun0323/logs"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("audit: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	recordDrift := flag.Bool("record-drift", false, "Write sub-tolerance drift back into the ledger")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		return err
	}

	db, err := ledger.OpenPG(loaded.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	account, err := db.Account(loaded.Account.Name)
	if err != nil {
		return err
	}

	sim := venue.NewSim(loaded.Venue.Name, loaded.Account.PriceCurrency,
		loaded.Account.VolumeCurrency, loaded.Venue.FeeRate, loaded.Venue.Balances)
	sim.SetMid(loaded.Venue.Mid)

	cfg := loaded.Audit
	cfg.RecordDrift = *recordDrift

	if err := audit.New(db, sim, account, cfg).Full(context.Background()); err != nil {
		return err
	}

	if err := db.Flush(); err != nil {
		return err
	}

	logs.Infof("audit clean for %s", account.Name)

	return nil
}
