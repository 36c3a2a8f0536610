package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"main/internal/audit"
	"main/internal/harness"
	"main/internal/ledger"
	"main/internal/model"
	"main/internal/ops"
	"main/internal/strategy"
	"main/internal/telemetry"
	"main/internal/venue"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("trader: %v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	memoryStore := flag.Bool("memory", false, "Use an in-memory ledger (paper trading)")
	profile := flag.String("profile", "", "Pyroscope server address (empty=disabled)")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		return err
	}

	if *profile != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trader",
			ServerAddress:   *profile,
			Tags: map[string]string{
				"strategy": "simple-maker",
				"account":  loaded.Account.Name,
			},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return err
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	store, closeStore, err := openStore(loaded, *memoryStore)
	if err != nil {
		return err
	}
	defer closeStore()

	account, err := loadAccount(store, loaded.Account)
	if err != nil {
		return err
	}

	sim := venue.NewSim(loaded.Venue.Name, loaded.Account.PriceCurrency,
		loaded.Account.VolumeCurrency, loaded.Venue.FeeRate, loaded.Venue.Balances)
	sim.SetMid(loaded.Venue.Mid)

	auditor := audit.New(store, sim, account, loaded.Audit)

	maker := strategy.NewSimpleMaker(sim, store, account, driftingMid(sim), loaded.Strategy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctl := harness.NewController()
	go func() {
		<-sys.Shutdown()
		ctl.RequestStop()
		cancel()
	}()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			ctl.RequestRestart()
		}
	}()

	restart, err := harness.New(maker, auditor, store, telemetry.Log{}, ctl, loaded.Harness).Run(ctx)
	if err != nil {
		return err
	}

	if restart {
		return relaunch()
	}

	return nil
}

func openStore(loaded ops.Loaded, memory bool) (ledger.Store, func(), error) {
	if memory || loaded.Database.Host == "" {
		logs.Info("using in-memory ledger")
		return ledger.NewMemory(), func() {}, nil
	}

	db, err := ledger.OpenPG(loaded.Database)
	if err != nil {
		return nil, nil, err
	}

	return db, func() { _ = db.Close() }, nil
}

func loadAccount(store ledger.Store, spec ops.AccountSpec) (*model.Account, error) {
	account, err := store.Account(spec.Name)
	if err == nil {
		return account, nil
	}

	logs.Infof("creating account %s", spec.Name)
	account = model.NewAccount(spec.Name, spec.VolumeCurrency)

	if err := store.SaveAccount(account); err != nil {
		return nil, err
	}

	return account, nil
}

// driftingMid random-walks the simulated mid each tick and reports it as the
// fundamental value. Keeps paper trading alive without a market data feed.
func driftingMid(sim *venue.Sim) func(context.Context) (model.Money, error) {
	step := decimal.New(1, -3) // 0.1% per tick

	return func(context.Context) (model.Money, error) {
		mid := sim.Mid()
		if mid.IsZero() {
			return mid, fmt.Errorf("venue mid is unset")
		}

		move := decimal.NewFromFloat(rand.Float64()*2 - 1).Mul(step)
		next := mid.Add(mid.MulDec(move))
		sim.SetMid(next)

		return next, nil
	}
}

func relaunch() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	logs.Infof("relaunching %s", exe)

	return syscall.Exec(exe, os.Args, os.Environ())
}
