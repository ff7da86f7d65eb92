package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/openvasp/openvasp-host/aeswrapper"
	"github.com/openvasp/openvasp-host/configuration"
	"github.com/openvasp/openvasp-host/directory"
	"github.com/openvasp/openvasp-host/fileoperations"
	"github.com/openvasp/openvasp-host/localcache"
	"github.com/openvasp/openvasp-host/logging"
	"github.com/openvasp/openvasp-host/logo"
	"github.com/openvasp/openvasp-host/reactive"
	"github.com/openvasp/openvasp-host/registry"
	"github.com/openvasp/openvasp-host/relay"
	"github.com/openvasp/openvasp-host/stdoutwriter"
	"github.com/openvasp/openvasp-host/telemetry"
	"github.com/openvasp/openvasp-host/transfers"
	"github.com/openvasp/openvasp-host/wallet"
	"github.com/openvasp/openvasp-host/webhooks"
	"github.com/openvasp/openvasp-host/webserver"
	"github.com/openvasp/openvasp-host/zincadapter"
)

const usage = `runs the OpenVASP host that exchanges travel rule messages with counterparty VASPs`

const observableBufferSize = 100

const (
	gaugeLiveSessions       = "live_sessions"
	counterTransfersUpdated = "transfers_updated_total"
)

const sessionsGaugePeriod = time.Second * 5

func main() {
	logo.Display()

	var file string
	configurator := func() (configuration.Configuration, error) {
		if file == "" {
			return configuration.Configuration{}, errors.New("please specify configuration file path with -c <path to file>")
		}

		cfg, err := configuration.Read(file)
		if err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	app := &cli.App{
		Name:  "openvasp-host",
		Usage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Load configuration from `FILE`",
				Destination: &file,
			},
		},
		Action: func(_ *cli.Context) error {
			cfg, err := configurator()
			if err != nil {
				return err
			}
			run(cfg)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		pterm.Error.Println(err.Error())
	}
}

func run(cfg configuration.Configuration) {
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		<-c
		cancel()
	}()

	callbackOnErr := func(err error) {
		fmt.Println("Error with logger: ", err)
	}

	writers := []io.Writer{stdoutwriter.Logger{}}
	zinc, err := zincadapter.New(cfg.ZincLogger)
	switch err {
	case nil:
		writers = append(writers, &zinc)
	default:
		fmt.Printf("Logging to zincsearch is off due to %s.\n", err)
	}

	var store transfers.Store
	var aud registry.Auditor
	if cfg.Database.ConnStr != "" {
		db, err := cfg.Database.Connect(ctx)
		if err != nil {
			fmt.Println(err)
			c <- os.Interrupt
			return
		}
		defer db.Disconnect(ctx)
		store = db
		aud = db
		writers = append(writers, db)
	} else {
		store = localcache.NewTransactionCache(cfg.Cache)
	}

	log := logging.New(callbackOnErr, writers...)

	tele, err := telemetry.Run(ctx, cancel, cfg.TelemetryPort)
	if err != nil {
		log.Error(err.Error())
		time.Sleep(time.Second)
		c <- os.Interrupt
		return
	}
	tele.CreateUpdateObservableGauge(gaugeLiveSessions, "live protocol sessions of both roles")
	tele.CreateUpdateObservableCounter(counterTransfersUpdated, "transaction status changes")

	dir, err := directory.New(cfg.Directory)
	if err != nil {
		log.Error(err.Error())
		time.Sleep(time.Second)
		c <- os.Interrupt
		return
	}

	h := fileoperations.New(cfg.FileOperator, aeswrapper.New())
	wlt, err := h.ReadWallet()
	if err != nil {
		log.Error(err.Error())
		time.Sleep(time.Second)
		c <- os.Interrupt
		return
	}
	verifier := wallet.NewVerifier()

	local := cfg.Local.Information()
	rel, err := relay.Connect(cfg.Relay, local.VaspCode(), &wlt, verifier, log)
	if err != nil {
		log.Error(err.Error())
		time.Sleep(time.Second)
		c <- os.Interrupt
		return
	}
	defer func() {
		if err := rel.Disconnect(); err != nil {
			log.Error(err.Error())
		}
	}()

	obs := reactive.New[transfers.Transaction](observableBufferSize)
	proj := transfers.NewProjection(store, log, obs)

	reg, err := registry.New(cfg.Registry, local, dir, rel, proj, aud, log)
	if err != nil {
		log.Error(err.Error())
		time.Sleep(time.Second)
		c <- os.Interrupt
		return
	}

	if err := rel.Listen(ctx, reg); err != nil {
		log.Error(err.Error())
		time.Sleep(time.Second)
		c <- os.Interrupt
		return
	}
	go reg.Run(ctx)
	go watchSessions(ctx, reg, tele)

	wh := webhooks.New(log)
	go wh.Run(ctx, obs)
	go notifyDecisions(ctx, obs, wh, tele)

	err = webserver.Run(ctx, cfg.Server, reg, store, wh, log, obs.Subscribe())
	if err != nil {
		log.Error(err.Error())
		time.Sleep(time.Second)
	}
	time.Sleep(time.Second)
}

func watchSessions(ctx context.Context, reg *registry.Registry, tele *telemetry.Measurements) {
	tc := time.NewTicker(sessionsGaugePeriod)
	defer tc.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tc.C:
			tele.SetGauge(gaugeLiveSessions, float64(len(reg.Sessions())))
		}
	}
}

func notifyDecisions(
	ctx context.Context, obs *reactive.Observable[transfers.Transaction],
	wh *webhooks.Service, tele *telemetry.Measurements,
) {
	sub := obs.Subscribe()
	defer sub.Cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case trx := <-sub.Channel():
			tele.IncrementCounter(counterTransfersUpdated)
			if trx.Type != transfers.TypeIncoming {
				continue
			}
			switch trx.Status {
			case transfers.StatusSessionRequested, transfers.StatusTransferRequested, transfers.StatusTransferDispatched:
				wh.PostDecisionRequired(trx.SessionID, trx.Status.String())
			}
		}
	}
}
