package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	exitoutadapter "invsync/internal/modules/exit/adapter/out"
	exitin "invsync/internal/modules/exit/port/in"
	exitservice "invsync/internal/modules/exit/service"
	exitusecase "invsync/internal/modules/exit/usecase"
	inventoryinadapter "invsync/internal/modules/inventory/adapter/in"
	inventoryoutadapter "invsync/internal/modules/inventory/adapter/out"
	inventoryout "invsync/internal/modules/inventory/port/out"
	inventoryservice "invsync/internal/modules/inventory/service"
	inventoryusecase "invsync/internal/modules/inventory/usecase"
	pushinadapter "invsync/internal/modules/push/adapter/in"
	pushoutadapter "invsync/internal/modules/push/adapter/out"
	pushdomain "invsync/internal/modules/push/domain"
	pushdto "invsync/internal/modules/push/dto"
	pushin "invsync/internal/modules/push/port/in"
	pushout "invsync/internal/modules/push/port/out"
	pushservice "invsync/internal/modules/push/service"
	pushusecase "invsync/internal/modules/push/usecase"
	sessioninadapter "invsync/internal/modules/session/adapter/in"
	sessionoutadapter "invsync/internal/modules/session/adapter/out"
	sessionservice "invsync/internal/modules/session/service"
	sessionusecase "invsync/internal/modules/session/usecase"
	verificationinadapter "invsync/internal/modules/verification/adapter/in"
	verificationoutadapter "invsync/internal/modules/verification/adapter/out"
	verificationdto "invsync/internal/modules/verification/dto"
	verificationin "invsync/internal/modules/verification/port/in"
	verificationservice "invsync/internal/modules/verification/service"
	verificationusecase "invsync/internal/modules/verification/usecase"
	zoneinadapter "invsync/internal/modules/zone/adapter/in"
	zoneoutadapter "invsync/internal/modules/zone/adapter/out"
	zonedto "invsync/internal/modules/zone/dto"
	zonein "invsync/internal/modules/zone/port/in"
	zoneservice "invsync/internal/modules/zone/service"
	zoneusecase "invsync/internal/modules/zone/usecase"
	"invsync/internal/platform/clock"
	"invsync/internal/platform/config"
	"invsync/internal/platform/console"
	"invsync/internal/platform/httpapi"
	"invsync/internal/platform/httpserver"
	"invsync/internal/platform/id"
	"invsync/internal/platform/logging"
)

// Options carries the terminal the prompts talk to. A non-empty
// DispositionsFile answers the missing-items prompt from YAML instead.
type Options struct {
	In               io.Reader
	Out              io.Writer
	LogOut           io.Writer
	DispositionsFile string
}

type App struct {
	Config config.Config
	Logger zerolog.Logger

	ZoneCLI         zoneinadapter.CLIHandler
	VerificationCLI verificationinadapter.CLIHandler
	SessionCLI      sessioninadapter.CLIHandler
	InventoryCLI    inventoryinadapter.CLIHandler
	Exit            exitin.Usecase
	Prompter        *console.Prompter

	push          pushin.Usecase
	zones         zonein.Usecase
	verifications verificationin.Usecase
	scans         *sessioninadapter.PushListener
	status        http.Handler
	store         *sessionoutadapter.SQLiteStore
}

func New(cfg config.Config, opts Options) (*App, error) {
	if opts.LogOut == nil {
		opts.LogOut = os.Stderr
	}
	logger := logging.New(cfg.LogLevel, opts.LogOut)
	clk := clock.SystemClock{}

	var tokens interface {
		pushout.CredentialProvider
		httpapi.TokenSource
	} = pushoutadapter.NewStaticCredentials(cfg.Token)
	if cfg.TokenFile != "" {
		tokens = pushoutadapter.NewFileCredentials(cfg.TokenFile)
	}
	api, err := httpapi.New(cfg.APIURL, cfg.HTTPTimeout, tokens)
	if err != nil {
		return nil, err
	}

	var transport pushout.HubTransport
	switch cfg.Transport {
	case config.TransportAMQP:
		transport = pushoutadapter.NewAMQPTransport(cfg.AMQP.URL, cfg.AMQP.Exchange, logging.Component(logger, "amqp"))
	default:
		transport = pushoutadapter.NewWebSocketTransport(pushoutadapter.WebSocketOptions{
			HubURL:  cfg.HubURL,
			Timeout: cfg.HTTPTimeout,
		}, id.UUID{}, logging.Component(logger, "hub"))
	}
	channel := pushservice.NewChannel(transport, tokens, clk, pushdomain.Backoff{
		Initial: cfg.Reconnect.Initial,
		Max:     cfg.Reconnect.Max,
	}, logging.Component(logger, "push"))
	pushUC := pushusecase.NewInteractor(channel)

	store, err := sessionoutadapter.NewSQLiteStore(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("new session store: %w", err)
	}
	sessionUC := sessionusecase.NewInteractor(sessionservice.NewSessionService(clk, store, logging.Component(logger, "session")))

	zoneUC := zoneusecase.NewInteractor(zoneservice.NewReconciler(
		zoneoutadapter.NewHTTPSource(api),
		pushUC,
		logging.Component(logger, "zones"),
	))
	verificationUC := verificationusecase.NewInteractor(verificationservice.NewReconciler(
		verificationoutadapter.NewHTTPSource(api),
		pushUC,
		clk,
		cfg.TombstoneTTL,
		logging.Component(logger, "verifications"),
	))

	prompter := console.NewPrompter(opts.In, opts.Out)
	var dispositions inventoryout.DispositionPrompt = inventoryoutadapter.NewConsolePrompt(prompter)
	if opts.DispositionsFile != "" {
		dispositions = inventoryoutadapter.NewFilePrompt(opts.DispositionsFile)
	}
	inventoryUC := inventoryusecase.NewInteractor(inventoryservice.NewFacade(
		sessionUC,
		inventoryoutadapter.NewHTTPAPI(api),
		dispositions,
		pushUC,
		logging.Component(logger, "inventory"),
	), sessionUC)

	exitUC := exitusecase.NewInteractor(exitservice.NewPolicy(
		inventoryUC,
		exitoutadapter.NewConsoleConfirmer(prompter),
		logging.Component(logger, "exit"),
	))

	return &App{
		Config:          cfg,
		Logger:          logger,
		ZoneCLI:         zoneinadapter.NewCLIHandler(zoneUC),
		VerificationCLI: verificationinadapter.NewCLIHandler(verificationUC),
		SessionCLI:      sessioninadapter.NewCLIHandler(sessionUC),
		InventoryCLI:    inventoryinadapter.NewCLIHandler(inventoryUC),
		Exit:            exitUC,
		Prompter:        prompter,
		push:            pushUC,
		zones:           zoneUC,
		verifications:   verificationUC,
		scans:           sessioninadapter.NewPushListener(sessionUC, pushUC, logging.Component(logger, "scans")),
		status: httpserver.NewRouter(logging.Component(logger, "http"),
			pushinadapter.NewHTTPHandler(pushUC),
			zoneinadapter.NewHTTPHandler(zoneUC),
			verificationinadapter.NewHTTPHandler(verificationUC),
			inventoryinadapter.NewHTTPHandler(inventoryUC),
		),
		store: store,
	}, nil
}

// Close drops the push connection and the session database.
func (a *App) Close() error {
	return errors.Join(a.push.Close(), a.store.Close())
}

// Monitor keeps the push channel up, feeds scans into the session store,
// keeps the zone and verification collections reconciled and serves the
// status endpoints until ctx ends.
func (a *App) Monitor(ctx context.Context) error {
	if _, err := a.zones.Load(ctx, a.Config.UserID); err != nil {
		return fmt.Errorf("load zones: %w", err)
	}
	if _, err := a.verifications.Load(ctx, a.Config.UserID); err != nil {
		return fmt.Errorf("load verifications: %w", err)
	}

	a.scans.Start()
	a.zones.Activate()
	a.verifications.Activate()
	zoneSub := a.zones.OnChange(func(zones []zonedto.ZoneOutput) {
		a.Logger.Info().Int("zones", len(zones)).Msg("zones updated")
	})
	verificationSub := a.verifications.OnChange(func(entries []verificationdto.EntryOutput) {
		a.Logger.Info().Int("pending", len(entries)).Msg("verification list updated")
	})
	defer func() {
		zoneSub.Unsubscribe()
		verificationSub.Unsubscribe()
		a.verifications.Deactivate()
		a.zones.Deactivate()
		a.scans.Stop()
	}()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.connect(ctx)
	})
	group.Go(func() error {
		return httpserver.Serve(ctx, a.Config.StatusListen, a.status, a.Logger)
	})
	return group.Wait()
}

// Watch streams the scanned count of the active session until ctx ends.
func (a *App) Watch(ctx context.Context, onScan func(count int)) error {
	current, err := a.SessionCLI.Current(ctx)
	if err != nil {
		return err
	}
	if !current.Active {
		return fmt.Errorf("no active inventory")
	}
	a.scans.Start()
	defer a.scans.Stop()
	sub := a.push.SubscribeItemScanned(func(ev pushdto.ItemScanned) {
		if ev.SessionID != current.SessionID {
			return
		}
		count, err := a.InventoryCLI.Status(ctx)
		if err == nil {
			onScan(count.ScannedCount)
		}
	})
	defer sub.Unsubscribe()

	if err := a.connect(ctx); err != nil {
		return err
	}
	if err := a.push.JoinSessionGroup(ctx, current.SessionID); err != nil {
		return err
	}
	onScan(len(current.ScannedItemIDs))
	<-ctx.Done()
	return nil
}

// connect retries the first connection; once up, the channel reconnects on
// its own.
func (a *App) connect(ctx context.Context) error {
	backoff := pushdomain.Backoff{Initial: a.Config.Reconnect.Initial, Max: a.Config.Reconnect.Max}
	var delay time.Duration
	for {
		err := a.push.Connect(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, pushdomain.ErrClosed) {
			return err
		}
		delay = backoff.Next(delay)
		a.Logger.Warn().Err(err).Dur("retry_in", delay).Msg("push channel unavailable")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}
