package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tickworld/server/internal/config"
	"github.com/tickworld/server/internal/core/event"
	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/data"
	"github.com/tickworld/server/internal/gamemap"
	"github.com/tickworld/server/internal/handler"
	"github.com/tickworld/server/internal/login"
	"github.com/tickworld/server/internal/metrics"
	gonet "github.com/tickworld/server/internal/net"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/persist"
	"github.com/tickworld/server/internal/scripting"
	"github.com/tickworld/server/internal/system"
	"github.com/tickworld/server/internal/world"
)

const (
	writerQueueSize = 1024
	wealthQueueSize = 4096
	// shutdownTicks is the countdown players get after SIGINT/SIGTERM.
	shutdownTicks = 10
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string, nodeID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              tickworld server             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mWorld:\033[0m %s \033[90m(node %d)\033[0m\n\n", name, nodeID)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("TICKWORLD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.NodeID)

	// 3. Connect to PostgreSQL and run migrations
	printSection("Database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, cfg.Server.NodeID, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	applied, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printStat("migrations applied", applied)

	// 4. Create repositories
	writer := persist.NewWriter(writerQueueSize, cfg.Database.SaveTimeout, log)
	accountRepo := persist.NewAccountRepo(db, writer, log)
	saveRepo := persist.NewSaveRepo(db)
	sessionRepo := persist.NewSessionRepo(db, writer)
	wealthRepo := persist.NewWealthRepo(db, wealthQueueSize, log)

	if n, err := sessionRepo.CloseStale(ctx); err != nil {
		return fmt.Errorf("close stale sessions: %w", err)
	} else if n > 0 {
		log.Info("closed sessions left open by the last run", zap.Int64("count", n))
	}
	fmt.Println()

	// 5. Load config tables, map and scripts
	printSection("Content")

	stores, err := data.LoadStores(cfg.Server.DataDir, log)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	printStat("obj types", stores.Objs.Count())
	printStat("npc types", stores.Npcs.Count())
	printStat("loc types", stores.Locs.Count())
	printStat("inv types", stores.Invs.Count())

	gmap := gamemap.New(cfg.Server.Members, log)
	gmap.Load(cfg.Server.DataDir, stores.Locs)
	printStat("zones", gmap.Zones.ZoneCount())

	engine, err := scripting.Load(cfg.Server.ScriptDir, stores, log)
	if err != nil {
		return fmt.Errorf("lua scripts: %w", err)
	}
	defer func() { engine.Close() }()
	printStat("script handlers", engine.Handlers())
	fmt.Println()

	// 6. Create the world
	var m *metrics.Metrics
	var wealth world.WealthRecorder = wealthRepo
	if cfg.Metrics.Enabled {
		m = metrics.New()
		wealth = system.CountTrades(wealthRepo, m)
	}

	w := world.New(world.Options{
		Config:      cfg.World,
		NodeID:      cfg.Server.NodeID,
		Map:         gmap,
		Stores:      stores,
		Scripts:     engine.Scripts,
		Saver:       saveRepo,
		Wealth:      wealth,
		SaveTimeout: cfg.Database.SaveTimeout,
		Rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
		Log:         log,
	})
	w.SpawnMapEntities()
	printStat("npcs spawned", w.Npcs.Count())

	// 7. Phase systems and message handlers
	bus := event.NewBus()
	sessionRepo.Subscribe(bus)

	pktReg := packet.NewRegistry(log)
	runner := coresys.NewRunner()
	system.RegisterAll(runner, system.Deps{
		World:    w,
		Registry: pktReg,
		Bus:      bus,
		Metrics:  m,
		Network:  cfg.Network,
		Log:      log,
	})

	loop := system.NewEngine(w, runner, cfg.Network.TickRate, m, log)
	loop.ShutdownTicks = shutdownTicks

	deps := &handler.Deps{
		World:       w,
		Log:         log,
		TickRate:    cfg.Network.TickRate,
		Moderation:  accountRepo,
		SetTickRate: loop.SetRate,
		Reload: func() error {
			next, err := data.LoadStores(cfg.Server.DataDir, log)
			if err != nil {
				return err
			}
			nextEngine, err := scripting.Load(cfg.Server.ScriptDir, next, log)
			if err != nil {
				return err
			}
			w.Reload(next)
			nextEngine.Install(w)
			engine.Close()
			engine = nextEngine
			return nil
		},
	}
	handler.RegisterAll(pktReg, deps)

	// 8. Login service and listeners
	loginSvc := login.NewService(login.Options{
		Accounts:   accountRepo,
		Snapshots:  saveRepo,
		Queue:      w,
		AutoCreate: true,
		Attempts:   cfg.RateLimit.LoginAttempts,
		Window:     cfg.RateLimit.LoginWindow,
		TickRate:   cfg.Network.TickRate,
		Metrics:    m,
		Log:        log,
	})
	serve := func(sess *gonet.Session) { loginSvc.Serve(sess) }

	sessOpts := gonet.SessionOptions{
		InQueueSize:      cfg.Network.InQueueSize,
		OutQueueSize:     cfg.Network.OutQueueSize,
		PacketsPerSecond: cfg.RateLimit.PacketsPerSecond,
		ReadTimeout:      cfg.Network.ReadTimeout,
		WriteTimeout:     cfg.Network.WriteTimeout,
	}
	netServer, err := gonet.NewServer(cfg.Network.TCPBindAddress, sessOpts, serve, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	var wsServer *gonet.WSServer
	if cfg.Network.WSBindAddress != "" {
		wsServer = gonet.NewWSServer(cfg.Network.WSBindAddress, cfg.Network.WSPath, sessOpts, serve, log)
		go func() {
			if err := wsServer.ListenAndServe(); err != nil {
				log.Error("websocket listener failed", zap.Error(err))
			}
		}()
	}

	// 9. Background workers
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	wealthDone := make(chan struct{})
	go func() {
		wealthRepo.Run(bgCtx)
		close(wealthDone)
	}()
	go loginSvc.SweepLoop(bgCtx)
	if m != nil {
		go func() {
			if err := m.Serve(bgCtx, cfg.Metrics.BindAddress, cfg.Metrics.Path, log); err != nil {
				log.Error("metrics listener failed", zap.Error(err))
			}
		}()
	}

	printSection("Ready")
	printReady(fmt.Sprintf("tcp listening on %s", netServer.Addr().String()))
	if wsServer != nil {
		printReady(fmt.Sprintf("websocket listening on %s%s", cfg.Network.WSBindAddress, cfg.Network.WSPath))
	}
	printReady(fmt.Sprintf("game loop (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	// 10. Game loop. A signal starts the reboot countdown; Run returns once
	// every player has been saved and logged out.
	if err := loop.Run(runCtx); err != nil {
		log.Error("game loop failed", zap.Error(err))
	}

	netServer.Shutdown()
	if wsServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		_ = wsServer.Shutdown(shutdownCtx)
		cancelShutdown()
	}
	bgCancel()
	<-wealthDone
	writer.Close()
	log.Info("server stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	if cfg.File == "" {
		return log, nil
	}

	// Tee a rotated JSON copy to cfg.File.
	rotated := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), rotated, level)
	return log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}
