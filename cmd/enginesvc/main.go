package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/avvvet/realm-services/configs"
	"github.com/avvvet/realm-services/internal/comm"
	mongodb "github.com/avvvet/realm-services/internal/db"
	"github.com/avvvet/realm-services/internal/enginesvc/broker"
	engineconfig "github.com/avvvet/realm-services/internal/enginesvc/config"
	"github.com/avvvet/realm-services/internal/enginesvc/db"
	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	handlers "github.com/avvvet/realm-services/internal/enginesvc/handlers"
	"github.com/avvvet/realm-services/internal/enginesvc/scheduler"
	"github.com/avvvet/realm-services/internal/enginesvc/store"
	nats "github.com/avvvet/realm-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "engine"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId[:8])
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg := engineconfig.Load()

	ctx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	// persistence
	var st engine.Store
	switch cfg.StoreDriver {
	case engineconfig.DriverPostgres:
		dbpool, err := db.Connect(cfg.DBUrl)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer db.ClosePool()
		log.Printf("pg connection established successfully")

		if err := db.Migrate(ctx, dbpool); err != nil {
			log.Fatalf("Failed to migrate DB: %v", err)
		}
		st = store.NewPgStore(dbpool)
	default:
		log.Warn("using in-memory store, matches are lost on restart")
		st = store.NewMemoryStore()
	}

	// Connect to NATS
	n, err := nats.Connect(SERVICE_NAME + "_service_" + instanceId)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	b := broker.NewBroker(n.Conn)
	notifiers := engine.Notifiers{b}

	// optional mongo mirror of the audit log
	var archiveDone chan struct{}
	if cfg.MongoURI != "" {
		mdb, closeMongo, err := mongodb.ConnectToDB(cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer closeMongo()

		if err := mongodb.CreateIndex(ctx, mdb, store.ArchiveCollection, "match_id", "entry_id"); err != nil {
			log.Warnf("unable to create archive index: %v", err)
		}

		archive := store.NewActionArchive(mdb, 1024)
		archiveDone = make(chan struct{})
		go func() {
			archive.Run(ctx)
			close(archiveDone)
		}()
		notifiers = append(notifiers, archive)
	}

	eng := engine.New(st, engine.WithNotifier(notifiers))
	b.Engine = eng // set engine reference for command handling

	sub, err := b.QueueSubscribeCommands(comm.TopicCommand, SERVICE_NAME)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// economy ticks
	sched, err := scheduler.New(eng, cfg.TickWorkers)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := sched.Start(cfg.ResourceTick, cfg.LightningTick); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.CORSOrigins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(eng, cfg.Port)
	h.InitAuth(cfg.JWTSecret)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()
	if err := sched.Shutdown(); err != nil {
		log.Errorf("scheduler shutdown: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	cancelRun()
	if archiveDone != nil {
		<-archiveDone
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
