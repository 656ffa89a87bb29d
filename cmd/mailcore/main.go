package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ajramos/mailcore/internal/config"
	"github.com/ajramos/mailcore/internal/engine"
	"github.com/ajramos/mailcore/internal/inbox"
	"github.com/ajramos/mailcore/internal/poll"
	"github.com/ajramos/mailcore/internal/session"
	"github.com/ajramos/mailcore/internal/views"
)

// bootstrapSeeds are written to the session store on first run only.
var bootstrapSeeds = map[string]string{
	"user":    "default",
	"project": "4",
}

func main() {
	configPathFlag := flag.String("config", "", "Path to JSON configuration file (default: ~/.config/mailcore/config.json)")
	endpointFlag := flag.String("endpoint", "", "List endpoint URL (overrides config)")
	flag.Parse()

	configPath := *configPathFlag
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: could not load configuration: %v", err)
		cfg = config.DefaultConfig()
	}
	if *endpointFlag != "" {
		cfg.Endpoint = *endpointFlag
	}
	if cfg.Endpoint == "" {
		log.Fatal("A list endpoint is required. Provide it via --endpoint or the config file.")
	}

	logger := buildLogger(cfg.LogFile)

	ctx := context.Background()
	sess, err := session.Open(ctx, cfg.SessionDB)
	if err != nil {
		log.Fatalf("open session store: %v", err)
	}
	defer func() { _ = sess.Close() }()

	if err := sess.Seed(ctx, bootstrapSeeds); err != nil {
		log.Fatalf("seed session store: %v", err)
	}

	rules := views.DefaultSectionRules()
	if cfg.SectionRules != "" {
		loaded, err := views.LoadSectionRules(cfg.SectionRules)
		if err != nil {
			log.Printf("Warning: could not load section rules: %v", err)
		} else {
			rules = loaded
		}
	}

	client, err := inbox.NewClient(cfg.Endpoint)
	if err != nil {
		log.Fatalf("build inbox client: %v", err)
	}

	eng := engine.New(engine.Options{
		Fetcher:      client,
		Query:        poll.Query{Page: 1, PageSize: cfg.PageSize, Folder: cfg.Folder},
		PollInterval: cfg.Interval(),
		SectionRules: rules,
		Logger:       logger,
	})
	eng.Start()
	defer eng.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger.Printf("mailcore running; polling %s every %s", cfg.Endpoint, cfg.Interval())
	for {
		select {
		case n := <-eng.Events():
			fmt.Printf("You have %+d new messages (total %d)\n", n.Delta, n.Total)
			counts := eng.Counts()
			logger.Printf("counts: inbox=%d starred=%d bin=%d",
				counts[views.SectionInbox], counts[views.SectionStarred], counts[views.SectionBin])
		case <-sigCh:
			logger.Printf("shutting down")
			return
		}
	}
}

func buildLogger(logFile string) *log.Logger {
	if logFile == "" {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		log.Printf("Warning: could not open log file: %v", err)
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return log.New(f, "", log.LstdFlags)
}
