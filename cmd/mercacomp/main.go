package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"mercacomp/internal/config"
	"mercacomp/internal/http/handlers"
	applog "mercacomp/internal/log"
	"mercacomp/internal/remote"
	"mercacomp/internal/repos"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Optional file logging
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.Log.File, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	store, closer, err := repos.Open(context.Background(), cfg.Store.Driver, cfg.Store.DSN, cfg.Store.RedisAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	// Every cart write is reported so other views of the same session can refresh.
	stopWatch := repos.NewCartRepo(store).Watch(func(sid string, ev repos.Event) {
		applog.Event("cart.changed", sid, map[string]any{"deleted": ev.Deleted, "bytes": len(ev.Value)})
	})
	defer stopWatch()

	api := remote.New(cfg.API.URL, remote.NewTracedHTTPClient(cfg.API.Timeout))
	postal := remote.NewPostalClient(cfg.API.PostalURL, nil)

	cartCfg, err := cfg.CartConfig()
	if err != nil {
		log.Fatal(err)
	}

	deps := handlers.NewDeps(store, api, postal, cartCfg)
	app := handlers.NewApp(handlers.AppConfig{
		Templates: "./web/templates",
		CSRF:      cfg.HTTP.CSRF,
		RateLimit: cfg.HTTP.RateLimit,
		AccessLog: true,
	}, deps)

	if err := app.Listen(":" + cfg.HTTP.Port); err != nil {
		log.Printf("[fatal] %v", err)
		os.Exit(1)
	}
}
