// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the weather-forecast command.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wneessen/weather-forecast/internal/config"
	"github.com/wneessen/weather-forecast/internal/logger"
	"github.com/wneessen/weather-forecast/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.New(slog.LevelError)

	confPath := flag.String("config", "", "path to the config file")
	city := flag.String("city", "", "print the forecast for the given city and exit")
	locate := flag.Bool("locate", false, "print the forecast for the current location and exit")
	daemon := flag.Bool("daemon", false, "refresh the forecasts of all configured cities periodically")
	flag.Parse()

	// API keys are usually kept in a .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error("failed to load .env file", logger.Err(err))
		os.Exit(1)
	}

	conf, err := loadConfig(*confPath)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}
	log = logger.New(conf.LogLevel)

	serv, err := service.New(conf, log, os.Stdout)
	if err != nil {
		log.Error("failed to initialize weather-forecast service", logger.Err(err))
		os.Exit(1)
	}

	if *daemon {
		sigChan := make(chan os.Signal, 1)
		serv.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
		defer serv.SignalSrc.Stop(sigChan)
		go serv.HandleSignals(ctx, sigChan)

		log.Info("starting weather-forecast service", slog.String("version", version),
			slog.String("commit", commit), slog.String("date", date))
		if err = serv.Run(ctx); err != nil {
			log.Error("failed to run weather-forecast service", logger.Err(err))
			os.Exit(1)
		}
		log.Info("shutting down weather-forecast service")
		return
	}

	target := conf.DefaultCity
	switch {
	case *city != "":
		target = *city
	case *locate:
		target = serv.Locate(ctx)
	}
	if err = serv.ForecastOnce(ctx, target); err != nil {
		log.Error("failed to retrieve forecast", slog.String("city", target), logger.Err(err))
		os.Exit(1)
	}
}

// loadConfig reads the given config file, or the first config file found in the default
// location. Without a file, the defaults and environment are used.
func loadConfig(confPath string) (*config.Config, error) {
	if confPath != "" {
		return config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
	}
	if path, file := findConfigFile(); path != "" && file != "" {
		return config.NewFromFile(path, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "weather-forecast", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
