// Command fetch downloads the OpenAQ measurements for every tracked city and
// pollutant and writes the daily averages to the pollutant input file.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobby-s-dev/transit-air-quality/internal/config"
	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	"github.com/bobby-s-dev/transit-air-quality/internal/pkg/logger"
	"github.com/bobby-s-dev/transit-air-quality/internal/services"
	"github.com/bobby-s-dev/transit-air-quality/pkg/client"
	"go.uber.org/zap"
)

func main() {
	bootLogger, _ := zap.NewProduction()
	zap.ReplaceGlobals(bootLogger)

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	from := flag.String("from", models.StudyStart.String(), "first day to fetch (YYYY-MM-DD)")
	to := flag.String("to", models.StudyEnd.String(), "last day to fetch (YYYY-MM-DD)")
	out := flag.String("out", cfg.Data.PollutantFile, "output JSON file")
	flag.Parse()

	log, err := logger.New(cfg.Server.LogLevel, "openaq-fetch")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	fromDate, err := models.ParseDate(*from)
	if err != nil {
		log.Fatal("Invalid -from date", zap.Error(err))
	}
	toDate, err := models.ParseDate(*to)
	if err != nil {
		log.Fatal("Invalid -to date", zap.Error(err))
	}
	if fromDate.After(toDate) {
		log.Fatal("-from is after -to",
			zap.String("from", fromDate.String()),
			zap.String("to", toDate.String()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openaq := client.NewOpenAQClient(cfg.OpenAQ.BaseURL, cfg.OpenAQ.Limit, client.ClientConfig{
		Timeout:        cfg.OpenAQ.Timeout,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay,
		MaxDelay:       cfg.Retry.MaxDelay,
		RateLimitWait:  cfg.Retry.RateLimitWait,
		Multiplier:     cfg.Retry.Multiplier,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}, log)

	collector := services.NewCollector(openaq, client.NewPacer(cfg.OpenAQ.RequestDelay), log)

	data, err := collector.Collect(ctx, fromDate, toDate)
	if err != nil {
		log.Fatal("Collection failed", zap.Error(err))
	}

	if err := services.WritePollutantFile(*out, data); err != nil {
		log.Fatal("Failed to write pollutant file", zap.Error(err))
	}

	log.Info("Pollutant file written", zap.String("path", *out))
}
