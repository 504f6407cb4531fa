// Command authsweep reclaims expired rows from the engine's record store.
// Run it from cron (one-shot, the default) or as a sidecar (-interval).
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tinytalkers/parentauth"
	"github.com/tinytalkers/parentauth/store"
)

func main() {
	var (
		redisAddr = flag.String("redis-addr", "", "redis address; REDIS_ADDR env when empty")
		prefix    = flag.String("prefix", "", "record store key prefix")
		retention = flag.Duration("event-retention", 0, "event log retention; engine default when 0")
		interval  = flag.Duration("interval", 0, "sweep repeatedly at this interval; one-shot when 0")
	)
	flag.Parse()

	_ = godotenv.Load()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		log.Fatal("authsweep: no redis address (use -redis-addr or REDIS_ADDR)")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	sweeper := parentauth.NewSweeper(
		store.NewRedis(client, *prefix),
		parentauth.Config{Events: parentauth.EventConfig{Retention: *retention}},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweep := func() {
		report, err := sweeper.Run(ctx)
		if err != nil {
			log.Printf("authsweep: pass failed after removing %d/%d/%d rows: %v",
				report.Sessions, report.OTPRecords, report.Events, err)
			return
		}
		log.Printf("authsweep: removed %d sessions, %d otp records, %d events",
			report.Sessions, report.OTPRecords, report.Events)
	}

	sweep()
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
