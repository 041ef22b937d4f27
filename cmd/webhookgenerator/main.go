package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/hooksig/pkg/webhookclient"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file loaded:", err)
	}
	configPath := flag.String("config", os.Getenv("HOOKSIG_GENERATOR_CONFIG"), "path to YAML config (or HOOKSIG_GENERATOR_CONFIG)")
	flag.Parse()

	cfg, interval, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := webhookclient.Client{
		Endpoint:    cfg.Endpoint,
		Secrets:     cfg.Secrets,
		ContentType: webhookclient.CloudEventsContentType,
		Timeout:     10 * time.Second,
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := sendSample(ctx, client, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "webhook error:", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func sendSample(ctx context.Context, client webhookclient.Client, cfg config) error {
	payload, err := webhookclient.SamplePayload(cfg.Kind, cfg.Service, cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to build payload: %w", err)
	}
	client.ContentType = payload.ContentType

	result, err := client.Send(ctx, payload.Body)
	if err != nil {
		return err
	}
	fmt.Printf("Webhook status: %d (%s, id %s, %s)\n", result.StatusCode, payload.EventType, result.MessageID, result.Duration.Round(time.Millisecond))
	return nil
}
