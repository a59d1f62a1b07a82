package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/configurator-checkout/internal/adapter/natsstan"
	"github.com/example/configurator-checkout/internal/domain"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "orderwatch",
		Usage: "print order events published by the checkout service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "nats-url", Value: "nats://localhost:4223", EnvVars: []string{"NATS_URL"}},
			&cli.StringFlag{Name: "cluster-id", Value: "checkout-cluster", EnvVars: []string{"STAN_CLUSTER_ID"}},
			&cli.StringFlag{Name: "client-id", Value: "orderwatch", EnvVars: []string{"STAN_WATCH_ID"}},
			&cli.StringFlag{Name: "subject", Value: "orders", EnvVars: []string{"STAN_SUBJECT"}},
			&cli.StringFlag{Name: "durable", Value: "orderwatch-durable"},
		},
		Action: watch,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("orderwatch: %v", err)
	}
}

func watch(c *cli.Context) error {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sub := &natsstan.Subscriber{
		ClusterID:  c.String("cluster-id"),
		ClientID:   c.String("client-id"),
		URL:        c.String("nats-url"),
		Subject:    c.String("subject"),
		QueueGroup: "orderwatch",
		Durable:    c.String("durable"),
	}
	err := sub.Subscribe(ctx, natsstan.DecodeEvents(func(_ context.Context, e domain.OrderEvent) error {
		log.Printf("%s order=%s user=%s configuration=%s amount=%s tx=%s",
			e.Type, e.OrderID, e.UserID, e.ConfigurationID, e.Amount, e.TransactionID)
		return nil
	}))
	if err != nil {
		return err
	}
	log.Printf("watching %s", sub.Subject)
	<-ctx.Done()
	return nil
}
