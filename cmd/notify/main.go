package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/config"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/log"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/mail"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/queue"
)

func main() {
	cfg, err := config.LoadNotify()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.Init(cfg.LogProd)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cons, err := queue.NewConsumer(cfg.RabbitURL, cfg.Exchange, cfg.Queue, cfg.BindKeys)
	if err != nil {
		logger.Fatal("rabbit consumer init failed", zap.Error(err))
	}
	defer cons.Close()

	var sender mail.Sender = mail.LogSender{L: logger}
	if cfg.SendgridKey != "" {
		sender = mail.NewSendGrid(cfg.SendgridKey, cfg.MailFrom)
	}
	n := &mail.Notifier{Sender: sender}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("notifier up",
		zap.String("exchange", cfg.Exchange),
		zap.String("queue", cfg.Queue),
		zap.Strings("keys", cfg.BindKeys),
		zap.Int("workers", cfg.Concurrency))

	if err := cons.Consume(ctx, cfg.Concurrency, n.Handle); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
