package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/communityhub/member-qa/internal/bootstrap"
	"github.com/communityhub/member-qa/internal/config"
	"github.com/communityhub/member-qa/internal/infrastructure/queue/nats"
	"github.com/communityhub/member-qa/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, "worker")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		log.Fatalf("init question queue: %v", err)
	}
	defer queue.Close()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = queue.SubscribeQuestions(ctx, func(handlerCtx context.Context, question string) (string, error) {
		answerCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
		defer cancel()

		answer, err := app.QA.Answer(answerCtx, question)
		if err != nil {
			return "", err
		}
		return answer.Text, nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
