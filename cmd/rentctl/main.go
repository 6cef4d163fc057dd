package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"RentPredict/internal/rentctl"
	xhttp "RentPredict/pkg/http"
)

func main() {
	server := flag.String("server", envOr("RENTPREDICT_URL", "http://localhost:8080"), "base URL of the rent prediction service")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := rentctl.NewSession(
		rentctl.NewSurveyPrompter(),
		rentctl.NewHTTPSubmitter(*server, xhttp.NewClient()),
		os.Stdout,
	)
	if err := session.Run(ctx); err != nil {
		if errors.Is(err, rentctl.ErrAborted) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
