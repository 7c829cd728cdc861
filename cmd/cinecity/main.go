// Command cinecity is the terminal client of the CineCity platform.
//
//	cinecity login -u ana
//	cinecity explorer -tab places -q paris
//	cinecity etl status -watch
//	cinecity etl run-full
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cinecity-client/internal/config"
	"cinecity-client/internal/service"
	"cinecity-client/internal/session"
	"cinecity-client/pkg/httpclient"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// 终端输出留给结果，日志走 stderr
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	sess := session.NewManager(session.NewFileStore(cfg.SessionFile))
	sess.OnExpired(func() {
		fmt.Fprintln(os.Stderr, "Session expired. Please log in again with: cinecity login")
	})

	app := &cli{
		api:    service.New(httpclient.NewClient(cfg.APIURL, cfg.RequestTimeout), sess),
		sess:   sess,
		policy: cfg.NormalizePolicy(),
		poll:   cfg.PollInterval,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
