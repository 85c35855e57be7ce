package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sena-tools/coupon-relay/internal/app"
	"github.com/sena-tools/coupon-relay/internal/config"
	"github.com/sena-tools/coupon-relay/internal/logging"
	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Usage = usage
	flag.Parse()

	cfg, errLoad := config.Load(*configPath)
	if errLoad != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", errLoad)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	command := "serve"
	args := flag.Args()
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var errRun error
	switch command {
	case "serve":
		errRun = app.RunServer(ctx, cfg)
	case "migrate":
		errRun = app.Migrate(ctx, cfg)
	case "seed":
		errRun = app.Seed(ctx, cfg)
	case "redeem":
		errRun = runRedeem(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}
	if errRun != nil {
		log.Fatal(errRun)
	}
}

func runRedeem(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("redeem", flag.ExitOnError)
	uid := fs.String("uid", "", "account id (defaults to the last one used)")
	codes := fs.String("codes", "", "comma or whitespace separated coupon codes")
	auto := fs.Bool("auto", false, "redeem every published code not yet in history")
	clear := fs.Bool("clear", false, "clear this account's redemption history")
	deleteCodes := fs.String("delete", "", "remove the given codes from history instead of redeeming")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	input := *codes
	if input == "" && fs.NArg() > 0 {
		// codes may also be given as positional args
		for i, arg := range fs.Args() {
			if i > 0 {
				input += " "
			}
			input += arg
		}
	}

	return app.RunBatch(ctx, cfg, app.BatchParams{
		AccountID:    *uid,
		Input:        input,
		Auto:         *auto,
		ClearHistory: *clear,
		DeleteCodes:  *deleteCodes,
	})
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: coupon-relay [-config file] <command> [arguments]

Commands:
  serve     run the relay HTTP server (default)
  migrate   run database schema migration and exit
  seed      load the known coupon list into the directory
  redeem    batch-redeem coupons against a relay server

Redeem flags:
  -uid string     account id (defaults to the last one used)
  -codes string   comma or whitespace separated coupon codes
  -auto           redeem every published code not yet in history
  -clear          clear this account's redemption history
  -delete string  remove the given codes from history instead of redeeming
`)
}
