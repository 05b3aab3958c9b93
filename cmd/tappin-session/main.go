package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tappin/authsession"
	"go.uber.org/zap"
)

const usage = `usage: tappin-session [flags] <command> [args]

commands:
  status                         show the restored session
  inspect <token>                decode a token without storing it
  set-token <token>              store a token and restore the session from it
  login <user-json>              log a user in (any known user shape)
  logout                         clear the session
  has-role <role>...             exit 0 when the user has one of the roles
  mint [flags]                   mint a development token
  register [flags]               register a client and log in
  payment <success|cancel> [q]   resolve a payment return page
  metrics                        print counters in Prometheus format

set-token and mint -store print the status of a session restored from the
stored token, as the next start of a client would see it; the session opened
at startup is left as it was for the rest of the invocation.

Without -redis-addr and with TAPPIN_STORAGE_BACKEND=redis an in-process
miniredis is used; state then lives for one invocation only.
`

func main() {
	os.Exit(realMain())
}

func realMain() int {
	var (
		envFile   = flag.String("env", "", "dotenv file to load (default .env)")
		redisAddr = flag.String("redis-addr", "", "redis address; overrides TAPPIN_REDIS_ADDR and selects the redis backend")
		origin    = flag.String("origin", "", "storage origin; overrides TAPPIN_ORIGIN")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := authsession.LoadConfig(files...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}
	if *redisAddr != "" {
		cfg.Storage.Backend = authsession.BackendRedis
		cfg.Storage.RedisAddr = *redisAddr
	}
	if *origin != "" {
		cfg.Storage.Origin = *origin
	}

	logger, err := authsession.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 2
	}

	ctx := context.Background()
	builder := authsession.New().WithConfig(cfg).WithLogger(logger)

	if cfg.Storage.Backend == authsession.BackendRedis && cfg.Storage.RedisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			return 1
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		defer func() {
			_ = client.Close()
			mr.Close()
		}()
		logger.Info("using miniredis", zap.String("addr", mr.Addr()))
		builder = builder.WithRedis(client)
	}

	app, err := builder.Build(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		return 1
	}
	defer app.Close()

	return run(ctx, app, flag.Args(), os.Stdout)
}

func run(ctx context.Context, app *authsession.App, args []string, out io.Writer) int {
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		return 2
	}
	if err := cmd(ctx, app, args[1:], out); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			return int(exit)
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		return 1
	}
	return 0
}

// exitError ends the process with a status and no message.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit %d", int(e)) }
