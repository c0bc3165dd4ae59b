// Command tlrouter translates and analyzes text through a fallback chain of
// AI vendors, from the command line or as an HTTP service.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaguanLabs/tlrouter"
	"github.com/ZaguanLabs/tlrouter/keystore"
	"github.com/ZaguanLabs/tlrouter/provider"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = tlrouter.Version
	commit    = tlrouter.GitCommit
	buildDate = tlrouter.BuildDate
)

// Exit codes.
const (
	exitOK      = 0
	exitError   = 1
	exitAborted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries the I/O streams and test hooks shared by every command.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// registryOptions are appended when the provider registry is built.
	registryOptions []provider.Option
	// newRedis connects the Redis key store for "keys --redis".
	newRedis func(ctx context.Context, cfg keystore.RedisConfig) (*keystore.Redis, error)

	configPath string
	logLevel   string
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, opts ...provider.Option) int {
	a := &app{
		stdin:           stdin,
		stdout:          stdout,
		stderr:          stderr,
		registryOptions: opts,
		newRedis:        keystore.NewRedis,
	}
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case tlrouter.IsAborted(err):
		return exitAborted
	default:
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return exitError
	}
}
