// Command pixdoc applies TOML edit scripts to a layered pixel document and
// exports the result.
//
// Usage:
//
//	pixdoc run scene.toml --out scene.png
//	pixdoc graph scene.toml --svg --out graph.svg
//	pixdoc version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/pixdoc"
)

// version is set with -ldflags "-X main.version=...".
var version = pixdoc.Version

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
