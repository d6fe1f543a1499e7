// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/bartekus/stubrelease/cmd/stubrelease/commands"
	"github.com/bartekus/stubrelease/cmd/stubrelease/internal/clierr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := commands.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !clierr.IsReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(clierr.ExitCodeOf(err))
	}
}
