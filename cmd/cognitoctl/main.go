// Command cognitoctl signs in to a Cognito user pool, prints session tokens
// and identity pool credentials, serves them over HTTP and moves files in
// the signed-in identity's storage folder.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&cli{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+userMessage(err))
		os.Exit(1)
	}
}
