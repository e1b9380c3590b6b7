package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-campcert"
	"github.com/goliatone/go-campcert/pkg/config"
	"github.com/goliatone/go-campcert/pkg/session"
)

// startSession builds a session for c, starts its loop and returns a stop
// function that waits for the loop to exit.
func startSession(ctx context.Context, c config.Config, options ...session.Option) (*session.Session, func(), error) {
	sess, err := campcert.NewSession(c, options...)
	if err != nil {
		return nil, nil, err
	}
	runCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = sess.Run(runCtx)
	}()
	return sess, func() {
		cancel()
		<-stopped
	}, nil
}

// writeOutput writes data to path, or to out when path is empty.
func writeOutput(out io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(out, "Preview written to %s\n", path)
	return nil
}
