package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-campcert/pkg/prompt"
	"github.com/goliatone/go-campcert/pkg/renderers/text"
	"github.com/goliatone/go-campcert/pkg/session"
	"github.com/goliatone/go-campcert/pkg/validation"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Fill in the certificate interactively",
	Args:  cobra.NoArgs,
	RunE:  runPrompt,
}

func runPrompt(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	c := cfg
	c.Renderer = text.Name
	sess, stop, err := startSession(ctx, c, session.WithListener(session.ListenerFuncs{
		OnWarning: func(message string) { fmt.Fprintln(out, message) },
	}))
	if err != nil {
		return err
	}
	defer stop()

	if err := prompt.Collect(ctx, prompt.NewSurveyDriver(out), c.Camps, sess); err != nil {
		return err
	}
	if err := sess.Settle(ctx); err != nil {
		return err
	}

	if _, err := out.Write(sess.Frame().Output); err != nil {
		return err
	}

	result := validation.New(c.Camps).Validate(sess.Snapshot())
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "  %s: %s\n", issue.Field, issue.Message)
	}
	if !result.Valid {
		return fmt.Errorf("certificate incomplete: %d issue(s)", len(result.Issues))
	}
	return nil
}
