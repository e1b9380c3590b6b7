package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/ingest"
	"github.com/goliatone/go-campcert/pkg/session"
)

var previewFlags struct {
	camp     string
	session  int
	name     string
	avatar   string
	days     int
	targets  int
	points   int
	renderer string
	output   string
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a certificate preview from flags",
	Long: `Render a certificate preview from flags. Unset fields keep their
placeholders. The avatar must be a JPG or PNG under 2MB.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	f := previewCmd.Flags()
	f.StringVar(&previewFlags.camp, "camp", "", "Camp name")
	f.IntVar(&previewFlags.session, "session", 0, "Session number")
	f.StringVar(&previewFlags.name, "name", "", "Trainee name")
	f.StringVar(&previewFlags.avatar, "avatar", "", "Path to the trainee avatar (JPG/PNG)")
	f.IntVar(&previewFlags.days, "days", 0, "Check-in days")
	f.IntVar(&previewFlags.targets, "targets", 0, "Total target count")
	f.IntVar(&previewFlags.points, "points", 0, "Total points")
	f.StringVarP(&previewFlags.renderer, "renderer", "r", "", "Renderer: text or html (default from config)")
	f.StringVarP(&previewFlags.output, "output", "o", "", "Output file (stdout if empty)")
}

func runPreview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c := cfg
	if previewFlags.renderer != "" {
		c.Renderer = previewFlags.renderer
	}

	sess, stop, err := startSession(ctx, c, session.WithListener(session.ListenerFuncs{
		OnWarning: func(message string) { log.Warn().Msg(message) },
	}))
	if err != nil {
		return err
	}
	defer stop()

	update := formstate.Update{}
	flags := cmd.Flags()
	set := func(flag, key string, value any) {
		if flags.Changed(flag) {
			update[key] = value
		}
	}
	set("camp", formstate.FieldCampName, previewFlags.camp)
	set("session", formstate.FieldSessionNumber, previewFlags.session)
	set("name", formstate.FieldTraineeName, previewFlags.name)
	set("days", formstate.FieldCheckInDays, previewFlags.days)
	set("targets", formstate.FieldTotalTargetCount, previewFlags.targets)
	set("points", formstate.FieldTotalPoints, previewFlags.points)

	if _, err := sess.Apply(ctx, update); err != nil {
		return err
	}

	if previewFlags.avatar != "" {
		file, err := ingest.OpenLocal(previewFlags.avatar)
		if err != nil {
			log.Warn().Err(err).Msg(ingest.WarningReadFailed)
		} else if _, err := sess.Select(ctx, file); err != nil {
			return err
		}
	}
	if err := sess.Settle(ctx); err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), previewFlags.output, sess.Frame().Output)
}
