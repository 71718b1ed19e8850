package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/nasdaq/internal/scheduler"
	"github.com/wonny/nasdaq/internal/scheduler/jobs"
)

const (
	// defaultWarmSchedule runs the warmer every five minutes (cron with seconds)
	defaultWarmSchedule = "0 */5 * * * *"
	defaultWarmLead     = 2 * time.Minute
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Session credential management",
	Long: `Inspect or renew the shared session credential.

With REDIS_ENABLED=true the credential is shared through Redis, so
"session refresh" here replaces the credential used by running servers.

Subcommands:
  status   - show the held credential (cookie names only)
  refresh  - discard the held credential and mint a new one
  warm     - run the credential warmer job once

Example:
  go run ./cmd/nasdaq session status
  go run ./cmd/nasdaq session refresh`,
}

var (
	sessionStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show credential state",
		RunE:  sessionStatus,
	}

	sessionRefreshCmd = &cobra.Command{
		Use:   "refresh",
		Short: "Mint a new credential",
		RunE:  sessionRefresh,
	}

	sessionWarmCmd = &cobra.Command{
		Use:   "warm",
		Short: "Run the credential warmer once",
		RunE:  sessionWarm,
	}

	warmLead time.Duration
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionStatusCmd, sessionRefreshCmd, sessionWarmCmd)

	sessionWarmCmd.Flags().DurationVar(&warmLead, "lead", defaultWarmLead, "renew when the credential expires within this window")
}

func sessionStatus(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	// Shows the shared credential when Redis holds one; never mints.
	d.sessions.Restore(cmd.Context())
	return render(d.sessions.Snapshot())
}

func sessionRefresh(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := commandContext(cmd.Context(), d.cfg)
	defer cancel()

	d.sessions.Invalidate()
	if _, err := d.sessions.GetValidCredential(ctx); err != nil {
		return fmt.Errorf("refresh credential: %w", err)
	}
	return render(d.sessions.Snapshot())
}

func sessionWarm(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	sched := newWarmerScheduler(d, warmSchedule(d.cfg.Nasdaq.WarmSchedule), warmLead)
	defer sched.Stop()

	result, err := sched.RunJob(jobs.CredentialWarmerName)
	if err != nil {
		return err
	}
	if err := render(result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("credential warmer failed: %s", result.Error)
	}
	return nil
}

// newWarmerScheduler registers the credential warmer on a new scheduler.
// The scheduler is not started; callers Start it or run the job directly.
func newWarmerScheduler(d *deps, schedule string, lead time.Duration) *scheduler.Scheduler {
	sched := scheduler.New(d.log.WithComponent("scheduler")).
		WithJobTimeout(d.cfg.Nasdaq.MintTimeout + 10*time.Second)

	job := jobs.NewCredentialWarmerJob(d.sessions, schedule, lead, d.log.WithComponent("credential_warmer"))
	if err := sched.AddJob(job); err != nil {
		// Only a malformed NASDAQ_WARM_SCHEDULE gets here.
		d.log.WithError(err).Warn("Credential warmer not scheduled")
	}
	return sched
}

func warmSchedule(configured string) string {
	if configured == "" {
		return defaultWarmSchedule
	}
	return configured
}
