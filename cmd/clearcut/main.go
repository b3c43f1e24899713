// clearcut is the command-line client: it keeps the session and free-trial
// state under a local directory and talks to the backend the same way the
// product's UI does.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clearcut/entitlement-system/internal/client/analytics"
	"github.com/clearcut/entitlement-system/internal/client/api"
	"github.com/clearcut/entitlement-system/internal/client/payment"
	"github.com/clearcut/entitlement-system/internal/client/session"
	"github.com/clearcut/entitlement-system/internal/client/store"
	"github.com/clearcut/entitlement-system/internal/client/trial"
	"github.com/clearcut/entitlement-system/internal/client/usage"
	"github.com/clearcut/entitlement-system/internal/core/domain"
	"github.com/clearcut/entitlement-system/internal/pkg/config"
	"github.com/clearcut/entitlement-system/pkg/logger"
)

type app struct {
	sessions  *session.Store
	tracker   *trial.Tracker
	recorder  *usage.Recorder
	orch      *payment.Orchestrator
	analytics *analytics.Aggregator
	backend   *api.Client
	log       zerolog.Logger
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	storage, err := store.NewFileStore(cfg.Client.StateDir, log)
	if err != nil {
		return nil, err
	}

	backend := api.NewClient(cfg.Client.APIBaseURL, nil, log)
	sessions := session.NewStore(backend, storage, log)
	sessions.Load()

	a := &app{
		sessions:  sessions,
		tracker:   trial.NewTracker(storage, sessions, cfg.Trial.Credits, cfg.Trial.PeriodHours, log),
		recorder:  usage.NewRecorder(backend, sessions, log),
		analytics: analytics.NewAggregator(backend, sessions, log),
		backend:   backend,
		log:       log,
	}
	a.orch = payment.NewOrchestrator(
		sessions,
		backend,
		payment.Config{CheckoutURL: cfg.Checkout.URL, MinAmount: cfg.Checkout.MinAmount},
		func(url string) {
			fmt.Println("Open the checkout page to finish your upgrade:")
			fmt.Println("  " + url)
		},
		func() {
			fmt.Println("You are premium now. Unlimited removals unlocked.")
		},
		log,
	)
	return a, nil
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Output: os.Stderr})

	a, err := newApp(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise")
	}

	root := &cobra.Command{
		Use:           "clearcut",
		Short:         "ClearCut background-removal client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		statusCmd(a),
		removeCmd(a),
		analyticsCmd(a),
		paymentsCmd(a),
		upgradeCmd(a),
		confirmCmd(a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loginCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in (or create an account) with your email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.sessions.Login(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			fmt.Printf("Signed in as %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name for new accounts")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.sessions.Logout()
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity, refreshed from the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sessions.Refresh(cmd.Context()); err != nil {
				return err
			}
			sess := a.sessions.Current()
			if sess == nil {
				fmt.Println("Not signed in.")
				return nil
			}
			fmt.Printf("%s (%s)\n", sess.User.Email, tier(&sess.User))
			return nil
		},
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show remaining free-trial credits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sess := a.sessions.Current(); sess != nil && sess.User.IsPremium {
				fmt.Println("Premium: unlimited removals.")
				return nil
			}
			state := a.tracker.State()
			fmt.Printf("Free trial: %d removals left in the current %dh window.\n",
				state.RemainingCredits, state.PeriodHours)
			return nil
		},
	}
}

func removeCmd(a *app) *cobra.Command {
	var fileType string
	cmd := &cobra.Command{
		Use:   "remove <image>",
		Short: "Run one background removal against the trial or premium entitlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tracker.Gate(); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			a.recorder.Start(ctx)

			// The processing call itself lives in the image pipeline; here we
			// account for a completed removal.
			a.recorder.Record(domain.ActionBackgroundRemoval, map[string]any{
				"file_name": args[0],
				"file_type": fileType,
			})
			a.tracker.Increment()

			flushCtx, flushCancel := context.WithTimeout(ctx, 5*time.Second)
			defer flushCancel()
			if err := a.recorder.Flush(flushCtx); err != nil {
				a.log.Warn().Err(err).Msg("usage event not delivered before exit")
			}

			if remaining := a.tracker.Remaining(); !a.isPremium() {
				fmt.Printf("Done. %d free removals left.\n", remaining)
			} else {
				fmt.Println("Done.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fileType, "file-type", "png", "input file type recorded with the event")
	return cmd
}

func analyticsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show your usage dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.analytics.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Total removals: %d\n", snap.TotalUsage)
			for _, d := range snap.UsageByDate {
				fmt.Printf("  %s  %d\n", d.Date, d.Count)
			}
			for _, ac := range snap.UsageByAction {
				fmt.Printf("  %-24s %d\n", ac.Action, ac.Count)
			}
			return nil
		},
	}
}

func paymentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "payments",
		Short: "Show your payment history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := a.sessions.Token()
			if token == "" {
				return domain.ErrNotAuthenticated
			}
			payments, err := a.backend.PaymentHistory(cmd.Context(), token)
			if err != nil {
				return err
			}
			if len(payments) == 0 {
				fmt.Println("No payments yet.")
				return nil
			}
			for _, p := range payments {
				fmt.Printf("%s  %6.2f %s  %s\n",
					p.CreatedAt.Format("2006-01-02"), float64(p.Amount)/100, strings.ToUpper(p.Currency), p.Status)
			}
			return nil
		},
	}
}

func upgradeCmd(a *app) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Start the one-time premium upgrade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sess := a.sessions.Current(); sess != nil {
				if email == "" {
					email = sess.User.Email
				}
				if name == "" {
					name = sess.User.Name
				}
			}
			if err := a.orch.Submit(cmd.Context(), email, name); err != nil {
				if msg := a.orch.GeneralError(); msg != "" {
					fmt.Fprintln(os.Stderr, msg)
				}
				for _, msg := range a.orch.FieldErrors() {
					fmt.Fprintln(os.Stderr, msg)
				}
				return err
			}
			fmt.Println("After paying, run `clearcut confirm` to activate premium.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email for the payment receipt")
	cmd.Flags().StringVar(&name, "name", "", "name for the payment receipt")
	return cmd
}

func confirmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm",
		Short: "Check whether the payment landed and activate premium",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.orch.CompletePayment(cmd.Context()); err != nil {
				if err == payment.ErrPaymentPending {
					fmt.Println("Payment not confirmed yet. Try again in a moment.")
					return nil
				}
				return err
			}
			return nil
		},
	}
}

func (a *app) isPremium() bool {
	sess := a.sessions.Current()
	return sess != nil && sess.User.IsPremium
}

func tier(u *domain.User) string {
	if u.IsPremium {
		return "premium"
	}
	return "free"
}
