package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudopshq/cloudops-go/idle"
	"github.com/cloudopshq/cloudops-go/notifications"
	"github.com/cloudopshq/cloudops-go/session"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

// newWatchCommand runs an interactive session shell: the notification
// poller keeps the feed fresh while the inactivity monitor ends the
// session after the configured idle timeout. Every line typed counts as
// activity; an empty line refreshes the feed display.
func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow notifications until interrupted or idle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			profile, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			figure.NewFigure("CloudOps", "cybermedium", true).Print()
			fmt.Println()
			cmd.Printf("Watching notifications for %s. Press Ctrl-C to quit.\n", profile.FullName())

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			svc, err := notifications.NewService(a.api)
			if err != nil {
				return err
			}
			poller, err := notifications.NewPoller(svc,
				notifications.WithInterval(a.cfg.PollInterval),
				notifications.WithLogger(a.logger),
				notifications.WithUpdateHook(func(unread int) {
					if unread > 0 {
						cmd.Printf("You have %d unread notification(s).\n", unread)
					}
				}),
			)
			if err != nil {
				return err
			}

			monitor, err := idle.NewMonitor(func() {
				a.session.Logout()
				fmt.Fprintln(os.Stderr, "Session expired due to inactivity.")
				cancel()
			}, idle.WithTimeout(a.cfg.IdleTimeout), idle.WithLogger(a.logger))
			if err != nil {
				return err
			}

			// Poller and monitor follow the session state: both run only
			// while Authenticated.
			a.session.OnChange(func(status session.Status) {
				if status != session.Authenticated {
					monitor.Stop()
					poller.Stop()
				}
			})
			poller.Start(ctx)
			monitor.Start()
			defer monitor.Stop()
			defer poller.Stop()

			go watchInput(ctx, cmd, monitor, poller)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(stop)

			select {
			case <-stop:
			case <-ctx.Done():
			}
			return nil
		},
	}
}

func watchInput(ctx context.Context, cmd *cobra.Command, monitor *idle.Monitor, poller *notifications.Poller) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		monitor.Activity()
		if scanner.Text() == "" {
			items, unread := poller.Snapshot()
			cmd.Printf("%d notification(s), %d unread\n", len(items), unread)
			for _, item := range items {
				marker := " "
				if !item.IsRead {
					marker = "*"
				}
				cmd.Printf("%s %4d  %s: %s\n", marker, item.ID, item.Title, item.Message)
			}
		}
	}
}
