package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"airpulse/internal/bootstrap"
	"airpulse/internal/devserver"
	"airpulse/internal/platform/config"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, apperrors.UserMessage(err, ""))
		os.Exit(1)
	}
}

type globals struct {
	stateDir string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "airpulse",
		Short:         "AirPulse heart and lung sound client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.stateDir, "state-dir", config.DefaultStateDir(), "directory holding config, session and cache")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log at the configured level instead of warnings only")

	root.AddCommand(newTUICmd(g))
	root.AddCommand(newEndpointCmd(g))
	root.AddCommand(newLoginCmd(g))
	root.AddCommand(newRegisterCmd(g))
	root.AddCommand(newLogoutCmd(g))
	root.AddCommand(newProfileCmd(g))
	root.AddCommand(newRecordCmd(g))
	root.AddCommand(newRecordingsCmd(g))
	root.AddCommand(newAnalyzeCmd(g))
	root.AddCommand(newChatCmd(g))
	root.AddCommand(newDevicesCmd(g))
	root.AddCommand(newDevServerCmd(g))
	return root
}

// loadApp wires the client. The TUI owns the terminal and logs to the state
// dir; other commands log to stderr. The returned cleanup must be called even
// when loading fails.
func loadApp(ctx context.Context, g *globals, tui bool) (*bootstrap.App, func(), error) {
	cfg, err := config.New(g.stateDir)
	if err != nil {
		return nil, func() {}, err
	}
	var closers []io.Closer
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}
	level := "warn"
	if g.verbose {
		level = cfg.LogLevel
	}
	logger := logging.New(level, os.Stderr)
	if tui {
		fileLogger, f, err := logging.NewFile(cfg.LogPath, cfg.LogLevel)
		if err != nil {
			return nil, cleanup, err
		}
		logger = fileLogger
		closers = append(closers, f)
	}
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, app)
	return app, cleanup, nil
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}

// readPassword prompts on the terminal when the flag was left empty.
func readPassword(cmd *cobra.Command, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--password is required when stdin is not a terminal")
	}
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), prompt)
	raw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func newTUICmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the AirPulse terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), g, true)
			defer cleanup()
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
}

func newEndpointCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint",
		Short: "Show the resolved API endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			out := app.EndpointCLI.Resolve(cmd.Context())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "endpoint=%s source=%s probed=%t\n", out.BaseURL, out.Source, out.Probed)
			if out.ProbeError != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "probe_error=%q\n", out.ProbeError)
			}
			return nil
		},
	}
}

func newLoginCmd(g *globals) *cobra.Command {
	var email, password string
	login := &cobra.Command{
		Use:   "login --email <email> --password <password>",
		Short: "Log in and persist the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(err, "Please try again."))
			}
			if out.HasUser {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", out.User.Name, out.User.Role)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}
	login.Flags().StringVar(&email, "email", "", "account email")
	login.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return login
}

func newRegisterCmd(g *globals) *cobra.Command {
	var name, email, password, confirm, userType string
	register := &cobra.Command{
		Use:   "register --name <name> --email <email> --password <password>",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			if confirm == "" {
				confirm = password
			}
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Register(cmd.Context(), name, email, password, confirm, userType)
			if err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(err, "Please try again."))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s as %s, log in to continue\n", out.Email, out.UserType)
			return nil
		},
	}
	register.Flags().StringVar(&name, "name", "", "full name")
	register.Flags().StringVar(&email, "email", "", "account email")
	register.Flags().StringVar(&password, "password", "", "password (at least 6 characters)")
	register.Flags().StringVar(&confirm, "confirm", "", "password confirmation (defaults to --password)")
	register.Flags().StringVar(&userType, "user-type", "Normal", "user type: Normal|Doctor")
	return register
}

func newLogoutCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the persisted session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			if err := app.SessionCLI.Logout(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newProfileCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			p, err := app.SessionCLI.Profile(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "name: %s\nemail: %s\nrole: %s\n", p.Name, p.Email, p.Role)
			if p.CreatedAt != "" {
				_, _ = fmt.Fprintf(w, "joined: %s\n", p.CreatedAt)
			}
			if p.HasClaims {
				_, _ = fmt.Fprintf(w, "token_subject: %s\ntoken_expires: %s expired=%t\n", p.Subject, p.ExpiresAt.Format(time.RFC3339), p.Expired)
			}
			return nil
		},
	}
}

func newRecordCmd(g *globals) *cobra.Command {
	var duration time.Duration
	var noUpload bool
	record := &cobra.Command{
		Use:   "record --duration <d>",
		Short: "Capture from the microphone and upload the recording",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if duration <= 0 {
				return fmt.Errorf("--duration must be positive")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			app, cleanup, err := loadApp(ctx, g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			started, err := app.RecordingCLI.Start(ctx)
			if err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(err, "Could not start recording"))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recording to %s (ctrl+c to stop early)\n", started.Path)

			select {
			case <-ctx.Done():
			case <-time.After(duration):
			}
			// The capture must be finalized even after an interrupt.
			stopped, err := app.RecordingCLI.Stop(context.WithoutCancel(ctx))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stopped after %ds\n", stopped.ElapsedSeconds)
			if noUpload {
				return nil
			}
			out, err := app.RecordingCLI.Upload(context.WithoutCancel(ctx))
			if err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(err, "Upload failed"))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%ds)\n", out.Title, out.DurationSeconds)
			return nil
		},
	}
	record.Flags().DurationVar(&duration, "duration", 15*time.Second, "capture length")
	record.Flags().BoolVar(&noUpload, "no-upload", false, "keep the capture without uploading it")
	return record
}

func newRecordingsCmd(g *globals) *cobra.Command {
	recordings := &cobra.Command{Use: "recordings", Short: "Manage uploaded recordings"}

	var cached bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List recordings, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if cached {
				out, err := app.RecordingCLI.ListCached(cmd.Context())
				if err != nil {
					return err
				}
				if out.SyncedAt.IsZero() {
					_, _ = fmt.Fprintln(w, "no cached listing")
					return nil
				}
				_, _ = fmt.Fprintf(w, "cached at %s\n", out.SyncedAt.Format(time.RFC3339))
				if len(out.Recordings) == 0 {
					_, _ = fmt.Fprintln(w, "no recordings")
				}
				for _, r := range out.Recordings {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%.0fs\t%s\n", r.ID, r.Title, r.Duration, r.CreatedAt)
				}
				return nil
			}
			rows, err := app.RecordingCLI.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(err, "Failed to load recordings"))
			}
			if len(rows) == 0 {
				_, _ = fmt.Fprintln(w, "no recordings")
				return nil
			}
			for _, r := range rows {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%.0fs\t%s\n", r.ID, r.Title, r.Duration, r.CreatedAt)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&cached, "cached", false, "show the last synced listing without a network call")

	var uploadDuration time.Duration
	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an existing audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			if _, err := app.RecordingCLI.Attach(cmd.Context(), args[0], uploadDuration); err != nil {
				return err
			}
			out, err := app.RecordingCLI.Upload(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(err, "Upload failed"))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s as %s (%ds)\n", args[0], out.Title, out.DurationSeconds)
			return nil
		},
	}
	upload.Flags().DurationVar(&uploadDuration, "duration", 0, "recording length reported to the server")

	bulk := &cobra.Command{
		Use:   "bulk-upload",
		Short: "Ask the server to import its pending recordings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			out, err := app.RecordingCLI.BulkUpload(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(err, "Bulk upload failed"))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d recordings\n", out.Count)
			return nil
		},
	}

	var deleteID string
	del := &cobra.Command{
		Use:   "delete --id <id>",
		Short: "Delete a recording",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlag("id", deleteID); err != nil {
				return err
			}
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			if err := app.RecordingCLI.Delete(cmd.Context(), deleteID); err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(err, "Delete failed"))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", deleteID)
			return nil
		},
	}
	del.Flags().StringVar(&deleteID, "id", "", "recording id")

	recordings.AddCommand(list, upload, bulk, del)
	return recordings
}

func newAnalyzeCmd(g *globals) *cobra.Command {
	var id, name string
	analyze := &cobra.Command{
		Use:   "analyze --id <id>",
		Short: "Show the analysis of a recording",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlag("id", id); err != nil {
				return err
			}
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			screen := app.AnalysisCLI.Fetch(cmd.Context(), id, name)
			if screen.Err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(screen.Err, "Failed to load analysis"))
			}
			a := screen.Analysis
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "recording: %s\nbpm: %.0f\nstatus: %s\necg_samples: %d\n", screen.RecordingName, a.BPM, a.Status, len(a.ECG))
			for _, p := range a.Probabilities {
				_, _ = fmt.Fprintf(w, "%s: %d%%\n", p.Condition, p.Percent)
			}
			return nil
		},
	}
	analyze.Flags().StringVar(&id, "id", "", "recording id")
	analyze.Flags().StringVar(&name, "name", "", "recording display name")
	return analyze
}

func newChatCmd(g *globals) *cobra.Command {
	var id, name string
	chat := &cobra.Command{
		Use:   "chat --id <id> <message...>",
		Short: "Ask the assistant about a recording",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlag("id", id); err != nil {
				return err
			}
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			screen := app.AnalysisCLI.Fetch(cmd.Context(), id, name)
			if screen.Err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(screen.Err, "Failed to load analysis"))
			}
			w := cmd.OutOrStdout()
			conversation := app.AnalysisCLI.OpenChat(cmd.Context(), screen.RecordingName, screen.Analysis)
			for _, m := range conversation.Messages {
				_, _ = fmt.Fprintf(w, "%s: %s\n", m.Sender, m.Text)
			}
			text := strings.Join(args, " ")
			sent, ok := app.AnalysisCLI.Compose(cmd.Context(), text)
			if !ok {
				return fmt.Errorf("message is empty")
			}
			_, _ = fmt.Fprintf(w, "%s: %s\n", sent.Sender, sent.Text)
			reply, err := app.AnalysisCLI.Reply(cmd.Context(), text)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(w, "%s: %s\n", reply.Sender, reply.Text)
			return nil
		},
	}
	chat.Flags().StringVar(&id, "id", "", "recording id")
	chat.Flags().StringVar(&name, "name", "", "recording display name")
	return chat
}

func newDevicesCmd(g *globals) *cobra.Command {
	devices := &cobra.Command{Use: "devices", Short: "Bluetooth stethoscope discovery"}

	var window time.Duration
	scan := &cobra.Command{
		Use:   "scan",
		Short: "Scan for nearby devices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			found, err := app.DeviceCLI.Scan(cmd.Context(), window)
			if err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(err, "Scan failed"))
			}
			if len(found) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no devices found")
				return nil
			}
			for _, d := range found {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.ID, d.Name)
			}
			return nil
		},
	}
	scan.Flags().DurationVar(&window, "window", 0, "scan duration (defaults to the configured window)")

	var connectID string
	connect := &cobra.Command{
		Use:   "connect --id <address>",
		Short: "Connect to a scanned device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlag("id", connectID); err != nil {
				return err
			}
			app, cleanup, err := loadApp(cmd.Context(), g, false)
			defer cleanup()
			if err != nil {
				return err
			}
			d, err := app.DeviceCLI.Connect(cmd.Context(), connectID)
			if err != nil {
				return fmt.Errorf("%s", apperrors.UserMessage(err, "Connection failed"))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "connected to %s (%s)\n", d.Name, d.ID)
			return nil
		},
	}
	connect.Flags().StringVar(&connectID, "id", "", "device address")

	devices.AddCommand(scan, connect)
	return devices
}

func newDevServerCmd(g *globals) *cobra.Command {
	var addr, secret, inbox string
	server := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory backend for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("AIRPULSE_DEV_SECRET")
			}
			if err := requireFlag("secret", secret); err != nil {
				return err
			}
			cfg, err := config.New(g.stateDir)
			if err != nil {
				return err
			}
			srv, err := devserver.New(devserver.Config{
				Secret:   secret,
				InboxDir: inbox,
				Logger:   logging.New(cfg.LogLevel, os.Stderr).Named("devserver"),
			})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "serving http://%s/api\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	server.Flags().StringVar(&addr, "addr", "localhost:5000", "listen address")
	server.Flags().StringVar(&secret, "secret", "", "token signing secret (or AIRPULSE_DEV_SECRET)")
	server.Flags().StringVar(&inbox, "inbox", "", "directory imported by bulk-upload")
	return server
}
