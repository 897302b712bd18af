package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mindboost/internal/bootstrap"
	"mindboost/internal/gateway"
	"mindboost/internal/platform/config"
	apperrors "mindboost/internal/platform/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir string
	server  string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "mindboost",
		Short:         "Study assistant: turn documents into knowledge graphs and ask questions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", config.DefaultDataDir(), "directory for session, history and notes")
	root.PersistentFlags().StringVar(&flags.server, "server", "", "backend base URL (default from config, MINDBOOST_SERVER or "+config.DefaultServer+")")

	root.AddCommand(newLoginCmd(flags))
	root.AddCommand(newLogoutCmd(flags))
	root.AddCommand(newStatusCmd(flags))
	root.AddCommand(newConvertCmd(flags))
	root.AddCommand(newAskCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	root.AddCommand(newTUICmd(flags))
	return root
}

// withApp builds the application for one command and tears it down after.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(*bootstrap.App) error) error {
	cfg, err := config.New(flags.dataDir, config.Overrides{Server: flags.server})
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), 5*time.Second)
		defer cancel()
		_ = app.Close(ctx)
	}()
	return fn(app)
}

// requireSession is the command-line counterpart of the dashboard gate.
func requireSession(app *bootstrap.App) error {
	if !app.AuthCLI.IsAuthenticated() {
		return fmt.Errorf("%w: run `mindboost login` first", apperrors.ErrNotAuthenticated)
	}
	return nil
}

// describe turns backend failures into the message a user should read.
func describe(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if gateway.IsUnauthorized(err) {
		return fmt.Errorf("%s (session rejected, run `mindboost login` again)", apperrors.Message(err, fallback))
	}
	var be *apperrors.BackendError
	if errors.As(err, &be) {
		return errors.New(apperrors.Message(err, fallback))
	}
	return err
}

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				v, err := prompt(cmd.OutOrStdout(), in, "Username: ")
				if err != nil {
					return err
				}
				username = v
			}
			if password == "" {
				v, err := promptSecret(cmd.OutOrStdout(), in, "Password: ")
				if err != nil {
					return err
				}
				password = v
			}
			return withApp(cmd, flags, func(app *bootstrap.App) error {
				out, err := app.AuthCLI.Login(cmd.Context(), username, password)
				if err != nil {
					return err
				}
				subject := out.Subject
				if subject == "" {
					subject = username
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", subject)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(app *bootstrap.App) error {
				if err := app.AuthCLI.Logout(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
				return nil
			})
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(app *bootstrap.App) error {
				st, err := app.AuthCLI.Status(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "authenticated=%t\n", st.Authenticated)
				if st.Subject != "" {
					_, _ = fmt.Fprintf(w, "subject=%s\n", st.Subject)
				}
				if !st.ExpiresAt.IsZero() {
					_, _ = fmt.Fprintf(w, "expires=%s\n", st.ExpiresAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}
}

func newConvertCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Upload a document and print its knowledge graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(app *bootstrap.App) error {
				if err := requireSession(app); err != nil {
					return err
				}
				doc, graph, err := app.StudyCLI.Convert(cmd.Context(), args[0])
				if err != nil {
					return describe(err, gateway.FallbackConvert)
				}
				w := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(graph)
				}
				_, _ = fmt.Fprintf(w, "document=%s kind=%s pages=%d\n", doc.DisplayName, doc.Kind, doc.Pages)
				_, _ = fmt.Fprintf(w, "graph: %s\n", graph.Summary)
				if !graph.Recognized {
					_, _ = fmt.Fprintln(w, graph.Raw)
					return nil
				}
				for _, n := range graph.Nodes {
					_, _ = fmt.Fprintf(w, "node\t%s\t%s\n", n.ID, n.Label)
				}
				for _, l := range graph.Links {
					_, _ = fmt.Fprintf(w, "link\t%s\t%s\n", l.Source, l.Target)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the graph as JSON")
	return cmd
}

func newAskCmd(flags *globalFlags) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the study assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return withApp(cmd, flags, func(app *bootstrap.App) error {
				if err := requireSession(app); err != nil {
					return err
				}
				answer, err := app.StudyCLI.Ask(cmd.Context(), question)
				if err != nil {
					return describe(err, gateway.FallbackAsk)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
				if !save {
					return nil
				}
				out, err := app.StudyCLI.SaveAnswer(cmd.Context(), answer.Question, answer.Text)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "saved %s\n", out.Path)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "save the answer as a markdown note")
	return cmd
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversions and questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(app *bootstrap.App) error {
				items, err := app.StudyCLI.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				for _, a := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%q\t%s\n",
						a.CreatedAt.Local().Format("2006-01-02 15:04"), a.Kind, a.Outcome, a.Subject, a.Summary)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, bootstrap.RunTUI)
		},
	}
}

func prompt(w io.Writer, in *bufio.Reader, label string) (string, error) {
	_, _ = fmt.Fprint(w, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal and falls back to
// a plain line read for piped input.
func promptSecret(w io.Writer, in *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(w, in, label)
	}
	_, _ = fmt.Fprint(w, label)
	b, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
