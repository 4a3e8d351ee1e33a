package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/logbot/logbot/internal/app"
	"github.com/logbot/logbot/internal/chat"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		interactive bool
		figuresDir  string
	)
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question, or start a chat with -i",
		Long: `Ask a question about the logs and print the answer, the SQL that was
run, the result table and the charts chosen for it.

Examples:
  logbot ask "Which functions failed?"
  logbot ask -i
  logbot ask --figures ./charts "Plot the bytes sent per source IP"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive && len(args) == 0 {
				return fmt.Errorf("a question is required unless -i is set")
			}
			cfg, err := opts.load(true)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Warn().Err(err).Msg("close clients")
				}
			}()

			sess := a.Controller.Store().Create()
			out := cmd.OutOrStdout()
			if !interactive {
				reply, err := a.Controller.HandleTurn(ctx, sess.ID, strings.Join(args, " "))
				if err != nil {
					return err
				}
				RenderReply(out, reply)
				return writeFigures(figuresDir, 1, reply)
			}
			return repl(ctx, cmd.InOrStdin(), out, a.Controller, sess, figuresDir)
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "chat until EOF, exit or quit")
	cmd.Flags().StringVar(&figuresDir, "figures", "", "write chart figures as Plotly JSON into this directory")
	return cmd
}

type turnHandler interface {
	HandleTurn(ctx context.Context, sessionID, question string) (*chat.Reply, error)
}

// repl reads one question per line. /history prints the transcript.
func repl(ctx context.Context, in io.Reader, out io.Writer, h turnHandler, sess *chat.Session, figuresDir string) error {
	fmt.Fprintln(out, styleSQL.Render("Ask about vpc_logs, access_logs or execution_logs. /history shows the chat, exit quits."))
	sc := bufio.NewScanner(in)
	turn := 0
	for {
		fmt.Fprint(out, styleUser.Render("logbot> "))
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		q := strings.TrimSpace(sc.Text())
		switch q {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "/history":
			RenderTranscript(out, sess.Turns())
			continue
		}

		reply, err := h.HandleTurn(ctx, sess.ID, q)
		if err != nil {
			return err
		}
		RenderReply(out, reply)
		turn++
		if err := writeFigures(figuresDir, turn, reply); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// writeFigures saves each figure of reply as turn-N-chart-M.json.
func writeFigures(dir string, turn int, reply *chat.Reply) error {
	if dir == "" || len(reply.Figures) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, fig := range reply.Figures {
		data, err := json.MarshalIndent(fig, "", "  ")
		if err != nil {
			return fmt.Errorf("encode figure: %w", err)
		}
		name := filepath.Join(dir, fmt.Sprintf("turn-%d-chart-%d.json", turn, i+1))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
