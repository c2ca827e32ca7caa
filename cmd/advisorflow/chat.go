package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/norcalsbdc/advisorflow"
	"github.com/norcalsbdc/advisorflow/engine"
	"github.com/norcalsbdc/advisorflow/llm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const complianceNote = "Compliance Note: This output is AI-generated and should be carefully reviewed " +
	"before sharing in advising. Always verify recommendations before sharing with clients."

var chatConversationID string

var chatCmd = &cobra.Command{
	Use:   "chat [workflow-id]",
	Short: "Chat in the terminal, optionally inside a guided workflow",
	Long: `Start an interactive conversation. With a workflow id the conversation begins
inside that workflow; type its advance command (default "next") to move on, "skip" to
skip optional sections and its cancel command (default "quit") to leave it.

Lines starting with "/" are local commands:
  /progress   show workflow progress
  /reset      forget the workflow state of this conversation
  /exit       leave the chat`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatConversationID, "conversation", "", "resume a conversation id (default: new id)")
	chatCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	chatCmd.Flags().String("model", "", "model name override")
	chatCmd.Flags().String("store", "", "conversation store backend (memory, redis, dynamodb)")
	_ = viper.BindPFlag("metrics_addr", chatCmd.Flags().Lookup("metrics-addr"))
	_ = viper.BindPFlag("llm.model", chatCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("store.backend", chatCmd.Flags().Lookup("store"))
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	reg := prometheus.NewRegistry()
	eng, err := buildEngine(cfg, d, reg)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	conversationID := chatConversationID
	if conversationID == "" {
		conversationID = eng.NewConversationID()
	}

	s := &chatSession{
		engine:         eng,
		conversationID: conversationID,
		in:             bufio.NewReader(cmd.InOrStdin()),
		out:            cmd.OutOrStdout(),
	}
	if len(args) == 1 {
		s.workflowID = args[0]
	}
	return s.run(ctx)
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("Metrics server stopped")
		}
	}()
	logger.Info().Str("addr", addr).Msg("Serving metrics")
	return srv
}

// chatSession is a terminal conversation loop
type chatSession struct {
	engine         *engine.Engine
	conversationID string
	workflowID     string
	in             *bufio.Reader
	out            io.Writer
	history        []llm.Message
}

func (s *chatSession) run(ctx context.Context) error {
	fmt.Fprintf(s.out, "=== advisorflow chat (%s) ===\n", s.conversationID)

	if s.workflowID != "" {
		state, err := s.engine.StartWorkflow(ctx, s.conversationID, s.workflowID)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Workflow: %s\n\n", state.WorkflowName)
		if resumed(state) {
			s.printProgress(ctx)
		} else if err := s.send(ctx, state.Trigger); err != nil {
			return err
		}
	}

	for {
		fmt.Fprint(s.out, "\n> ")
		line, err := s.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case line == "/exit":
			return nil
		case line == "/progress":
			s.printProgress(ctx)
		case line == "/reset":
			if err := s.engine.ResetConversation(ctx, s.conversationID); err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
			s.history = nil
		default:
			if err := s.send(ctx, line); err != nil {
				return err
			}
		}

		if eof {
			fmt.Fprintln(s.out)
			return nil
		}
	}
}

// resumed reports whether the conversation already has workflow progress
func resumed(state *advisorflow.WorkflowState) bool {
	if state.CurrentStepIndex > 0 || state.Completed {
		return true
	}
	for _, progress := range state.StepData {
		if progress != nil && len(progress.Collected) > 0 {
			return true
		}
	}
	return false
}

// send processes one message. Model and persistence failures are reported and the loop continues.
func (s *chatSession) send(ctx context.Context, message string) error {
	result, err := s.engine.ProcessTurn(ctx, engine.TurnRequest{
		ConversationID: s.conversationID,
		Message:        message,
		History:        s.history,
		OnToken: func(token string) {
			fmt.Fprint(s.out, token)
		},
	})
	fmt.Fprintln(s.out)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Fprintf(s.out, "error: %v\n", err)
		if result == nil {
			return nil
		}
	}

	s.history = append(s.history,
		llm.Message{Role: llm.RoleUser, Content: message},
		llm.Message{Role: llm.RoleAssistant, Content: result.Reply},
	)

	if result.Progress != nil && result.State != nil && result.State.Active {
		p := result.Progress
		fmt.Fprintf(s.out, "\n[%d/%d %d%%] %s\n", p.CurrentStep, p.TotalSteps, p.Percent, p.CurrentTitle)
	}
	for _, a := range result.Actions {
		fmt.Fprintf(s.out, "  (%s) %s\n", a.Value, a.Label)
	}
	if result.ComplianceRequired {
		fmt.Fprintf(s.out, "\n%s\n", complianceNote)
	}
	return nil
}

func (s *chatSession) printProgress(ctx context.Context) {
	progress, err := s.engine.Progress(ctx, s.conversationID)
	if err != nil {
		if errors.Is(err, advisorflow.ErrWorkflowNotFound) {
			fmt.Fprintln(s.out, "No workflow in this conversation.")
			return
		}
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}

	for _, step := range progress.Steps {
		marker := " "
		switch step.Status {
		case advisorflow.StepStatusDone:
			marker = "x"
		case advisorflow.StepStatusActive:
			marker = ">"
		}
		title := step.Title
		if step.SectionNumber != "" {
			title = step.SectionNumber + ". " + title
		}
		fmt.Fprintf(s.out, "  [%s] %s\n", marker, title)
	}
	fmt.Fprintf(s.out, "%d%% complete\n", progress.Percent)
}
