package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/norcalsbdc/advisorflow/engine"
	"github.com/norcalsbdc/advisorflow/example/loan_prep"
	"github.com/norcalsbdc/advisorflow/llm"
	"github.com/norcalsbdc/advisorflow/registry"
	"github.com/norcalsbdc/advisorflow/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// script is a canned client conversation
var script = []string{
	"start",
	"About $150,000 to buy a second delivery van and cover six months of payroll.",
	"next",
	"Four years in business, two owners at 50% each, one equipment loan.",
	"next",
	"next",
	"skip",
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	def, err := loan_prep.NewLoanPrepWorkflow()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build loan prep workflow")
	}

	source := registry.NewMemorySource()
	if err := source.AddDefinition(def); err != nil {
		log.Fatal().Err(err).Msg("Failed to register workflow")
	}

	// Local Ollama by default; set OPENAI_API_KEY to use OpenAI
	opts := []llm.ClientOption{
		llm.WithBaseURL(llm.DefaultOllamaBaseURL),
		llm.WithModel("llama3.1"),
		llm.WithLogger(log.Logger),
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		opts = []llm.ClientOption{llm.WithAPIKey(key), llm.WithLogger(log.Logger)}
	}

	eng := engine.NewEngine(
		registry.New(source, registry.WithLogger(log.Logger)),
		store.NewMemoryStore(),
		llm.NewClient(opts...),
		engine.WithLogger(log.Logger),
	)

	conversationID := eng.NewConversationID()
	for i, message := range script {
		req := engine.TurnRequest{
			ConversationID: conversationID,
			Message:        message,
			OnToken:        func(token string) { fmt.Print(token) },
		}
		if i == 0 {
			req.WorkflowID = loan_prep.WorkflowID
		}

		fmt.Printf("\n> %s\n", message)
		result, err := eng.ProcessTurn(ctx, req)
		fmt.Println()
		if err != nil {
			log.Fatal().Err(err).Msg("Turn failed")
		}

		if result.Progress != nil {
			fmt.Printf("[%d/%d %d%%] %s\n", result.Progress.CurrentStep, result.Progress.TotalSteps,
				result.Progress.Percent, result.Progress.CurrentTitle)
		}
	}
}
