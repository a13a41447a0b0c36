package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	coordinatorx "github.com/D-Harshith/ResolveAI/agent/agents/coordinator"
	historyx "github.com/D-Harshith/ResolveAI/agent/history"
	knowledgex "github.com/D-Harshith/ResolveAI/agent/knowledge"
	toolx "github.com/D-Harshith/ResolveAI/agent/tool"
	configx "github.com/D-Harshith/ResolveAI/pkg/config"
	geminix "github.com/D-Harshith/ResolveAI/pkg/gemini"
	_ "github.com/D-Harshith/ResolveAI/pkg/logger/autoload"
)

type AppConfig struct {
	MaxToolRounds int `envconfig:"MAX_TOOL_ROUNDS" split_words:"true" default:"8"`
}

var emailInputPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)

func main() {
	ctx := context.Background()

	appCfg := configx.MustLoad[AppConfig]("")
	geminiCfg := configx.MustLoad[geminix.Config]("GEMINI")
	storeCfg := configx.MustLoad[historyx.Config]("HISTORY")

	client := geminix.NewClient(*geminiCfg)
	if client == nil {
		log.Fatal().Msg("GEMINI_API_KEY is not set")
	}

	store, err := historyx.Open(*storeCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open history database")
	}
	defer store.Close()

	// Init failure is non-fatal: the session still starts, but every store
	// operation will surface a storage error until the table exists.
	if err := store.Init(ctx); err != nil {
		log.Error().Err(err).Msg("history database initialization failed")
	}

	executor, err := toolx.NewExecutor(toolx.Dependencies{
		History:  store,
		Policies: knowledgex.NewBase(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build tool executor")
	}

	coord, err := coordinatorx.New(client, coordinatorx.Config{
		Model:         geminiCfg.Model,
		Temperature:   geminiCfg.Temperature,
		MaxToolRounds: appCfg.MaxToolRounds,
	}, executor)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build coordinator")
	}

	runSession(ctx, coord, os.Stdin, os.Stdout)
}

// runSession drives the line-based chat: collect a name and a valid email
// once, then relay each line as a turn until the exit keyword.
func runSession(ctx context.Context, coord *coordinatorx.Coordinator, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "Welcome! Please enter your information to begin")

	name := readLine(scanner, out, "Your Name: ")

	var email string
	for {
		email = readLine(scanner, out, "Your Email: ")
		if emailInputPattern.MatchString(email) {
			break
		}
		fmt.Fprintln(out, "Please enter a valid email address")
	}

	fmt.Fprintln(out, "\nChat started. Type 'quit' to exit.")

	first := true
	for {
		text := readLine(scanner, out, "\nYou: ")
		if strings.EqualFold(text, "quit") {
			return
		}

		reply, err := coord.HandleTurn(ctx, coordinatorx.TurnRequest{
			Name:    name,
			Email:   email,
			Message: text,
			First:   first,
		})
		first = false
		if err != nil {
			log.Error().Err(err).Msg("turn processing failed")
			fmt.Fprintln(out, "Assistant: Sorry, I ran into a problem handling that. How else can I help you?")
			continue
		}
		fmt.Fprintf(out, "Assistant: %s\n", reply)
	}
}

func readLine(scanner *bufio.Scanner, out io.Writer, promptText string) string {
	fmt.Fprint(out, promptText)
	if !scanner.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(scanner.Text())
}
