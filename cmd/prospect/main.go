// Command prospect runs the interactive company-intelligence pipeline:
// it prompts for a customer website URL and a vendor name, runs the four
// analysis personas, and writes combined_analysis.json in the working
// directory. Diagnostics go to debug.log.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sellside/prospect"
	"github.com/sellside/prospect/fetch"
	"github.com/sellside/prospect/llm"
	"github.com/sellside/prospect/search"
)

const logPath = "debug.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "prospect: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	openaiKey := os.Getenv("OPENAI_API_KEY")
	tavilyKey := os.Getenv("TAVILY_API_KEY")
	if openaiKey == "" || tavilyKey == "" {
		return fmt.Errorf("configuration error: OPENAI_API_KEY and TAVILY_API_KEY must be set")
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	fmt.Println("Welcome to the IT Solutions Sales Team!")

	prompter := &stdinPrompter{reader: bufio.NewReader(os.Stdin)}
	companyURL, err := prompter.Prompt("Please enter the customer's company website URL: ")
	if err != nil {
		return fmt.Errorf("reading company URL: %w", err)
	}

	generator := llm.NewClient(openaiKey,
		llm.WithSearchProvider(search.NewTavily(tavilyKey)),
		llm.WithFetchProvider(fetch.NewPage()),
		llm.WithLogger(logger),
	)

	pipeline := prospect.New(
		prospect.WithGenerator(generator),
		prospect.WithPrompter(prompter),
		prospect.WithLogger(logger),
	)

	if err := pipeline.Run(context.Background(), companyURL); err != nil {
		// Run already told the operator which stage failed and saved the
		// partial document; the log has the detail.
		logger.Error("run aborted", zap.Error(err))
		return err
	}
	return nil
}

// newLogger builds the append-only diagnostic log. The file is human-oriented,
// so use the console encoder rather than JSON.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	return cfg.Build()
}

// stdinPrompter reads operator answers line by line from standard input.
type stdinPrompter struct {
	reader *bufio.Reader
}

func (p *stdinPrompter) Prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := p.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
