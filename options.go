package prospect

import "go.uber.org/zap"

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithGenerator sets the text-generation collaborator. Required.
func WithGenerator(g Generator) Option {
	return func(p *Pipeline) { p.generator = g }
}

// WithPrompter sets the source of operator input. Required.
func WithPrompter(pr Prompter) Option {
	return func(p *Pipeline) { p.prompter = pr }
}

// WithLogger sets the diagnostic logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithConsole redirects operator-facing messages, mainly for tests.
func WithConsole(c consoleWriter) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.console = c
		}
	}
}

// WithOutputPath overrides where the combined analysis is written.
func WithOutputPath(path string) Option {
	return func(p *Pipeline) {
		if path != "" {
			p.outputPath = path
		}
	}
}

// WithModel overrides the model identifier for every persona.
func WithModel(model string) Option {
	return func(p *Pipeline) { p.model = model }
}
