package prospect

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Pipeline runs the four analysis stages in fixed order, threading each
// stage's parsed output into the context of the next. It owns the single
// CombinedOutput accumulator; nothing about a run is concurrent.
type Pipeline struct {
	generator  Generator
	prompter   Prompter
	logger     *zap.Logger
	console    consoleWriter
	outputPath string
	model      string
}

// New constructs a Pipeline with optional configuration. A Generator and a
// Prompter must be supplied before Run is called.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:     zap.NewNop(),
		console:    stdoutConsole{},
		outputPath: DefaultOutputPath,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline for the given customer company URL.
//
// Whatever has accumulated is saved to the output path on every exit path:
// normal completion, stage failure, and panic. Stages 1, 2, and 4 abort the
// run when their extraction fails; stage 3 alone records a literal
// {"error": "Failed to parse"} placeholder and continues, since industry
// challenge data is nice to have rather than load-bearing.
func (p *Pipeline) Run(ctx context.Context, companyURL string) (err error) {
	if p.generator == nil {
		return eris.New("generator is not configured")
	}
	if p.prompter == nil {
		return eris.New("prompter is not configured")
	}

	out := &CombinedOutput{}
	log := p.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("company_url", companyURL),
	)
	log.Info("starting run")

	defer func() {
		if r := recover(); r != nil {
			log.Error("run panicked", zap.Any("panic", r), zap.Stack("stack"))
			p.console.Printf("An unexpected error occurred: %v\n", r)
			err = eris.Errorf("run panicked: %v", r)
		}
		if saveErr := out.Save(p.outputPath); saveErr != nil {
			log.Error("saving combined analysis", zap.Error(saveErr))
			if err == nil {
				err = saveErr
			}
			return
		}
		log.Info("combined analysis saved", zap.String("path", p.outputPath))
		p.console.Printf("\nAnalysis has been saved to '%s'\n", p.outputPath)
	}()

	// Stage 1: company profile.
	profile, err := p.runStage(ctx, log, p.personaFor(InfoExtractor), profileMessages(companyURL))
	if err != nil {
		p.reportFailure(log, "company info", err)
		return err
	}
	out.CompanyInfo = profile

	// Stage 2: pain points, fed the parsed profile.
	msgs, err := painPointMessages(profile)
	if err != nil {
		return eris.Wrap(err, "building pain point context")
	}
	painPoints, err := p.runStage(ctx, log, p.personaFor(PainPointAnalyzer), msgs)
	if err != nil {
		p.reportFailure(log, "pain points", err)
		return err
	}
	out.PainPoints = painPoints

	// Stage 3: industry challenges, fed profile + pain points.
	msgs, err = challengeMessages(profile, painPoints)
	if err != nil {
		return eris.Wrap(err, "building industry challenge context")
	}
	challenges, err := p.runStage(ctx, log, p.personaFor(IndustryChallengesIdentifier), msgs)
	switch {
	case err == nil:
		out.IndustryChallenges = challenges
	case IsExtractionError(err):
		p.reportFailure(log, "industry challenges", err)
		out.IndustryChallenges = map[string]any{"error": "Failed to parse"}
	default:
		p.reportFailure(log, "industry challenges", err)
		return err
	}

	// Operator chooses the vendor between stages 3 and 4.
	sellingCompany, err := p.prompter.Prompt("\nWhat company are you selling for? ")
	if err != nil {
		return eris.Wrap(err, "reading selling company")
	}
	log.Info("selling company chosen", zap.String("selling_company", sellingCompany))
	out.SellingCompany = sellingCompany

	// Stage 4: vendor solutions, fed everything accumulated so far.
	msgs, err = solutionMessages(out, sellingCompany)
	if err != nil {
		return eris.Wrap(err, "building solution context")
	}
	solutions, err := p.runStage(ctx, log, p.personaFor(SolutionReporter), msgs)
	if err != nil {
		p.reportFailure(log, "solutions", err)
		return err
	}
	out.Solutions = solutions

	log.Info("run complete")
	return nil
}

// runStage invokes one persona against the given context, records the raw
// output, and hands it to the extractor. It enforces no cap, timeout, or
// retry of its own; a stalled collaborator stalls the run.
func (p *Pipeline) runStage(ctx context.Context, log *zap.Logger, persona Persona, msgs []Message) (map[string]any, error) {
	stageLog := log.With(zap.String("stage", persona.Name))
	stageLog.Info("running stage", zap.Int("context_messages", len(msgs)))

	raw, err := p.generator.Generate(ctx, persona, msgs)
	if err != nil {
		stageLog.Error("generation failed", zap.Error(err))
		return nil, eris.Wrapf(err, "%s: generation", persona.Name)
	}
	stageLog.Debug("raw stage output", zap.String("raw", raw))

	parsed, err := Extract(raw)
	if err != nil {
		stageLog.Error("extraction failed", zap.Error(err), zap.String("raw", raw))
		return nil, eris.Wrapf(err, "%s: no usable result", persona.Name)
	}
	return parsed, nil
}

// personaFor applies the pipeline-wide model override, if any.
func (p *Pipeline) personaFor(persona Persona) Persona {
	if p.model != "" {
		persona.Model = p.model
	}
	return persona
}

// reportFailure emits the operator-facing message for a failed stage.
func (p *Pipeline) reportFailure(log *zap.Logger, stage string, err error) {
	log.Error("stage failed", zap.String("failed_stage", stage), zap.Error(err))
	if IsExtractionError(err) {
		p.console.Printf("Failed to parse %s. Please check the logs and try again.\n", stage)
		return
	}
	p.console.Printf("An unexpected error occurred while analyzing %s: %v\n", stage, err)
}

// consoleWriter receives the short operator-facing messages. The diagnostic
// detail always goes to the logger, not here.
type consoleWriter interface {
	Printf(format string, args ...any)
}

type stdoutConsole struct{}

func (stdoutConsole) Printf(format string, args ...any) {
	fmt.Printf(format, args...)
}
