package prospect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator replays canned responses keyed by persona name and
// records every call it receives.
type scriptedGenerator struct {
	responses map[string]string
	errs      map[string]error
	panicOn   string

	calls []generatorCall
}

type generatorCall struct {
	persona  string
	messages []Message
}

func (g *scriptedGenerator) Generate(_ context.Context, persona Persona, messages []Message) (string, error) {
	g.calls = append(g.calls, generatorCall{persona: persona.Name, messages: messages})
	if persona.Name == g.panicOn {
		panic(fmt.Sprintf("scripted panic in %s", persona.Name))
	}
	if err := g.errs[persona.Name]; err != nil {
		return "", err
	}
	resp, ok := g.responses[persona.Name]
	if !ok {
		return "", errors.New("no scripted response available")
	}
	return resp, nil
}

func (g *scriptedGenerator) personaOrder() []string {
	order := make([]string, 0, len(g.calls))
	for _, c := range g.calls {
		order = append(order, c.persona)
	}
	return order
}

type fakePrompter struct {
	answer string
	called bool
}

func (f *fakePrompter) Prompt(string) (string, error) {
	f.called = true
	return f.answer, nil
}

type discardConsole struct{}

func (discardConsole) Printf(string, ...any) {}

func happyResponses() map[string]string {
	return map[string]string{
		InfoExtractor.Name:                `{"company_name": "Acme Manufacturing", "industry": "manufacturing"}`,
		PainPointAnalyzer.Name:            "```json\n{\"pain_points\": [{\"point\": \"legacy ERP\"}], \"desired_outcomes\": []}\n```",
		IndustryChallengesIdentifier.Name: `{"industry_challenges": [], "trends": []}`,
		SolutionReporter.Name:             `{"selling_company": "Initech", "solutions": [{"product": "CloudSuite"}]}`,
	}
}

func runPipeline(t *testing.T, gen *scriptedGenerator, prompter *fakePrompter) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "combined_analysis.json")
	p := New(
		WithGenerator(gen),
		WithPrompter(prompter),
		WithOutputPath(path),
		WithConsole(discardConsole{}),
	)
	err := p.Run(context.Background(), "https://acme.example.com")
	return path, err
}

func readOutput(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "output document must be written on every exit path")
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestRunAllStagesSucceed(t *testing.T) {
	gen := &scriptedGenerator{responses: happyResponses()}
	prompter := &fakePrompter{answer: "Initech"}

	path, err := runPipeline(t, gen, prompter)
	require.NoError(t, err)

	doc := readOutput(t, path)
	assert.Len(t, doc, 5)
	assert.Contains(t, doc, "company_info")
	assert.Contains(t, doc, "pain_points")
	assert.Contains(t, doc, "industry_challenges")
	assert.Equal(t, "Initech", doc["selling_company"])
	assert.Contains(t, doc, "solutions")

	assert.True(t, prompter.called)
	assert.Equal(t, []string{
		InfoExtractor.Name,
		PainPointAnalyzer.Name,
		IndustryChallengesIdentifier.Name,
		SolutionReporter.Name,
	}, gen.personaOrder())
}

func TestRunPersistsKeysInStageOrder(t *testing.T) {
	gen := &scriptedGenerator{responses: happyResponses()}

	path, err := runPipeline(t, gen, &fakePrompter{answer: "Initech"})
	require.NoError(t, err)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	text := string(data)

	keys := []string{"company_info", "pain_points", "industry_challenges", "selling_company", "solutions"}
	last := -1
	for _, key := range keys {
		idx := strings.Index(text, `"`+key+`"`)
		require.GreaterOrEqual(t, idx, 0, "missing key %q", key)
		assert.Greater(t, idx, last, "key %q out of order", key)
		last = idx
	}
}

func TestRunSolutionStageSeesAccumulatedContext(t *testing.T) {
	gen := &scriptedGenerator{responses: happyResponses()}

	_, err := runPipeline(t, gen, &fakePrompter{answer: "Initech"})
	require.NoError(t, err)

	final := gen.calls[len(gen.calls)-1]
	require.Equal(t, SolutionReporter.Name, final.persona)

	var joined strings.Builder
	for _, m := range final.messages {
		joined.WriteString(m.Content)
	}
	assert.Contains(t, joined.String(), "Acme Manufacturing")
	assert.Contains(t, joined.String(), "legacy ERP")
	assert.Contains(t, joined.String(), `"selling_company":"Initech"`)
	assert.Contains(t, joined.String(), "Recommend solutions from Initech")
}

func TestRunChallengeExtractionFailureTolerated(t *testing.T) {
	responses := happyResponses()
	responses[IndustryChallengesIdentifier.Name] = "Sorry, I cannot comply."
	gen := &scriptedGenerator{responses: responses}

	path, err := runPipeline(t, gen, &fakePrompter{answer: "Initech"})
	require.NoError(t, err, "stage 3 extraction failure must not abort the run")

	doc := readOutput(t, path)
	assert.Len(t, doc, 5)
	assert.Equal(t, map[string]any{"error": "Failed to parse"}, doc["industry_challenges"])
	assert.Contains(t, doc, "solutions")
	assert.Len(t, gen.calls, 4, "stage 4 must still run")
}

func TestRunProfileExtractionFailureAborts(t *testing.T) {
	responses := happyResponses()
	responses[InfoExtractor.Name] = "I could not find anything."
	gen := &scriptedGenerator{responses: responses}
	prompter := &fakePrompter{answer: "Initech"}

	path, err := runPipeline(t, gen, prompter)
	require.Error(t, err)
	assert.True(t, IsExtractionError(err))

	doc := readOutput(t, path)
	assert.Empty(t, doc, "nothing reached the document before the failure")
	assert.Len(t, gen.calls, 1, "no later stage may run")
	assert.False(t, prompter.called)
}

func TestRunPainPointExtractionFailureAborts(t *testing.T) {
	responses := happyResponses()
	responses[PainPointAnalyzer.Name] = "{\"pain_points\": [,]}"
	gen := &scriptedGenerator{responses: responses}

	path, err := runPipeline(t, gen, &fakePrompter{answer: "Initech"})
	require.Error(t, err)
	assert.True(t, IsExtractionError(err))

	doc := readOutput(t, path)
	assert.Len(t, doc, 1)
	assert.Contains(t, doc, "company_info")
	assert.Len(t, gen.calls, 2)
}

func TestRunGenerationErrorAbortsEvenInStageThree(t *testing.T) {
	// Only extraction failures are tolerated in stage 3; a transport error
	// still aborts.
	gen := &scriptedGenerator{
		responses: happyResponses(),
		errs:      map[string]error{IndustryChallengesIdentifier.Name: errors.New("connection reset")},
	}
	prompter := &fakePrompter{answer: "Initech"}

	path, err := runPipeline(t, gen, prompter)
	require.Error(t, err)
	assert.False(t, IsExtractionError(err))

	doc := readOutput(t, path)
	assert.Len(t, doc, 2)
	assert.Contains(t, doc, "company_info")
	assert.Contains(t, doc, "pain_points")
	assert.False(t, prompter.called)
}

func TestRunRecoversPanicAndSavesPartialOutput(t *testing.T) {
	gen := &scriptedGenerator{
		responses: happyResponses(),
		panicOn:   PainPointAnalyzer.Name,
	}

	path, err := runPipeline(t, gen, &fakePrompter{answer: "Initech"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")

	doc := readOutput(t, path)
	assert.Len(t, doc, 1)
	assert.Contains(t, doc, "company_info")
}

func TestRunRequiresCollaborators(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined_analysis.json")

	p := New(WithPrompter(&fakePrompter{}), WithOutputPath(path))
	err := p.Run(context.Background(), "https://acme.example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator")

	p = New(WithGenerator(&scriptedGenerator{}), WithOutputPath(path))
	err = p.Run(context.Background(), "https://acme.example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompter")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "misconfiguration is rejected before any work or output")
}

func TestRunModelOverride(t *testing.T) {
	var models []string
	gen := &recordingGenerator{inner: &scriptedGenerator{responses: happyResponses()}, models: &models}

	path := filepath.Join(t.TempDir(), "out.json")
	p := New(
		WithGenerator(gen),
		WithPrompter(&fakePrompter{answer: "Initech"}),
		WithOutputPath(path),
		WithConsole(discardConsole{}),
		WithModel("gpt-4o-mini"),
	)
	require.NoError(t, p.Run(context.Background(), "https://acme.example.com"))

	require.Len(t, models, 4)
	for _, m := range models {
		assert.Equal(t, "gpt-4o-mini", m)
	}
}

type recordingGenerator struct {
	inner  *scriptedGenerator
	models *[]string
}

func (r *recordingGenerator) Generate(ctx context.Context, persona Persona, messages []Message) (string, error) {
	*r.models = append(*r.models, persona.Model)
	return r.inner.Generate(ctx, persona, messages)
}
