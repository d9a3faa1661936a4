// Package prospect builds a vendor-specific sales analysis for a customer
// company by running four fixed personas in sequence against a text-generation
// collaborator that can search the web mid-generation.
//
// # Pipeline
//
// The stages run in fixed order, each one fed the accumulated context of the
// stages before it:
//
//  1. Info Extractor — profiles the company behind the supplied website URL.
//  2. Pain Point Analyzer — derives IT pain points and desired outcomes.
//  3. Industry Challenges Identifier — maps industry-wide challenges and trends.
//  4. Solution Reporter — recommends the vendor's products against everything above.
//
// Between stages 3 and 4 the operator supplies the vendor ("selling company")
// name. Stage results accumulate into a CombinedOutput which is written to
// combined_analysis.json on every exit path, so partial work is never lost.
//
// Stage 3 is deliberately the only stage whose extraction failure does not
// abort the run: its slot is filled with a literal {"error": "Failed to parse"}
// placeholder and the pipeline continues.
//
// # Extraction
//
// Model output is not guaranteed to be pure JSON. Extract strips code fences,
// locates the outermost {...} span, and strict-parses it, reporting
// NoJSONFoundError or MalformedJSONError as ordinary error values. Callers
// treat extraction failure as an expected outcome, not a crash.
//
// # Collaborators
//
// Implement Generator to connect a language model:
//
//	type Generator interface {
//	    Generate(ctx context.Context, persona Persona, messages []Message) (string, error)
//	}
//
// Implement SearchProvider to supply a search backend the personas may call:
//
//	type SearchProvider interface {
//	    Search(ctx context.Context, query string) (*SearchResponse, error)
//	}
//
// The llm and search sub-packages provide OpenAI and Tavily implementations.
//
// # Basic Usage
//
//	gen := llm.NewClient(openaiKey,
//	    llm.WithSearchProvider(search.NewTavily(tavilyKey)),
//	)
//	p := prospect.New(
//	    prospect.WithGenerator(gen),
//	    prospect.WithPrompter(myPrompter),
//	)
//	err := p.Run(ctx, "https://customer.example.com")
package prospect
