package prospect

import "context"

// Capability tags an external operation a persona is allowed to invoke
// during generation. Generators grant tools strictly by these tags.
type Capability string

const (
	// CapabilitySearch lets a persona run web searches mid-generation.
	CapabilitySearch Capability = "search"
	// CapabilityFetch lets a persona read a web page's text content.
	CapabilityFetch Capability = "fetch"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one entry in the ordered context sent to a generation call.
type Message struct {
	Role    Role
	Content string
}

// SearchResult is a single ranked item returned by a SearchProvider.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// SearchResponse carries the ranked results of a query plus the provider's
// synthesized answer, when the backend supports one.
type SearchResponse struct {
	Answer  string
	Results []SearchResult
}

// SearchProvider executes a query and returns results.
type SearchProvider interface {
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

// FetchProvider retrieves readable text content for a URL.
type FetchProvider interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Generator produces text for a persona given an ordered conversation.
// Implementations may invoke the persona's granted capabilities any number
// of times before returning the final message text.
type Generator interface {
	Generate(ctx context.Context, persona Persona, messages []Message) (string, error)
}

// Prompter obtains a line of operator input. The pipeline uses it to ask for
// the selling company between stages 3 and 4.
type Prompter interface {
	Prompt(label string) (string, error)
}
