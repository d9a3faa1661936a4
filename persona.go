package prospect

import (
	"encoding/json"
	"fmt"
)

// Persona is a fixed role configuration driving one stage's generation call.
// Instructions double as the prompt and the output-schema description; the
// schema is advisory — ExpectedKeys is used by tests as a fixture, never
// enforced at runtime.
type Persona struct {
	Name         string
	Model        string
	Instructions string
	Capabilities []Capability

	// ExpectedKeys lists the top-level keys the instructions ask for.
	ExpectedKeys []string
}

// Can reports whether the persona declares the given capability.
func (p Persona) Can(c Capability) bool {
	for _, have := range p.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

const defaultModel = "gpt-4o"

// InfoExtractor profiles the customer company from its website and searches.
var InfoExtractor = Persona{
	Name:         "Info Extractor",
	Model:        defaultModel,
	Capabilities: []Capability{CapabilitySearch, CapabilityFetch},
	ExpectedKeys: []string{
		"company_name", "industry", "size", "location", "it_infrastructure",
		"recent_developments", "key_decision_makers", "business_goals",
		"challenges", "competitors", "budget_information",
		"compliance_requirements", "customer_base", "growth_plans",
		"website_keywords", "social_media_presence", "news_mentions",
		"tavily_sources",
	},
	Instructions: `Extract detailed company information from the provided URL, the page content, and search results.
Focus on recent and relevant information about the company's IT infrastructure, size, industry, and recent developments. Size is based off the number of employees at the company and is either small, medium, or large.
Your response MUST ONLY contain a valid JSON object with the following structure, and nothing else:
{
    "company_name": "string",
    "industry": "string",
    "size": "string",
    "location": "string",
    "it_infrastructure": {
        "current_systems": ["string", ...],
        "technologies_used": ["string", ...],
        "recent_upgrades": ["string", ...]
    },
    "recent_developments": ["string", ...],
    "key_decision_makers": ["string", ...],
    "business_goals": ["string", ...],
    "challenges": ["string", ...],
    "competitors": ["string", ...],
    "budget_information": "string",
    "compliance_requirements": ["string", ...],
    "customer_base": "string",
    "growth_plans": "string",
    "website_keywords": ["string", ...],
    "social_media_presence": {
        "platforms": ["string", ...],
        "activity_level": "string"
    },
    "news_mentions": [
        {
            "title": "string",
            "date": "string",
            "summary": "string",
            "url": "string"
        },
        ...
    ],
    "tavily_sources": ["url", ...]
}
Ensure that you fill in as many fields as possible based on the available information. If information for a field is not available, use "Not available" as the value.
Use the fetch_page function to read the company website and the tavily_search function to supplement information not found there.
Include all relevant search result URLs in the 'tavily_sources' field.`,
}

// PainPointAnalyzer derives IT pain points and desired outcomes from the profile.
var PainPointAnalyzer = Persona{
	Name:         "Pain Point Analyzer",
	Model:        defaultModel,
	Capabilities: []Capability{CapabilitySearch},
	ExpectedKeys: []string{"pain_points", "desired_outcomes"},
	Instructions: `Analyze pain points and desired outcomes based on the extracted information and search results.
Use the company information provided by the Info Extractor to craft targeted search queries.
Focus on identifying specific IT-related challenges the company is facing and their desired technological improvements.
Provide a detailed analysis of each pain point and desired outcome, including potential impacts on the business.
Include specific facts, statistics, and quotes from the search results to support your analysis.
Your response MUST be a valid JSON object with the following structure:
{
    "pain_points": [
        {
            "point": "string",
            "description": "string (200-300 words)",
            "impact": "string (100-150 words)",
            "supporting_facts": ["string", ...],
            "sources": ["url", ...]
        },
        ...
    ],
    "desired_outcomes": [
        {
            "outcome": "string",
            "description": "string (200-300 words)",
            "benefit": "string (100-150 words)",
            "supporting_facts": ["string", ...],
            "sources": ["url", ...]
        },
        ...
    ]
}
Ensure each pain point and desired outcome is thoroughly explained and supported by facts from the search results.`,
}

// IndustryChallengesIdentifier maps industry-wide challenges and trends.
var IndustryChallengesIdentifier = Persona{
	Name:         "Industry Challenges Identifier",
	Model:        defaultModel,
	Capabilities: []Capability{CapabilitySearch},
	ExpectedKeys: []string{"industry_challenges", "trends"},
	Instructions: `Identify industry-wide IT challenges based on the extracted information, pain points, and search results.
Use the company information and industry details provided by the Info Extractor to craft targeted search queries.
Focus on recent trends, regulatory changes, and technological advancements affecting the company's specific industry.
Provide a comprehensive analysis of how these challenges might impact the company specifically.
Include detailed examples, case studies, and statistics from the search results to support your analysis.
Your response MUST be a valid JSON object with the following structure:
{
    "industry_challenges": [
        {
            "challenge": "string",
            "description": "string (200-300 words)",
            "impact": "string (100-150 words)",
            "supporting_facts": ["string", ...],
            "sources": ["url", ...]
        },
        ...
    ],
    "trends": [
        {
            "trend": "string",
            "description": "string (200-300 words)",
            "potential_impact": "string (100-150 words)",
            "supporting_facts": ["string", ...],
            "sources": ["url", ...]
        },
        ...
    ]
}
Ensure each challenge and trend is thoroughly explained and supported by specific examples and data from the search results.`,
}

// SolutionReporter recommends the selling company's products against the
// accumulated analysis.
var SolutionReporter = Persona{
	Name:         "Solution Reporter",
	Model:        defaultModel,
	Capabilities: []Capability{CapabilitySearch},
	ExpectedKeys: []string{"selling_company", "solutions"},
	Instructions: `Recommend detailed IT solutions based on the identified pain points, desired outcomes, and industry challenges.
Use the company information, pain points, and industry challenges identified by previous personas to craft targeted search queries about the selling company's solutions.
The selling company will be provided by the user. Ensure all recommendations are specific to products and services offered by this company.
Focus on solutions offered by the selling company that directly address the customer's needs.
Provide specific product recommendations, implementation strategies, and potential benefits for each solution.
Include relevant case studies, success stories, and detailed statistics from the search results.
Your response MUST be a valid JSON object with the following structure:
{
    "selling_company": "string",
    "solutions": [
        {
            "product": "string",
            "description": "string (200-300 words)",
            "addresses": ["pain_point_or_challenge", ...],
            "benefits": ["string", ...],
            "implementation": "string (150-200 words)",
            "case_study": "string (200-250 words)",
            "supporting_facts": ["string", ...],
            "sources": ["url", ...]
        },
        ...
    ]
}
Ensure each solution is thoroughly explained, clearly linked to the customer's needs, and supported by specific examples and data from the search results.
All solutions must be products or services offered by the selling company provided by the user.`,
}

// profileMessages builds the stage-1 conversation.
func profileMessages(companyURL string) []Message {
	return []Message{
		{Role: RoleUser, Content: fmt.Sprintf("Extract detailed info from: %s", companyURL)},
	}
}

// painPointMessages builds the stage-2 conversation from the parsed profile.
func painPointMessages(companyInfo map[string]any) ([]Message, error) {
	info, err := json.Marshal(companyInfo)
	if err != nil {
		return nil, err
	}
	return []Message{
		{Role: RoleSystem, Content: "Use the following company info for context:"},
		{Role: RoleUser, Content: string(info)},
		{Role: RoleUser, Content: "Analyze pain points and desired outcomes based on this information. Use search to find additional relevant information."},
	}, nil
}

// challengeMessages builds the stage-3 conversation from the profile and pain points.
func challengeMessages(companyInfo, painPoints map[string]any) ([]Message, error) {
	combined, err := json.Marshal(map[string]any{
		"company_info": companyInfo,
		"pain_points":  painPoints,
	})
	if err != nil {
		return nil, err
	}
	return []Message{
		{Role: RoleSystem, Content: "Use the following information for context:"},
		{Role: RoleUser, Content: string(combined)},
		{Role: RoleUser, Content: "Identify industry challenges based on this information. Use search to find additional relevant information. Ensure your response is a valid JSON object."},
	}, nil
}

// solutionMessages builds the stage-4 conversation from everything accumulated
// so far plus the operator-supplied vendor name.
func solutionMessages(out *CombinedOutput, sellingCompany string) ([]Message, error) {
	accumulated, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return []Message{
		{Role: RoleSystem, Content: "Use the following information for context:"},
		{Role: RoleUser, Content: string(accumulated)},
		{Role: RoleUser, Content: fmt.Sprintf("Recommend solutions from %s based on this information. Use search to find specific solutions and case studies from %s.", sellingCompany, sellingCompany)},
	}, nil
}
