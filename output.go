package prospect

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// DefaultOutputPath is where the combined analysis lands unless overridden.
const DefaultOutputPath = "combined_analysis.json"

// CombinedOutput accumulates stage results over a run. A field, once set,
// is never rolled back — a later stage failing leaves the earlier results
// intact for the best-effort save. Field order matches the stage order so
// the persisted document reads top to bottom in pipeline order.
type CombinedOutput struct {
	CompanyInfo        map[string]any `json:"company_info,omitempty"`
	PainPoints         map[string]any `json:"pain_points,omitempty"`
	IndustryChallenges map[string]any `json:"industry_challenges,omitempty"`
	SellingCompany     string         `json:"selling_company,omitempty"`
	Solutions          map[string]any `json:"solutions,omitempty"`
}

// Save writes the document to path as pretty-printed UTF-8 JSON, overwriting
// any previous run's output.
func (o *CombinedOutput) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		f.Close()
		return eris.Wrapf(err, "encode %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "close %s", path)
	}
	return nil
}
