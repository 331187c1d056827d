package mentor

import "github.com/emandor/mcq_mentor/internal/providers"

// Variant is one page of the mentor: the same form wired to a vendor.
type Variant struct {
	Slug        string               `json:"slug"`
	Title       string               `json:"title"`
	Placeholder string               `json:"placeholder"`
	Vendor      providers.SourceName `json:"vendor"`
	// Styled answers are split into tagged lines instead of rendered as Markdown.
	Styled bool   `json:"styled"`
	Theme  string `json:"theme,omitempty"`
}

var Variants = []Variant{
	{Slug: "openai", Title: "AI Mentor", Placeholder: "Enter Topic", Vendor: providers.SourceOpenAI},
	{Slug: "mts", Title: "МТС. AI Mentor", Placeholder: "Введите тему", Vendor: providers.SourceCotype, Styled: true, Theme: "mts"},
	{Slug: "perplexity", Title: "AI Mentor", Placeholder: "Enter Topic", Vendor: providers.SourcePerplexity},
}

func LookupVariant(slug string) (Variant, bool) {
	for _, v := range Variants {
		if v.Slug == slug {
			return v, true
		}
	}
	return Variant{}, false
}
