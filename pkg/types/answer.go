package types

// NoInformationAnswer is returned whenever retrieval produces nothing
// usable, or a synthesized answer fails the grounding checks.
const NoInformationAnswer = "Not enough information in the provided sources."

// Citation is a verified reference into the retrieved source set.
// Link always appears in the set of sources the synthesizer was given;
// unverifiable citations are dropped before an answer is returned.
type Citation struct {
	Link      string `json:"link"`
	Repo      string `json:"repo"`
	Path      string `json:"path"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}

// Answer is the final grounded response for one question.
type Answer struct {
	Text      string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// NoInformation returns the canned empty-retrieval answer.
func NoInformation() *Answer {
	return &Answer{Text: NoInformationAnswer, Citations: []Citation{}}
}

// Grounded reports whether the answer carries at least one verified
// citation.
func (a *Answer) Grounded() bool {
	return len(a.Citations) > 0
}
