package rank

import "time"

// SubsectionStatus tells consumers whether refined text is real content.
type SubsectionStatus string

const (
	// SubsectionNotImplemented marks placeholder refined text.
	SubsectionNotImplemented SubsectionStatus = "not_implemented"

	refinedTextPlaceholder = "Refined text analysis needs to be implemented."
)

// TimestampLayout is UTC ISO-8601 with microseconds and a literal Z.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

type Subsection struct {
	Document    string           `json:"document"`
	PageNumber  int              `json:"page_number"`
	RefinedText string           `json:"refined_text"`
	Status      SubsectionStatus `json:"status"`
}

// RunResult is the output of one analysis run.
type RunResult struct {
	Metadata           Metadata     `json:"metadata"`
	ExtractedSections  []Section    `json:"extracted_sections"`
	SubSectionAnalysis []Subsection `json:"sub_section_analysis"`
}

// Assemble builds the run result. With no sections the arrays are empty
// and the metadata is still filled in.
func Assemble(docs []string, persona, job string, sections []Section, now time.Time) RunResult {
	res := RunResult{
		Metadata: Metadata{
			InputDocuments:      append([]string{}, docs...),
			Persona:             persona,
			JobToBeDone:         job,
			ProcessingTimestamp: now.UTC().Format(TimestampLayout),
		},
		ExtractedSections:  append([]Section{}, sections...),
		SubSectionAnalysis: []Subsection{},
	}
	if len(sections) > 0 {
		top := sections[0]
		res.SubSectionAnalysis = append(res.SubSectionAnalysis, Subsection{
			Document:    top.Document,
			PageNumber:  top.PageNumber,
			RefinedText: refinedTextPlaceholder,
			Status:      SubsectionNotImplemented,
		})
	}
	return res
}
