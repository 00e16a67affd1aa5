package domain

import "strings"

// ResponseFormat selects how the oracle is asked to shape its answer.
type ResponseFormat string

const (
	FormatText ResponseFormat = "text"
	FormatJSON ResponseFormat = "json_object"
)

// RelevanceVerdict is the gate outcome for one article. DisqualifiedBy holds
// the index of the question answered "yes", or -1.
type RelevanceVerdict struct {
	ArticleID      string
	Title          string
	Disqualified   bool
	DisqualifiedBy int
	OracleCalls    int
}

// Relevant reports whether the article survived every disqualification question.
func (v RelevanceVerdict) Relevant() bool {
	return !v.Disqualified
}

// CoreDetails is produced by the first extraction round.
type CoreDetails struct {
	Scale       string `json:"scale"`
	ProjectName string `json:"project_name"`
	Timeline    string `json:"timeline"`
	Technology  string `json:"technology"`
}

// Empty reports whether every core field is blank.
func (c CoreDetails) Empty() bool {
	return strings.TrimSpace(c.Scale) == "" &&
		strings.TrimSpace(c.ProjectName) == "" &&
		strings.TrimSpace(c.Timeline) == "" &&
		strings.TrimSpace(c.Technology) == ""
}

// AdditionalDetails is produced by the second extraction round.
type AdditionalDetails struct {
	Company           string `json:"company"`
	ProjectsMentioned string `json:"projects_mentioned"`
	Partners          string `json:"partners"`
	Continent         string `json:"continent"`
	Country           string `json:"country"`
	ProjectStatus     string `json:"project_status"`
	Irrelevant        bool   `json:"irrelevant,omitempty"`
}

// Field names used in validation flags, storage columns and oracle prompts.
const (
	FieldScale             = "scale"
	FieldProjectName       = "project_name"
	FieldTimeline          = "timeline"
	FieldTechnology        = "technology"
	FieldCompany           = "company"
	FieldProjectsMentioned = "projects_mentioned"
	FieldPartners          = "partners"
	FieldContinent         = "continent"
	FieldCountry           = "country"
	FieldProjectStatus     = "project_status"
	FieldIrrelevant        = "irrelevant"
)

// DetailField is one named extracted value.
type DetailField struct {
	Name  string
	Value string
}

// ExtractedArticle merges the article identity with both extraction rounds.
// Escalated is false when round two was skipped.
type ExtractedArticle struct {
	Article    Article
	Core       CoreDetails
	Additional AdditionalDetails
	Escalated  bool
}

// Irrelevant reports the oracle-asserted override from round two.
func (e ExtractedArticle) Irrelevant() bool {
	return e.Additional.Irrelevant
}

// Fields lists every extracted string field in a stable order.
func (e ExtractedArticle) Fields() []DetailField {
	return []DetailField{
		{Name: FieldScale, Value: e.Core.Scale},
		{Name: FieldProjectName, Value: e.Core.ProjectName},
		{Name: FieldTimeline, Value: e.Core.Timeline},
		{Name: FieldTechnology, Value: e.Core.Technology},
		{Name: FieldCompany, Value: e.Additional.Company},
		{Name: FieldProjectsMentioned, Value: e.Additional.ProjectsMentioned},
		{Name: FieldPartners, Value: e.Additional.Partners},
		{Name: FieldContinent, Value: e.Additional.Continent},
		{Name: FieldCountry, Value: e.Additional.Country},
		{Name: FieldProjectStatus, Value: e.Additional.ProjectStatus},
	}
}

// Tier is the output bucket an article lands in.
type Tier string

const (
	TierIrrelevant Tier = "irrelevant"
	TierStage1     Tier = "stage1"
	TierStage2     Tier = "stage2"
)

// ValidationResult holds per-field fuzzy scores and the derived flag.
// Flag is empty when every checked field is supported by the source text.
type ValidationResult struct {
	Scores  map[string]float64
	Flagged []string
	Flag    string
}

// Passed reports whether no field fell below the threshold.
func (v ValidationResult) Passed() bool {
	return len(v.Flagged) == 0
}

// ValidatedArticle is a Stage 2 article with its validation outcome.
type ValidatedArticle struct {
	ExtractedArticle
	Validation ValidationResult
}
