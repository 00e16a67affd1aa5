package domain

import "time"

// Table names handed to result sinks.
const (
	TableStage1     = "Stage 1"
	TableStage2     = "Stage 2"
	TableIrrelevant = "Irrelevant"
	TableAll        = "All Articles"
)

// Discard labels for the All Articles audit view.
const (
	DiscardedBeforeStage1 = "Discarded before Stage 1"
	DiscardedBeforeStage2 = "Discarded before Stage 2"
)

var detailColumns = []string{
	"Title", "URL", "Scale", "Project Name", "Timeline", "Technology",
	"Company", "Projects Mentioned", "Partners", "Continent", "Country", "Project Status",
}

// AuditRow tags one article with the stage that discarded it.
type AuditRow struct {
	Article   Article
	Tier      Tier
	Discarded string
}

// Results is the full output of one screening run.
type Results struct {
	RunID      string
	Site       string
	Taxonomy   string
	StartedAt  time.Time
	Stage1     []ExtractedArticle
	Stage2     []ValidatedArticle
	Irrelevant []Article
	All        []AuditRow
}

// Table is a storage-agnostic row set.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Tables projects the results into the four named row sets.
func (r Results) Tables() []Table {
	stage1 := Table{Name: TableStage1, Columns: append([]string(nil), detailColumns...)}
	for _, e := range r.Stage1 {
		stage1.Rows = append(stage1.Rows, detailRow(e))
	}

	stage2 := Table{Name: TableStage2, Columns: append(append([]string(nil), detailColumns...), "Check Results")}
	for _, v := range r.Stage2 {
		stage2.Rows = append(stage2.Rows, append(detailRow(v.ExtractedArticle), v.Validation.Flag))
	}

	irrelevant := Table{Name: TableIrrelevant, Columns: []string{"Title", "URL"}}
	for _, a := range r.Irrelevant {
		irrelevant.Rows = append(irrelevant.Rows, []string{a.Title, a.URL})
	}

	all := Table{Name: TableAll, Columns: []string{"Title", "URL", "Discarded"}}
	for _, row := range r.All {
		all.Rows = append(all.Rows, []string{row.Article.Title, row.Article.URL, row.Discarded})
	}

	return []Table{stage1, stage2, irrelevant, all}
}

// Counts returns the number of articles per tier.
func (r Results) Counts() map[Tier]int {
	return map[Tier]int{
		TierIrrelevant: len(r.Irrelevant),
		TierStage1:     len(r.Stage1),
		TierStage2:     len(r.Stage2),
	}
}

func detailRow(e ExtractedArticle) []string {
	return []string{
		e.Article.Title,
		e.Article.URL,
		e.Core.Scale,
		e.Core.ProjectName,
		e.Core.Timeline,
		e.Core.Technology,
		e.Additional.Company,
		e.Additional.ProjectsMentioned,
		e.Additional.Partners,
		e.Additional.Continent,
		e.Additional.Country,
		e.Additional.ProjectStatus,
	}
}
