// Package staging partitions extracted articles into output tiers.
package staging

import (
	"sort"
	"strings"

	"HeadlineScreener/internal/domain"
)

// Partition holds three disjoint tiers.
type Partition struct {
	Irrelevant []domain.Article
	Stage1     []domain.ExtractedArticle
	Stage2     []domain.ExtractedArticle
}

// Bucketer assigns tiers. It is stateless.
type Bucketer struct{}

// NewBucketer returns a Bucketer.
func NewBucketer() *Bucketer {
	return &Bucketer{}
}

// Assign returns the tier for one extracted article. The irrelevant override
// wins over every other field.
func (b *Bucketer) Assign(e domain.ExtractedArticle) domain.Tier {
	if e.Irrelevant() {
		return domain.TierIrrelevant
	}
	if strings.TrimSpace(e.Additional.Company) != "" && strings.TrimSpace(e.Core.ProjectName) != "" {
		return domain.TierStage2
	}
	return domain.TierStage1
}

// Partition appends oracle-marked irrelevant articles to gateIrrelevant and
// splits the rest into Stage 1 and Stage 2. Input order is kept within each tier.
func (b *Bucketer) Partition(gateIrrelevant []domain.Article, extracted []domain.ExtractedArticle) Partition {
	p := Partition{Irrelevant: append([]domain.Article(nil), gateIrrelevant...)}

	for _, e := range extracted {
		switch b.Assign(e) {
		case domain.TierIrrelevant:
			p.Irrelevant = append(p.Irrelevant, e.Article)
		case domain.TierStage2:
			p.Stage2 = append(p.Stage2, e)
		default:
			p.Stage1 = append(p.Stage1, e)
		}
	}

	return p
}

// Audit tags every article with the stage that discarded it, ordered by
// article index. Stage 2 articles carry an empty tag.
func (b *Bucketer) Audit(p Partition) []domain.AuditRow {
	rows := make([]domain.AuditRow, 0, len(p.Irrelevant)+len(p.Stage1)+len(p.Stage2))
	for _, a := range p.Irrelevant {
		rows = append(rows, domain.AuditRow{Article: a, Tier: domain.TierIrrelevant, Discarded: domain.DiscardedBeforeStage1})
	}
	for _, e := range p.Stage1 {
		rows = append(rows, domain.AuditRow{Article: e.Article, Tier: domain.TierStage1, Discarded: domain.DiscardedBeforeStage2})
	}
	for _, e := range p.Stage2 {
		rows = append(rows, domain.AuditRow{Article: e.Article, Tier: domain.TierStage2})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Article.Index < rows[j].Article.Index
	})
	return rows
}
