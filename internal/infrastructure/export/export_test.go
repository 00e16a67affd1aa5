package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeadlineScreener/internal/domain"
)

func sampleResults() domain.Results {
	stage2 := domain.ValidatedArticle{
		ExtractedArticle: domain.ExtractedArticle{
			Article:    domain.Article{Title: "HYBRIT, phase two", URL: "https://a"},
			Core:       domain.CoreDetails{ProjectName: "HYBRIT"},
			Additional: domain.AdditionalDetails{Company: "SSAB"},
		},
		Validation: domain.ValidationResult{Flag: "CHECK RESULTS: country"},
	}
	return domain.Results{
		RunID:      "run-1",
		Site:       "Steel News",
		Stage2:     []domain.ValidatedArticle{stage2},
		Irrelevant: []domain.Article{{Title: "Match report", URL: "https://b"}},
		All: []domain.AuditRow{
			{Article: stage2.Article, Tier: domain.TierStage2},
			{Article: domain.Article{Title: "Match report", URL: "https://b"}, Tier: domain.TierIrrelevant, Discarded: domain.DiscardedBeforeStage1},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVSink(t *testing.T) {
	t.Parallel()

	sink := NewCSVSink(t.TempDir())
	results := sampleResults()
	require.NoError(t, sink.WriteResults(context.Background(), results))

	dir := sink.RunDir(results)
	assert.Equal(t, "steel_news_run-1", filepath.Base(dir))

	stage1 := readCSV(t, filepath.Join(dir, "stage_1.csv"))
	require.Len(t, stage1, 1)
	assert.Equal(t, "Title", stage1[0][0])

	stage2 := readCSV(t, filepath.Join(dir, "stage_2.csv"))
	require.Len(t, stage2, 2)
	assert.Equal(t, "Check Results", stage2[0][len(stage2[0])-1])
	assert.Equal(t, "HYBRIT, phase two", stage2[1][0])
	assert.Equal(t, "CHECK RESULTS: country", stage2[1][len(stage2[1])-1])

	all := readCSV(t, filepath.Join(dir, "all_articles.csv"))
	assert.Equal(t, [][]string{
		{"Title", "URL", "Discarded"},
		{"HYBRIT, phase two", "https://a", ""},
		{"Match report", "https://b", domain.DiscardedBeforeStage1},
	}, all)

	irrelevant := readCSV(t, filepath.Join(dir, "irrelevant.csv"))
	assert.Equal(t, [][]string{{"Title", "URL"}, {"Match report", "https://b"}}, irrelevant)
}

func TestNDJSONSink(t *testing.T) {
	t.Parallel()

	sink := NewNDJSONSink(filepath.Join(t.TempDir(), "nested"))
	results := sampleResults()
	require.NoError(t, sink.WriteResults(context.Background(), results))

	f, err := os.Open(sink.Path(results))
	require.NoError(t, err)
	defer f.Close()

	var rows []ndjsonRow
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var row ndjsonRow
		require.NoError(t, json.Unmarshal(sc.Bytes(), &row))
		rows = append(rows, row)
	}
	require.NoError(t, sc.Err())

	// stage 2 + irrelevant + two audit rows
	require.Len(t, rows, 4)
	assert.Equal(t, domain.TableStage2, rows[0].Table)
	assert.Equal(t, "SSAB", rows[0].Row["Company"])
	assert.Equal(t, "run-1", rows[0].RunID)
	assert.Equal(t, domain.TableIrrelevant, rows[1].Table)
	assert.Equal(t, domain.TableAll, rows[3].Table)
	assert.Equal(t, domain.DiscardedBeforeStage1, rows[3].Row["Discarded"])
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "all_articles", FileName("All Articles"))
	assert.Equal(t, "stage_2", FileName(domain.TableStage2))
}
