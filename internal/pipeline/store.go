package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/seenimoa/nsenews/pkg/models"
	"github.com/seenimoa/nsenews/pkg/utils"
)

// LatestFile is the name of the copy of the most recent result.
const LatestFile = "latest_analysis.json"

// ResultFileName returns the timestamped file name for a result saved at t.
func ResultFileName(t time.Time) string {
	return "nse_news_analysis_" + utils.FileStamp(t) + ".json"
}

// SaveResult writes res to dir under name (a timestamped name when empty)
// and refreshes LatestFile. It returns the path of the named file.
func SaveResult(dir string, res models.PipelineResult, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if name == "" {
		name = ResultFileName(time.Now())
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	if name != LatestFile {
		if err := os.WriteFile(filepath.Join(dir, LatestFile), data, 0o644); err != nil {
			return path, fmt.Errorf("write latest result: %w", err)
		}
	}
	return path, nil
}

// LoadResult reads a saved result. A missing or unreadable file yields an
// empty result together with the error.
func LoadResult(path string) (models.PipelineResult, error) {
	var res models.PipelineResult
	data, err := os.ReadFile(path)
	if err != nil {
		return models.PipelineResult{}, fmt.Errorf("read result: %w", err)
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return models.PipelineResult{}, fmt.Errorf("decode result %s: %w", path, err)
	}
	return res, nil
}

// LoadLatest reads LatestFile from dir.
func LoadLatest(dir string) (models.PipelineResult, error) {
	return LoadResult(filepath.Join(dir, LatestFile))
}

// LoadArticles reads a JSON array of articles, for offline analysis.
func LoadArticles(path string) ([]models.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}
	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("decode articles %s: %w", path, err)
	}
	return articles, nil
}
