package producer

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rhuss/strom/pkg/api"
)

const (
	analysisDelay = 100 * time.Millisecond

	// analysisSlice is the number of characters per analysis chunk.
	analysisSlice = 50
)

// Analysis results. Struct fields keep the key order stable in the
// rendered document.

type SentimentResult struct {
	Sentiment  string          `json:"sentiment"`
	Confidence float64         `json:"confidence"`
	Scores     SentimentScores `json:"scores"`
}

type SentimentScores struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

type Entity struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

type EntityResult struct {
	Entities []Entity `json:"entities"`
}

type TopicResult struct {
	Topics []string  `json:"topics"`
	Scores []float64 `json:"scores"`
}

type SummaryResult struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Length    int      `json:"length"`
}

// analyze computes the canned result for an analysis type.
func analyze(analysisType, content string) any {
	switch analysisType {
	case api.AnalysisSentiment:
		return SentimentResult{
			Sentiment:  "positive",
			Confidence: 0.85,
			Scores:     SentimentScores{Positive: 0.85, Neutral: 0.10, Negative: 0.05},
		}
	case api.AnalysisEntity:
		return EntityResult{Entities: []Entity{
			{Text: "FastAPI", Type: "TECHNOLOGY", Confidence: 0.95},
			{Text: "streaming", Type: "CONCEPT", Confidence: 0.90},
		}}
	case api.AnalysisTopic:
		return TopicResult{
			Topics: []string{"API", "Streaming", "Technology", "Development"},
			Scores: []float64{0.95, 0.85, 0.75, 0.65},
		}
	default:
		return SummaryResult{
			Summary:   "This is a summary of the content.",
			KeyPoints: []string{"Point 1", "Point 2", "Point 3"},
			Length:    utf8.RuneCountInString(content),
		}
	}
}

// newAnalysis renders the result once as indented JSON and streams it in
// fixed-size slices.
func newAnalysis(r *api.AnalysisRequest, opts Options) (Producer, error) {
	doc, err := json.MarshalIndent(analyze(r.AnalysisType, r.Content), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render %s analysis: %w", r.AnalysisType, err)
	}
	return fromStrings(splitRunes(string(doc), analysisSlice), opts.Pacer, analysisDelay), nil
}
