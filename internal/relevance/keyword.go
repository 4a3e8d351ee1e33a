package relevance

import (
	"context"
	"strings"
)

var logKeywords = []string{
	// tables and columns
	"vpc", "access log", "execution", "src_ip", "dst_ip", "source ip", "destination",
	"bytes", "request", "endpoint", "status code", "status_code", "function",
	"duration", "latency", "user", "method",
	// values and verbs seen in the logs
	"accept", "reject", "denied", "blocked", "failed", "failure", "success",
	"error", "login", "/api", "api call", "traffic", "connection", "packet", "port",
	"log", "anomal", "spike", "suspicious",
}

var offTopicKeywords = []string{
	"weather", "forecast", "recipe", "cook", "movie", "song", "joke", "poem",
	"football", "soccer", "stock price", "capital of", "translate", "who are you",
	"your name", "how are you", "hello", "thank",
}

// KeywordResult explains a keyword decision.
type KeywordResult struct {
	Relevant  bool
	LogScore  int
	OffScore  int
	Reasoning string
}

// KeywordClassifier scores log-schema vocabulary against off-topic
// vocabulary. It needs no model.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Score counts keyword hits in question. A question is relevant when it
// mentions more log terms than off-topic terms.
func (c *KeywordClassifier) Score(question string) KeywordResult {
	lower := strings.ToLower(question)
	logScore := countHits(lower, logKeywords)
	offScore := countHits(lower, offTopicKeywords)

	switch {
	case logScore == 0:
		return KeywordResult{OffScore: offScore, Reasoning: "no log keywords"}
	case logScore <= offScore:
		return KeywordResult{LogScore: logScore, OffScore: offScore, Reasoning: "off-topic keywords dominate"}
	}
	return KeywordResult{Relevant: true, LogScore: logScore, OffScore: offScore, Reasoning: "question mentions log fields"}
}

func (c *KeywordClassifier) IsLogQuery(_ context.Context, question string) (bool, error) {
	return c.Score(question).Relevant, nil
}

var chartKeywords = []string{
	"plot", "chart", "graph", "visuali", "trend", "distribution", "histogram",
	"time series", "over time", "per day", "per hour", "hourly", "daily",
	"weekly", "breakdown", " vs ", "versus", "correlation", "compare",
}

// KeywordChartGate asks for charts when the question uses visualization
// vocabulary.
type KeywordChartGate struct{}

func NewKeywordChartGate() *KeywordChartGate {
	return &KeywordChartGate{}
}

func (g *KeywordChartGate) WantsChart(_ context.Context, question string) (bool, error) {
	return countHits(strings.ToLower(question), chartKeywords) > 0, nil
}

func countHits(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}
