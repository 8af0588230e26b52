package language

// Document is one unit of text submitted for analysis. IDs must be unique
// within a single request and are echoed back by the service.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SentimentResult is the per-document sentiment outcome, aligned to the
// request's document order. Failed marks a per-document error returned
// inside an otherwise successful response.
type SentimentResult struct {
	ID        string
	Sentiment string  // positive, neutral, negative, mixed
	Score     float64 // confidence of the predicted sentiment
	Failed    bool
	ErrorMsg  string
}

// KeyPhraseResult is the per-document key-phrase outcome.
type KeyPhraseResult struct {
	ID         string
	KeyPhrases []string
	Failed     bool
	ErrorMsg   string
}

// Entity is one recognized named entity.
type Entity struct {
	Text            string
	Category        string
	ConfidenceScore *float64
}

// EntityResult is the per-document entity-recognition outcome.
type EntityResult struct {
	ID       string
	Entities []Entity
	Failed   bool
	ErrorMsg string
}

// Wire types for the text-analytics REST API.

type analyzeRequest struct {
	Documents []requestDocument `json:"documents"`
}

type requestDocument struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

type documentError struct {
	ID    string `json:"id"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type sentimentResponse struct {
	Documents []struct {
		ID               string `json:"id"`
		Sentiment        string `json:"sentiment"`
		ConfidenceScores struct {
			Positive float64 `json:"positive"`
			Neutral  float64 `json:"neutral"`
			Negative float64 `json:"negative"`
		} `json:"confidenceScores"`
	} `json:"documents"`
	Errors []documentError `json:"errors"`
}

type keyPhraseResponse struct {
	Documents []struct {
		ID         string   `json:"id"`
		KeyPhrases []string `json:"keyPhrases"`
	} `json:"documents"`
	Errors []documentError `json:"errors"`
}

type entityResponse struct {
	Documents []struct {
		ID       string `json:"id"`
		Entities []struct {
			Text            string   `json:"text"`
			Category        string   `json:"category"`
			ConfidenceScore *float64 `json:"confidenceScore"`
		} `json:"entities"`
	} `json:"documents"`
	Errors []documentError `json:"errors"`
}
