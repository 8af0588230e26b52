package handlers

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// questionsFile is the on-disk shape of the sample questions file.
type questionsFile struct {
	Questions []string `yaml:"questions"`
}

// QuestionsResponse is the reply to GET /api/questions.
type QuestionsResponse struct {
	Questions []string `json:"questions"`
}

// QuestionsHandler serves the front-end's sample questions. The list is
// loaded once at startup; editing the file requires a restart.
type QuestionsHandler struct {
	questions []string
	logger    *zap.Logger
}

// NewQuestionsHandler loads the sample questions from path. A missing or
// empty file is an error so a broken deployment is caught at startup.
func NewQuestionsHandler(path string, logger *zap.Logger) (*QuestionsHandler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	var file questionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse questions file %s: %w", path, err)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("questions file %s contains no questions", path)
	}

	return &QuestionsHandler{
		questions: file.Questions,
		logger:    logger.Named("questions"),
	}, nil
}

// RegisterRoutes registers the questions handler's routes on the given mux.
func (h *QuestionsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/questions", h.Questions)
}

// Questions handles GET /api/questions requests.
func (h *QuestionsHandler) Questions(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, QuestionsResponse{Questions: h.questions}); err != nil {
		h.logger.Error("failed to encode questions response", zap.Error(err))
	}
}
