package api

import (
	"context"
	"net/http"

	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/logging"
	"github.com/techpostia/techpost/internal/models"
	"github.com/techpostia/techpost/internal/services"
)

type PostGenerator interface {
	Generate(ctx context.Context, user *auth.User, req models.GenerationRequest) (*services.GenerationResult, error)
}

type TextRefiner interface {
	Refine(ctx context.Context, content, instruction string) (string, error)
}

type IdeaSuggester interface {
	Suggest(ctx context.Context, req models.SuggestionsRequest) (*models.SuggestionsResponse, error)
}

type GenerationHandler struct {
	generator PostGenerator
	refiner   TextRefiner
	suggester IdeaSuggester
}

func NewGenerationHandler(generator PostGenerator, refiner TextRefiner, suggester IdeaSuggester) *GenerationHandler {
	return &GenerationHandler{generator: generator, refiner: refiner, suggester: suggester}
}

func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUserFromRequest(r)

	var req models.GenerationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
		return
	}

	result, err := h.generator.Generate(r.Context(), user, req)
	if err != nil {
		writeServiceError(w, r, err, "generate", "Failed to generate post")
		return
	}

	writeJSON(w, http.StatusOK, models.GenerationResponse{
		Text:   result.Text,
		Title:  result.Title,
		PostID: result.PostID,
	})
}

func (h *GenerationHandler) Refine(w http.ResponseWriter, r *http.Request) {
	var req models.RefineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
		return
	}

	text, err := h.refiner.Refine(r.Context(), req.Content, req.Instruction)
	if err != nil {
		writeServiceError(w, r, err, "refine", "Failed to refine text")
		return
	}

	writeJSON(w, http.StatusOK, models.RefineResponse{RefinedText: text})
}

func (h *GenerationHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
		return
	}

	resp, err := h.suggester.Suggest(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "suggestions", "Failed to generate suggestions")
		return
	}
	if resp.Fallback {
		logging.EnrichMetadata(r.Context(), "suggestions_fallback", true)
	}

	writeJSON(w, http.StatusOK, resp)
}
