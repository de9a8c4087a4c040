package handler

import (
	"context"
	"errors"
	"net/http"

	"libraryhub/internal/ai"
	"libraryhub/internal/microservices/http-api/dto"

	"github.com/gin-gonic/gin"
)

// BookSummarizer is satisfied by *ai.Generator.
type BookSummarizer interface {
	Generate(ctx context.Context, title, author string) (ai.Result, error)
}

type AIHandler struct {
	summarizer BookSummarizer
}

func NewAIHandler(summarizer BookSummarizer) *AIHandler {
	return &AIHandler{summarizer: summarizer}
}

func (h *AIHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/book", h.SummarizeBook)
}

// SummarizeBook answers 200 with a summary (fallback included), 400 on bad input
// and 500 when the external service fails in an unrecognized way.
func (h *AIHandler) SummarizeBook(c *gin.Context) {
	var req dto.BookSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	// the generator bounds the external call itself
	res, err := h.summarizer.Generate(c.Request.Context(), req.Title, req.Author)
	if err != nil {
		if errors.Is(err, ai.ErrInvalidInput) {
			writeError(c, http.StatusBadRequest, "Missing title/author")
			return
		}
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}

	tags := res.Tags
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, dto.BookSummaryResponse{
		AISummary: res.Summary,
		AITags:    tags,
		Note:      res.Note,
	})
}
