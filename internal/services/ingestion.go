package services

import (
	"context"
	"fmt"
	"io"

	"tutor-ai/internal/logger"
)

type DocumentSummary struct {
	Summary       string `json:"summary"`
	Pages         int    `json:"pages"`
	Chunks        int    `json:"chunks"`
	DroppedChunks int    `json:"dropped_chunks"`
}

// DocumentSummarizer coordinates upload staging, PDF text extraction and
// map-reduce summarization.
type DocumentSummarizer struct {
	documents  *DocumentService
	pdf        *PDFService
	splitter   *Splitter
	summarizer *Summarizer
	log        *logger.Logger
}

func NewDocumentSummarizer(
	documents *DocumentService,
	pdf *PDFService,
	summarizer *Summarizer,
	log *logger.Logger,
) *DocumentSummarizer {
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentSummarizer{
		documents:  documents,
		pdf:        pdf,
		splitter:   MustSplitter(PDFChunkSize, PDFChunkOverlap),
		summarizer: summarizer,
		log:        log,
	}
}

// SummarizeUpload stages an uploaded file, summarizes it and removes the
// staged copy whatever the outcome.
func (s *DocumentSummarizer) SummarizeUpload(ctx context.Context, original string, src io.Reader, progress ProgressCallback) (*DocumentSummary, error) {
	path, cleanup, err := s.documents.Stage(original, src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	s.log.Info("staged upload", "file", original, "path", path)
	return s.SummarizeFile(ctx, path, progress)
}

func (s *DocumentSummarizer) SummarizeFile(ctx context.Context, path string, progress ProgressCallback) (*DocumentSummary, error) {
	if progress != nil {
		progress("extract", "Extracting text", 0, 1)
	}

	doc, err := s.pdf.ExtractText(path)
	if err != nil {
		return nil, invalidInput("Could not read PDF: %v", err)
	}
	text := doc.Text()
	if text == "" {
		return nil, invalidInput("PDF contains no extractable text")
	}

	chunks := s.splitter.Split(text)
	bounded := BoundChunks(chunks, PDFMaxTokens, PDFCharsPerToken)
	if dropped := len(chunks) - len(bounded); dropped > 0 {
		s.log.Warn("document exceeds token budget, dropping trailing chunks",
			"pages", len(doc.Pages), "chunks", len(chunks), "dropped", dropped)
	}

	if progress != nil {
		progress("extract", fmt.Sprintf("Extracted %d pages", len(doc.Pages)), 1, 1)
	}

	summary, err := s.summarizer.SummarizeWithProgress(ctx, bounded, progress)
	if err != nil {
		return nil, err
	}

	return &DocumentSummary{
		Summary:       summary,
		Pages:         len(doc.Pages),
		Chunks:        len(bounded),
		DroppedChunks: len(chunks) - len(bounded),
	}, nil
}
