package analysis

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roast-backend/internal/extract"
	"roast-backend/internal/llm"
	"roast-backend/internal/shared/metrics"
	"roast-backend/internal/shared/server/middleware"
	"roast-backend/internal/shared/server/respond"
	"roast-backend/internal/usage"
)

const (
	msgNoFile     = "No file provided"
	msgBadType    = "Bro, we need a PDF or Word document (.pdf, .doc, .docx). Other formats won't work well!"
	msgTooBig     = "Eish! Your file is too big - needs to be under 10MB. Compress it a bit or save as PDF."
	msgNoText     = "Could not extract enough text from the document. Please ensure your CV contains readable text."
	msgBadParse   = "Failed to parse your CV. Please make sure it's a valid PDF or Word document with readable text."
	msgProcessing = "Something went wrong processing your CV. Let's try that again, bana!"
	msgQuota      = "You've reached your daily analysis limit. Upgrade your plan to continue."
)

// Handler wires the analysis endpoints to the service and quota tracker.
type Handler struct {
	Svc      *Service
	Usage    *usage.Service
	Progress *ProgressTracker
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, usageSvc *usage.Service) *Handler {
	return &Handler{
		Svc:      svc,
		Usage:    usageSvc,
		Progress: NewProgressTracker(),
	}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.POST("/analyze/stream", h.analyzeStream)
	rg.POST("/quick-score", h.quickScore)
	rg.POST("/generate-improvements", h.generateImprovements)
	rg.GET("/upload-progress", h.getUploadProgress)
	rg.POST("/upload-progress", h.setUploadProgress)
}

func (h *Handler) analyze(c *gin.Context) {
	fileHeader, opts, ok := h.bindAnalyzeForm(c)
	if !ok {
		return
	}
	if !h.consumeQuota(c) {
		return
	}
	parsed, ok := h.parseUpload(c, fileHeader)
	if !ok {
		return
	}

	result, err := h.Svc.Analyze(c.Request.Context(), Request{CVText: parsed.Text, Options: opts})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeProcessing, msgProcessing)
		return
	}

	respond.OK(c, batchData{
		RoastAnalysis:  *result.Analysis,
		ProcessingTime: result.ProcessingTime,
		Metadata:       parsed.Metadata,
		Usage:          result.Usage,
		FinishReason:   result.FinishReason,
	})
}

type batchData struct {
	RoastAnalysis
	ProcessingTime float64          `json:"processingTime"`
	Metadata       extract.Metadata `json:"metadata"`
	Usage          llm.TokenUsage   `json:"usage"`
	FinishReason   string           `json:"finishReason"`
}

func (h *Handler) analyzeStream(c *gin.Context) {
	fileHeader, opts, ok := h.bindAnalyzeForm(c)
	if !ok {
		return
	}
	if !h.consumeQuota(c) {
		return
	}
	parsed, ok := h.parseUpload(c, fileHeader)
	if !ok {
		return
	}

	// Validation is done; from here on the response is the record stream.
	metaJSON, err := json.Marshal(parsed.Metadata)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeProcessing, msgProcessing)
		return
	}
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("X-CV-Metadata", string(metaJSON))
	c.Status(http.StatusOK)

	sw := newStreamWriter(c.Writer)
	if err := sw.Metadata(parsed.Metadata); err != nil {
		return
	}

	result, err := h.Svc.AnalyzeStream(c.Request.Context(), Request{CVText: parsed.Text, Options: opts}, func(partial PartialAnalysis) error {
		return sw.Object(partial)
	})
	if err != nil {
		_ = sw.Error(msgProcessing)
		return
	}
	_ = sw.Finish(result.Usage, result.FinishReason, result.ProcessingTime)
}

func (h *Handler) quickScore(c *gin.Context) {
	var req struct {
		CVText string `json:"cvText"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CVText) == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "CV text is required")
		return
	}

	score, err := h.Svc.QuickScore(c.Request.Context(), req.CVText)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeProcessing, "Failed to get CV score")
		return
	}
	respond.OK(c, score)
}

func (h *Handler) generateImprovements(c *gin.Context) {
	var req struct {
		CVText     string `json:"cvText"`
		TargetRole string `json:"targetRole"`
		Industry   string `json:"industry"`
	}
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.CVText) == "" ||
		strings.TrimSpace(req.TargetRole) == "" ||
		strings.TrimSpace(req.Industry) == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "CV text, target role, and industry are required")
		return
	}

	improvements, err := h.Svc.Improvements(c.Request.Context(), req.CVText, req.TargetRole, req.Industry)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeProcessing, "Failed to generate improvements")
		return
	}
	respond.OK(c, improvements)
}

func (h *Handler) getUploadProgress(c *gin.Context) {
	uploadID := strings.TrimSpace(c.Query("uploadId"))
	if uploadID == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "Upload ID required")
		return
	}
	respond.OK(c, gin.H{
		"uploadId": uploadID,
		"progress": h.Progress.Get(uploadID),
	})
}

func (h *Handler) setUploadProgress(c *gin.Context) {
	var req struct {
		UploadID string `json:"uploadId"`
		Progress *int   `json:"progress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Progress == nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "Invalid data")
		return
	}
	if req.UploadID == "" {
		req.UploadID = uuid.NewString()
	}
	c.Set("uploadId", req.UploadID)
	h.Progress.Set(req.UploadID, *req.Progress)
	respond.OK(c, gin.H{
		"uploadId": req.UploadID,
		"progress": h.Progress.Get(req.UploadID),
	})
}

// bindAnalyzeForm validates the multipart form shared by both analyze
// endpoints. MIME type and size are checked against the declared values
// before any file content is read.
func (h *Handler) bindAnalyzeForm(c *gin.Context) (*multipart.FileHeader, llm.RoastOptions, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, msgNoFile)
		return nil, llm.RoastOptions{}, false
	}
	if !extract.AllowedType(fileHeader.Header.Get("Content-Type")) {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, msgBadType)
		return nil, llm.RoastOptions{}, false
	}
	if fileHeader.Size > extract.MaxFileBytes {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, msgTooBig)
		return nil, llm.RoastOptions{}, false
	}

	tone, ok := llm.ParseTone(c.PostForm("roastTone"))
	if !ok {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, `roastTone must be "light" or "heavy"`)
		return nil, llm.RoastOptions{}, false
	}

	var focusAreas []string
	if raw := strings.TrimSpace(c.PostForm("focusAreas")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &focusAreas); err != nil {
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "focusAreas must be a JSON array")
			return nil, llm.RoastOptions{}, false
		}
	}

	experience := strings.TrimSpace(c.PostForm("experience"))
	switch experience {
	case "", "entry", "mid", "senior":
	default:
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, `experience must be "entry", "mid" or "senior"`)
		return nil, llm.RoastOptions{}, false
	}

	opts := llm.RoastOptions{
		Tone:       tone,
		FocusAreas: focusAreas,
		ShowEmojis: c.PostForm("showEmojis") == "true",
	}
	targetRole := strings.TrimSpace(c.PostForm("targetRole"))
	industry := strings.TrimSpace(c.PostForm("industry"))
	if targetRole != "" || experience != "" || industry != "" {
		opts.UserContext = &llm.UserContext{
			TargetRole: targetRole,
			Experience: experience,
			Industry:   industry,
		}
	}
	return fileHeader, opts, true
}

// consumeQuota takes one usage unit for the caller, rejecting with an
// upgrade prompt when the daily quota is spent.
func (h *Handler) consumeQuota(c *gin.Context) bool {
	if h.Usage == nil {
		return true
	}
	userID := middleware.UserIDFromContext(c)
	if _, err := h.Usage.Increment(c.Request.Context(), userID); err != nil {
		if errors.Is(err, usage.ErrLimitReached) {
			metrics.IncQuotaRejected()
			respond.Error(c, http.StatusTooManyRequests, ErrorCodeQuota, msgQuota)
		} else {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to check usage")
		}
		return false
	}
	return true
}

func (h *Handler) parseUpload(c *gin.Context, fileHeader *multipart.FileHeader) (extract.ParsedCV, bool) {
	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeProcessing, msgBadParse)
		return extract.ParsedCV{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, extract.MaxFileBytes+1))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeProcessing, msgBadParse)
		return extract.ParsedCV{}, false
	}
	if int64(len(data)) > extract.MaxFileBytes {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, msgTooBig)
		return extract.ParsedCV{}, false
	}

	parsed, err := extract.Parse(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	if err != nil {
		if errors.Is(err, extract.ErrNotEnoughText) {
			respond.Error(c, http.StatusInternalServerError, ErrorCodeExtraction, msgNoText)
		} else {
			respond.Error(c, http.StatusInternalServerError, ErrorCodeProcessing, msgBadParse)
		}
		return extract.ParsedCV{}, false
	}
	return parsed, true
}
