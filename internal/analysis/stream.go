package analysis

import (
	"encoding/json"
	"net/http"

	"roast-backend/internal/extract"
	"roast-backend/internal/llm"
)

// Stream framing: newline-delimited JSON records, each independently
// parseable. The first record is always metadata; zero or more object
// records follow; exactly one terminal record (finish or error) closes the
// stream and nothing may follow it.

const (
	recordMetadata = "metadata"
	recordObject   = "object"
	recordFinish   = "finish"
	recordError    = "error"
)

type streamRecord struct {
	Type           string            `json:"type"`
	Metadata       *extract.Metadata `json:"metadata,omitempty"`
	Object         *PartialAnalysis  `json:"object,omitempty"`
	Usage          *llm.TokenUsage   `json:"usage,omitempty"`
	FinishReason   string            `json:"finishReason,omitempty"`
	ProcessingTime float64           `json:"processingTime,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// streamWriter enforces the framing invariants over an http.ResponseWriter.
type streamWriter struct {
	enc       *json.Encoder
	flusher   http.Flusher
	wroteMeta bool
	closed    bool
}

func newStreamWriter(w http.ResponseWriter) *streamWriter {
	flusher, _ := w.(http.Flusher)
	return &streamWriter{
		enc:     json.NewEncoder(w),
		flusher: flusher,
	}
}

func (sw *streamWriter) Metadata(md extract.Metadata) error {
	if sw.closed || sw.wroteMeta {
		return nil
	}
	sw.wroteMeta = true
	return sw.write(streamRecord{Type: recordMetadata, Metadata: &md})
}

func (sw *streamWriter) Object(partial PartialAnalysis) error {
	if sw.closed || !sw.wroteMeta {
		return nil
	}
	return sw.write(streamRecord{Type: recordObject, Object: &partial})
}

func (sw *streamWriter) Finish(usage llm.TokenUsage, finishReason string, processingTime float64) error {
	if sw.closed {
		return nil
	}
	sw.closed = true
	return sw.write(streamRecord{
		Type:           recordFinish,
		Usage:          &usage,
		FinishReason:   finishReason,
		ProcessingTime: processingTime,
	})
}

func (sw *streamWriter) Error(message string) error {
	if sw.closed {
		return nil
	}
	sw.closed = true
	return sw.write(streamRecord{Type: recordError, Error: message})
}

func (sw *streamWriter) write(rec streamRecord) error {
	if err := sw.enc.Encode(rec); err != nil {
		return err
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	return nil
}
