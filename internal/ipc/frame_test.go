package ipc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/sharma-sourabh3435/imagegen/internal/models"
)

func TestJobAndEnvelopeFrames(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	job := models.Job{CorrelationID: 7, Prompt: "A cat", Height: 64, Width: 32, Steps: 2, GuidanceScale: 1.5}
	if err := enc.Encode(job); err != nil {
		t.Fatalf("Failed to encode job: %v", err)
	}
	if err := enc.Encode(StateEnvelope(models.WorkerLoading)); err != nil {
		t.Fatalf("Failed to encode state: %v", err)
	}
	if err := enc.Encode(ResultEnvelope(models.Result{CorrelationID: 7, Image: []byte{1, 2, 3}})); err != nil {
		t.Fatalf("Failed to encode result: %v", err)
	}

	dec := NewDecoder(&buf)

	var gotJob models.Job
	if err := dec.Decode(&gotJob); err != nil {
		t.Fatalf("Failed to decode job: %v", err)
	}
	if gotJob != job {
		t.Errorf("Expected %+v, got %+v", job, gotJob)
	}

	var state Envelope
	if err := dec.Decode(&state); err != nil {
		t.Fatalf("Failed to decode state: %v", err)
	}
	if state.Kind != KindState || state.State != models.WorkerLoading {
		t.Errorf("Expected loading state envelope, got %+v", state)
	}

	var result Envelope
	if err := dec.Decode(&result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.Kind != KindResult || result.Result == nil || result.Result.CorrelationID != 7 {
		t.Fatalf("Expected result envelope for job 7, got %+v", result)
	}
	if !bytes.Equal(result.Result.Image, []byte{1, 2, 3}) {
		t.Errorf("Expected image bytes to survive, got %v", result.Result.Image)
	}

	if err := dec.Decode(&result); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF at end of stream, got %v", err)
	}
}

func TestDecodeTruncatedFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(models.Job{CorrelationID: 1, Prompt: "x"}); err != nil {
		t.Fatalf("Failed to encode job: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-2]

	var job models.Job
	err := NewDecoder(bytes.NewReader(truncated)).Decode(&job)
	if err == nil || errors.Is(err, io.EOF) {
		t.Errorf("Expected a truncation error, got %v", err)
	}
}

func TestDecodeRejectsOversizedFrame(t *testing.T) {
	prefix := make([]byte, 4)
	binary.BigEndian.PutUint32(prefix, MaxFrameSize+1)

	var job models.Job
	err := NewDecoder(bytes.NewReader(prefix)).Decode(&job)
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("Expected ErrFrameTooLarge, got %v", err)
	}
}

func TestEncodeWriteFailure(t *testing.T) {
	r, w := io.Pipe()
	r.Close()

	err := NewEncoder(w).Encode(models.Job{CorrelationID: 1})
	if !errors.Is(err, ErrWrite) {
		t.Errorf("Expected ErrWrite, got %v", err)
	}
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Expected the pipe error to be kept, got %v", err)
	}
}
