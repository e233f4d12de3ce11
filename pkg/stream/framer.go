package stream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/nuclearops/lera/pkg/models"
	"github.com/nuclearops/lera/pkg/state"
)

// DefaultBufferSize is how many fragments accumulate before a frame is
// emitted when nothing forces a flush.
const DefaultBufferSize = 5

// FrameWriter is the destination for encoded frames. Each frame is
// flushed so clients see partial output as it is produced.
type FrameWriter interface {
	io.Writer
	Flush()
}

// Framer batches fragments into wire frames for one request. Fragments
// accumulate until the buffer is full or one carries the flush flag;
// after the fragment channel closes it appends the terminal frame,
// either the context payload or a single error.
type Framer struct {
	bufferSize int
	store      *state.Store
	signer     models.URLSigner
}

// NewFramer builds a framer for one request. A non-positive size falls
// back to DefaultBufferSize.
func NewFramer(bufferSize int, store *state.Store, signer models.URLSigner) *Framer {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Framer{bufferSize: bufferSize, store: store, signer: signer}
}

// Stream consumes fragments until the channel closes, then settles the
// stream with the producer's result: on error the buffered fragments
// are discarded and one error frame is written, otherwise the
// remainder is flushed and the context frame terminates the stream.
// The returned error is the producer's, after it has been framed.
func (f *Framer) Stream(ctx context.Context, w FrameWriter, fragments <-chan Message, result <-chan error) error {
	var buffer []string
	var role *models.ChatRole

	fragmentCount := 0
receive:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-fragments:
			if !ok {
				break receive
			}
			fragmentCount++
			if msg.Content == "" {
				// Nothing to buffer, but an empty flush still
				// drains what is already buffered.
				if msg.Meta.Flush {
					if err := f.emit(w, &buffer, role); err != nil {
						return err
					}
				}
				continue
			}
			buffer = append(buffer, msg.Content)
			f.store.AppendChunk(msg.Content)
			r := msg.Role
			role = &r
			if len(buffer) == f.bufferSize || msg.Meta.Flush {
				if err := f.emit(w, &buffer, role); err != nil {
					return err
				}
			}
		}
	}

	if err := <-result; err != nil {
		slog.Error("Stream producer failed", "error", err, "fragments", fragmentCount)
		if werr := f.writeFrame(w, models.ChatErrorResponse{
			Error: models.ChatError{Code: models.ErrorCodeInternal, Message: err.Error()},
		}); werr != nil {
			return werr
		}
		return err
	}

	if err := f.emit(w, &buffer, role); err != nil {
		return err
	}

	payload, err := f.buildContext()
	if err != nil {
		slog.Error("Building context frame failed", "error", err)
		return f.writeFrame(w, models.ChatErrorResponse{
			Error: models.ChatError{Code: models.ErrorCodeInternal, Message: err.Error()},
		})
	}
	slog.Debug("Stream complete",
		"fragments", fragmentCount,
		"documents", len(payload.Documents),
		"chunks_len", len(f.store.AllChunks()))
	return f.writeFrame(w, models.CompletionDelta{
		Delta:   models.MessageDelta{Role: role},
		Context: payload,
	})
}

// emit drains the buffer into one message frame. An empty buffer emits
// nothing.
func (f *Framer) emit(w FrameWriter, buffer *[]string, role *models.ChatRole) error {
	if len(*buffer) == 0 {
		return nil
	}
	content := strings.Join(*buffer, "")
	*buffer = (*buffer)[:0]
	return f.writeFrame(w, models.CompletionDelta{
		Delta: models.MessageDelta{Role: role, Content: &content},
	})
}

func (f *Framer) writeFrame(w FrameWriter, frame any) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\r', '\n')); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// buildContext assembles the terminal payload: cited documents always,
// plus the full registry and the evaluation fields when eval mode is on.
func (f *Framer) buildContext() (*models.ContextPayload, error) {
	evalMode := f.store.EvalMode()
	docs := []models.DocumentRef{}
	for _, r := range f.store.Results() {
		meta := r.Meta()
		if !meta.Cited && !evalMode {
			continue
		}
		url, err := meta.ResolveURL(f.signer)
		if err != nil {
			return nil, err
		}
		ref := models.DocumentRef{
			ID:      meta.ID,
			URL:     url,
			Section: r.DisplayValue(),
		}
		if evalMode {
			searchType := string(r.Kind())
			ref.SearchType = &searchType
			ref.SearchQuery = &meta.SearchQuery
			ref.Cited = &meta.Cited
		}
		docs = append(docs, ref)
	}

	payload := &models.ContextPayload{Documents: docs}
	if evalMode {
		recs := f.store.Recommendations()
		intent := f.store.Intent()
		needed := f.store.UserInputNeeded()
		usage := f.store.Usage()
		payload.Recommendations = &recs
		payload.Intent = &intent
		payload.UserInputNeeded = &needed
		payload.TokenUsage = &usage
	}
	return payload, nil
}
