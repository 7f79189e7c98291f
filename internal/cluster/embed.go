package cluster

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"

	"github.com/dbsmedya/ytcomments/internal/config"
	"github.com/dbsmedya/ytcomments/internal/logger"
)

// Embedder turns texts into vectors of equal length. Implementations return
// one vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// NewEmbedder builds the embedder selected by cfg.Embedder.
func NewEmbedder(cfg *config.ClusterConfig, log *logger.Logger) (Embedder, error) {
	switch cfg.Embedder {
	case "", "hash":
		return NewHashEmbedder(cfg.Dimensions), nil
	case "http":
		return NewHTTPEmbedder(cfg.Endpoint, cfg.Model, cfg.BatchSize, log)
	default:
		return nil, fmt.Errorf("unknown embedder %q (must be 'hash' or 'http')", cfg.Embedder)
	}
}

// HashEmbedder is a deterministic bag-of-features embedder. Lower-cased word
// tokens and character trigrams are hashed into a fixed number of buckets.
// Near-duplicate comments land close together without a model.
type HashEmbedder struct {
	dims int
}

const defaultHashDims = 256

// NewHashEmbedder creates a HashEmbedder. dims <= 0 uses 256.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = defaultHashDims
	}
	return &HashEmbedder{dims: dims}
}

// Embed implements Embedder.
func (h *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *HashEmbedder) vector(text string) []float32 {
	v := make([]float32, h.dims)
	lower := strings.ToLower(text)

	for _, word := range strings.FieldsFunc(lower, isSeparator) {
		v[h.bucket("w:"+word)] += 2
	}

	runes := []rune(" " + lower + " ")
	for i := 0; i+3 <= len(runes); i++ {
		v[h.bucket("g:"+string(runes[i:i+3]))]++
	}

	normalize(v)
	return v
}

func (h *HashEmbedder) bucket(feature string) int {
	f := fnv.New32a()
	_, _ = f.Write([]byte(feature))
	return int(f.Sum32() % uint32(h.dims))
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
}

// normalize scales v to unit length in place. Zero vectors stay zero.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

// HTTPEmbedder calls a text-embeddings-inference style server:
// POST {endpoint}/embed with {"inputs": [...]} returning [][]float32.
type HTTPEmbedder struct {
	http      *resty.Client
	model     string
	batchSize int
	logger    *logger.Logger
}

const defaultBatchSize = 64

type embedRequest struct {
	Inputs    []string `json:"inputs"`
	Normalize bool     `json:"normalize"`
	Truncate  bool     `json:"truncate"`
}

// NewHTTPEmbedder creates an HTTPEmbedder for endpoint.
func NewHTTPEmbedder(endpoint, model string, batchSize int, log *logger.Logger) (*HTTPEmbedder, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is required for the http embedder")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if log == nil {
		log = logger.NewDefault()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(endpoint, "/")).
		SetTimeout(2*time.Minute).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &HTTPEmbedder{http: client, model: model, batchSize: batchSize, logger: log}, nil
}

// Embed implements Embedder. Texts are sent in batches; returned vectors are
// normalized locally as well.
func (e *HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))

		var vectors [][]float32
		resp, err := e.http.R().
			SetContext(ctx).
			SetBody(embedRequest{Inputs: texts[start:end], Normalize: true, Truncate: true}).
			SetResult(&vectors).
			Post("/embed")
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch %d-%d: %w", start, end, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("embedding server returned %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("embedding server returned %d vectors for %d inputs", len(vectors), end-start)
		}

		for _, v := range vectors {
			if len(out) > 0 && len(v) != len(out[0]) {
				return nil, fmt.Errorf("embedding dimension changed from %d to %d", len(out[0]), len(v))
			}
			normalize(v)
			out = append(out, v)
		}
		e.logger.Debugf("embedded %d/%d texts with %s", len(out), len(texts), e.modelName())
	}
	return out, nil
}

func (e *HTTPEmbedder) modelName() string {
	if e.model == "" {
		return "server default model"
	}
	return e.model
}
