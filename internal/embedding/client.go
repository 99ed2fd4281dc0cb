package embedding

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

// DefaultModel is the OpenAI model used for generating embeddings.
const DefaultModel = "text-embedding-3-small"

// Client wraps the OpenAI embeddings API as the external embedding
// capability consumed by Embedder.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates an OpenAI embeddings client for the given model.
// It requires OPENAI_API_KEY in the environment and returns an error if
// the key is not set. An empty model selects DefaultModel.
func NewClient(model string) (*Client, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if model == "" {
		model = DefaultModel
	}

	// openai-go reads OPENAI_API_KEY from the environment
	client := openai.NewClient()

	return &Client{client: &client, model: model}, nil
}

// EmbedBatch sends a single batch of texts to the embeddings endpoint and
// returns one vector per input, order preserved.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: c.model,
	})
	if err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = toFloat32(data.Embedding)
	}
	return embeddings, nil
}

// toFloat32 converts []float64 to []float32. The API returns float64, but
// the index stores float32 for memory efficiency.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
