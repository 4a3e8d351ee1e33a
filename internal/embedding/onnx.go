package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var ortRuntime struct {
	once sync.Once
	err  error
}

// initRuntime loads the ONNX Runtime shared library once per process.
func initRuntime(libPath string) error {
	ortRuntime.once.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortRuntime.err = ort.InitializeEnvironment()
	})
	return ortRuntime.err
}

// ONNXConfig locates a sentence-transformers model exported to ONNX
// (all-MiniLM-L6-v2 by default).
type ONNXConfig struct {
	ModelPath   string
	VocabPath   string
	LibraryPath string
	Threads     int
}

// ONNXEmbedder runs a BERT-style encoder locally and mean-pools the token
// states into one vector per text.
type ONNXEmbedder struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	tok     *wordPiece
	dim     int64
}

// NewONNX loads the model and vocabulary.
func NewONNX(cfg ONNXConfig) (*ONNXEmbedder, error) {
	if err := initRuntime(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("embedding: init onnx runtime: %w", err)
	}

	v, err := loadVocabFile(cfg.VocabPath)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("embedding: read model info: %w", err)
	}
	want := []string{"input_ids", "attention_mask", "token_type_ids"}
	have := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		have[in.Name] = true
	}
	for _, name := range want {
		if !have[name] {
			return nil, fmt.Errorf("embedding: model has no %q input", name)
		}
	}
	if len(outputs) == 0 || len(outputs[0].Dimensions) != 3 {
		return nil, fmt.Errorf("embedding: expected a [batch, seq, dim] output")
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("embedding: session options: %w", err)
	}
	defer opts.Destroy()
	threads := cfg.Threads
	if threads <= 0 {
		threads = 2
	}
	if err := opts.SetIntraOpNumThreads(threads); err != nil {
		return nil, fmt.Errorf("embedding: set threads: %w", err)
	}

	sess, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, want, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("embedding: create session: %w", err)
	}

	return &ONNXEmbedder{
		session: sess,
		tok:     newWordPiece(v),
		dim:     outputs[0].Dimensions[2],
	}, nil
}

// Dim returns the embedding width.
func (e *ONNXEmbedder) Dim() int { return int(e.dim) }

func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enc := e.tok.encode(texts)
	hidden, err := e.run(enc)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}

	pooled := meanPool(hidden, enc.mask, enc.batch, enc.seqLen, e.dim)
	out := make([][]float32, enc.batch)
	for i := int64(0); i < enc.batch; i++ {
		out[i] = pooled[i*e.dim : (i+1)*e.dim]
	}
	return out, nil
}

func (e *ONNXEmbedder) run(enc encoding) ([]float32, error) {
	shape := ort.NewShape(enc.batch, enc.seqLen)

	ids, err := ort.NewTensor(shape, enc.ids)
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer ids.Destroy()
	mask, err := ort.NewTensor(shape, enc.mask)
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer mask.Destroy()
	types, err := ort.NewTensor(shape, enc.typeIDs)
	if err != nil {
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer types.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(enc.batch, enc.seqLen, e.dim))
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer out.Destroy()

	e.mu.Lock()
	err = e.session.Run([]ort.Value{ids, mask, types}, []ort.Value{out})
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	return append([]float32(nil), out.GetData()...), nil
}

func (e *ONNXEmbedder) Close() error {
	if e.session == nil {
		return nil
	}
	return e.session.Destroy()
}

// meanPool averages token states over positions where mask is 1.
func meanPool(hidden []float32, mask []int64, batch, seqLen, dim int64) []float32 {
	out := make([]float32, batch*dim)
	for b := int64(0); b < batch; b++ {
		var n float32
		dst := out[b*dim : (b+1)*dim]
		for s := int64(0); s < seqLen; s++ {
			if mask[b*seqLen+s] != 1 {
				continue
			}
			n++
			tok := hidden[(b*seqLen+s)*dim : (b*seqLen+s+1)*dim]
			for d := range dst {
				dst[d] += tok[d]
			}
		}
		if n == 0 {
			continue
		}
		for d := range dst {
			dst[d] /= n
		}
	}
	return out
}
