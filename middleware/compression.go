package middleware

import (
	"bytes"
	"compress/gzip"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-strate/types"
)

const (
	AlgorithmGzip   = "gzip"
	AlgorithmBrotli = "br"

	defaultCompressionLevel     = 6
	defaultCompressionThreshold = 1024
)

type CompressionConfig struct {
	Level     int `json:"level"`
	Threshold int `json:"threshold"`
}

// CompressionMiddleware compresses the response body on the way out when the
// client accepts brotli or gzip and the body crosses the size threshold.
type CompressionMiddleware struct {
	logger     types.Logger
	config     *CompressionConfig
	gzipPool   sync.Pool
	brotliPool sync.Pool
}

func NewCompressionMiddleware(logger types.Logger, config *CompressionConfig) *CompressionMiddleware {
	if config == nil {
		config = &CompressionConfig{}
	}
	if config.Level <= 0 || config.Level > 11 {
		config.Level = defaultCompressionLevel
	}
	if config.Threshold <= 0 {
		config.Threshold = defaultCompressionThreshold
	}

	cm := &CompressionMiddleware{
		logger: logger,
		config: config,
	}

	cm.gzipPool = sync.Pool{
		New: func() interface{} {
			w, _ := gzip.NewWriterLevel(nil, minLevel(config.Level, gzip.BestCompression))
			return w
		},
	}
	cm.brotliPool = sync.Pool{
		New: func() interface{} {
			return brotli.NewWriterLevel(nil, config.Level)
		},
	}

	return cm
}

func (cm *CompressionMiddleware) Name() string { return "compression" }

func (cm *CompressionMiddleware) Handle(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
	accepted := req.Peek("Accept-Encoding")

	err := next()
	if err != nil {
		return err
	}

	body := res.Body()
	if len(body) < cm.config.Threshold {
		return nil
	}
	if res.HeaderValue("Content-Encoding") != "" {
		return nil
	}

	algorithm := pickAlgorithm(accepted)
	if algorithm == "" {
		return nil
	}

	compressed, compressErr := cm.compress(algorithm, body)
	if compressErr != nil {
		cm.logger.Warn("response compression failed", zap.Error(compressErr))
		return nil
	}

	if len(compressed) >= len(body) {
		return nil
	}

	res.SetBody(compressed)
	res.SetHeader("Content-Encoding", algorithm)
	res.SetHeader("Vary", "Accept-Encoding")

	return nil
}

func (cm *CompressionMiddleware) compress(algorithm string, body []byte) ([]byte, error) {
	var buf bytes.Buffer

	switch algorithm {
	case AlgorithmBrotli:
		w := cm.brotliPool.Get().(*brotli.Writer)
		defer cm.brotliPool.Put(w)
		w.Reset(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case AlgorithmGzip:
		w := cm.gzipPool.Get().(*gzip.Writer)
		defer cm.gzipPool.Put(w)
		w.Reset(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, types.NewErrorf("unsupported compression algorithm: %s", algorithm)
	}

	return buf.Bytes(), nil
}

func pickAlgorithm(accepted string) string {
	if strings.Contains(accepted, AlgorithmBrotli) {
		return AlgorithmBrotli
	}
	if strings.Contains(accepted, AlgorithmGzip) {
		return AlgorithmGzip
	}
	return ""
}

func minLevel(level, max int) int {
	if level > max {
		return max
	}
	return level
}
