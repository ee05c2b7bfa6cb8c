package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/saiset-co/sai-strate/types"
)

func compressionEngine(t *testing.T, config *CompressionConfig) *Engine {
	t.Helper()

	engine, err := NewEngine(&types.Config{
		Middleware: []types.Middleware{
			NewCompressionMiddleware(&recordLogger{}, config),
		},
	}, nil)
	require.NoError(t, err)
	return engine
}

func compressibleHandler(body string) types.Handler {
	return func(req *types.Request, res *types.Response, c *types.Context) error {
		res.SetStatusCode(200)
		res.SetBody([]byte(body))
		return nil
	}
}

func acceptingExchange(encoding string) (*types.Request, *types.Response) {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("GET")
	ctx.Request.SetRequestURI("/payload")
	if encoding != "" {
		ctx.Request.Header.Set("Accept-Encoding", encoding)
	}
	return types.NewRequest(ctx), types.NewResponse(ctx)
}

func TestCompressionGzip(t *testing.T) {
	engine := compressionEngine(t, &CompressionConfig{Threshold: 16})
	original := strings.Repeat("compress me ", 64)

	req, res := acceptingExchange("gzip")
	require.NoError(t, engine.Run(req, res, compressibleHandler(original)))

	assert.Equal(t, "gzip", res.HeaderValue("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", res.HeaderValue("Vary"))
	assert.Less(t, len(res.Body()), len(original))

	r, err := gzip.NewReader(bytes.NewReader(res.Body()))
	require.NoError(t, err)
	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, original, string(decoded))
}

func TestCompressionPrefersBrotli(t *testing.T) {
	engine := compressionEngine(t, &CompressionConfig{Threshold: 16})
	original := strings.Repeat("compress me ", 64)

	req, res := acceptingExchange("br, gzip")
	require.NoError(t, engine.Run(req, res, compressibleHandler(original)))

	assert.Equal(t, "br", res.HeaderValue("Content-Encoding"))

	decoded, err := io.ReadAll(brotli.NewReader(bytes.NewReader(res.Body())))
	require.NoError(t, err)
	assert.Equal(t, original, string(decoded))
}

func TestCompressionSkipsSmallBodies(t *testing.T) {
	engine := compressionEngine(t, nil)
	original := "tiny"

	req, res := acceptingExchange("gzip")
	require.NoError(t, engine.Run(req, res, compressibleHandler(original)))

	assert.Empty(t, res.HeaderValue("Content-Encoding"))
	assert.Equal(t, original, string(res.Body()))
}

func TestCompressionSkipsWithoutAcceptEncoding(t *testing.T) {
	engine := compressionEngine(t, &CompressionConfig{Threshold: 16})
	original := strings.Repeat("compress me ", 64)

	req, res := acceptingExchange("")
	require.NoError(t, engine.Run(req, res, compressibleHandler(original)))

	assert.Empty(t, res.HeaderValue("Content-Encoding"))
	assert.Equal(t, original, string(res.Body()))
}

func TestCompressionSkipsAlreadyEncoded(t *testing.T) {
	engine := compressionEngine(t, &CompressionConfig{Threshold: 16})
	original := strings.Repeat("compress me ", 64)

	handler := func(req *types.Request, res *types.Response, c *types.Context) error {
		res.SetHeader("Content-Encoding", "identity")
		res.SetBody([]byte(original))
		return nil
	}

	req, res := acceptingExchange("gzip")
	require.NoError(t, engine.Run(req, res, handler))

	assert.Equal(t, "identity", res.HeaderValue("Content-Encoding"))
	assert.Equal(t, original, string(res.Body()))
}
