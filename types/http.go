package types

import (
	"net/http"
	"net/url"

	"github.com/valyala/fasthttp"
)

// Request is a read view over the request half of a fasthttp context.
type Request struct {
	ctx    *fasthttp.RequestCtx
	header http.Header
	url    *url.URL
}

func NewRequest(ctx *fasthttp.RequestCtx) *Request {
	return &Request{ctx: ctx}
}

func (r *Request) Method() string {
	return string(r.ctx.Method())
}

func (r *Request) Path() string {
	return string(r.ctx.Path())
}

func (r *Request) URL() *url.URL {
	if r.url == nil {
		r.url = &url.URL{
			Path:     string(r.ctx.Path()),
			RawQuery: string(r.ctx.QueryArgs().QueryString()),
		}
	}
	return r.url
}

func (r *Request) Header() http.Header {
	if r.header == nil {
		r.header = make(http.Header)
		r.ctx.Request.Header.VisitAll(func(key, value []byte) {
			r.header.Set(string(key), string(value))
		})
	}
	return r.header
}

// Peek returns a single request header without building the full header map.
func (r *Request) Peek(name string) string {
	return string(r.ctx.Request.Header.Peek(name))
}

func (r *Request) Body() []byte {
	return r.ctx.PostBody()
}

func (r *Request) RemoteAddr() string {
	return r.ctx.RemoteIP().String()
}

// Response is a write view over the response half of a fasthttp context.
type Response struct {
	ctx        *fasthttp.RequestCtx
	statusCode int
}

func NewResponse(ctx *fasthttp.RequestCtx) *Response {
	return &Response{ctx: ctx, statusCode: fasthttp.StatusOK}
}

func (w *Response) SetStatusCode(statusCode int) {
	w.statusCode = statusCode
	w.ctx.SetStatusCode(statusCode)
}

func (w *Response) StatusCode() int {
	return w.ctx.Response.StatusCode()
}

func (w *Response) SetHeader(key, value string) {
	w.ctx.Response.Header.Set(key, value)
}

func (w *Response) HeaderValue(key string) string {
	return string(w.ctx.Response.Header.Peek(key))
}

func (w *Response) VisitHeaders(fn func(key, value string)) {
	w.ctx.Response.Header.VisitAll(func(key, value []byte) {
		fn(string(key), string(value))
	})
}

func (w *Response) Write(data []byte) (int, error) {
	return w.ctx.Write(data)
}

func (w *Response) SetBody(body []byte) {
	w.ctx.Response.SetBody(body)
}

func (w *Response) Body() []byte {
	return w.ctx.Response.Body()
}
