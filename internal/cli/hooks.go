package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtower/pkg/observability"
)

// logHooks reports pipeline, cache, HTTP and session events at debug
// level, so 'orgtower -v' traces where the time goes.
type logHooks struct {
	logger *log.Logger
}

// installHooks routes every observability event to l.
func installHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("trace")}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
	observability.SetSessionHooks(h)
}

func (h logHooks) OnBuildStart(_ context.Context, source string, rowCount int) {
	h.logger.Debug("build start", "source", source, "rows", rowCount)
}

func (h logHooks) OnBuildComplete(_ context.Context, source string, nodeCount int, d time.Duration, err error) {
	h.logger.Debug("build done", "source", source, "nodes", nodeCount, "took", d, "err", err)
}

func (h logHooks) OnLayoutStart(_ context.Context, mode string, nodeCount int) {
	h.logger.Debug("layout start", "mode", mode, "nodes", nodeCount)
}

func (h logHooks) OnLayoutComplete(_ context.Context, mode string, d time.Duration, err error) {
	h.logger.Debug("layout done", "mode", mode, "took", d, "err", err)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render done", "formats", formats, "took", d, "err", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "path", path, "status", status, "took", d)
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h logHooks) OnSessionOpen(_ context.Context, id string) {
	h.logger.Debug("session open", "id", id)
}

func (h logHooks) OnSessionClose(_ context.Context, id string, d time.Duration) {
	h.logger.Debug("session close", "id", id, "took", d)
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
	_ observability.HTTPHooks     = logHooks{}
	_ observability.SessionHooks  = logHooks{}
)
