package graph

import (
	"context"
	"log"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
)

// TraceCallback logs node lifecycle during graph execution. Attached
// only when debug mode is on.
type TraceCallback struct {
	callbacks.HandlerBuilder
}

var _ callbacks.Handler = (*TraceCallback)(nil)

type traceStartKey struct{}

func (cb *TraceCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if info != nil {
		log.Printf("[Graph] node start: %s", info.Name)
	}
	return context.WithValue(ctx, traceStartKey{}, time.Now())
}

func (cb *TraceCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if info != nil {
		if start, ok := ctx.Value(traceStartKey{}).(time.Time); ok {
			log.Printf("[Graph] node done: %s (%s)", info.Name, time.Since(start).Round(time.Millisecond))
		} else {
			log.Printf("[Graph] node done: %s", info.Name)
		}
	}
	return ctx
}

func (cb *TraceCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	name := ""
	if info != nil {
		name = info.Name
	}
	log.Printf("[Graph] node error: %s: %v", name, err)
	return ctx
}

// The lambda nodes in this package do not stream, so the stream
// variants only drain the reader and reuse the plain handlers.

func (cb *TraceCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return cb.OnStart(ctx, info, nil)
}

func (cb *TraceCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	defer output.Close()
	return cb.OnEnd(ctx, info, nil)
}
