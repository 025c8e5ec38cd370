// Package tracer installs the process-wide opentracing tracer
// Package tracer 安装进程级 opentracing 追踪器
package tracer

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Config 追踪配置
type Config struct {
	ServiceName string
	// AgentHostPort Jaeger agent 地址，为空时使用 NoopTracer
	AgentHostPort string
	// SamplerParam 采样比例，0 表示全部采样
	SamplerParam float64
}

// NewJaegerTracer builds a Jaeger tracer reporting to the configured agent
// NewJaegerTracer 创建上报到 Jaeger agent 的追踪器
func NewJaegerTracer(cfg Config) (opentracing.Tracer, io.Closer, error) {
	if cfg.AgentHostPort == "" {
		return opentracing.NoopTracer{}, nopCloser{}, nil
	}

	sampler := &jaegercfg.SamplerConfig{Type: jaeger.SamplerTypeConst, Param: 1}
	if cfg.SamplerParam > 0 && cfg.SamplerParam < 1 {
		sampler = &jaegercfg.SamplerConfig{Type: jaeger.SamplerTypeProbabilistic, Param: cfg.SamplerParam}
	}

	jc := jaegercfg.Configuration{
		ServiceName: cfg.ServiceName,
		Sampler:     sampler,
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: cfg.AgentHostPort,
		},
	}
	t, closer, err := jc.NewTracer()
	if err != nil {
		return nil, nil, errors.Wrap(err, "create jaeger tracer")
	}
	return t, closer, nil
}

// Setup creates the tracer and registers it as the global tracer
// Setup 创建追踪器并注册为全局追踪器
func Setup(cfg Config) (io.Closer, error) {
	t, closer, err := NewJaegerTracer(cfg)
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(t)
	return closer, nil
}
