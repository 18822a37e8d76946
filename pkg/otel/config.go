package otel

import (
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config describes the trace pipeline. EndpointURL selects the exporter by
// scheme: grpc:// and grpcs:// use OTLP/gRPC, http:// and https:// use
// OTLP/HTTP. Plain schemes disable TLS.
type Config struct {
	ServiceName        string
	ServiceVersion     string
	Environment        string
	EndpointURL        string
	Enabled            bool
	SampleRatio        float64
	ResourceAttributes map[string]string
}

func DefaultConfig(serviceName string) Config {
	return Config{
		ServiceName:        serviceName,
		SampleRatio:        1.0,
		ResourceAttributes: make(map[string]string),
	}
}

// exporting reports whether spans should leave the process.
func (c Config) exporting() bool {
	return c.Enabled && c.EndpointURL != ""
}

// version falls back to the main module version stamped into the binary.
func (c Config) version() string {
	if c.ServiceVersion != "" {
		return c.ServiceVersion
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return ""
	}
	return info.Main.Version
}

func (c Config) toResourceAttributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(c.ResourceAttributes)+3)
	attrs = append(attrs, semconv.ServiceName(c.ServiceName))
	if v := c.version(); v != "" {
		attrs = append(attrs, semconv.ServiceVersion(v))
	}
	if c.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(c.Environment))
	}

	for k, v := range c.ResourceAttributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	return attrs
}
