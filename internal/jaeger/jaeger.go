package jaeger

import (
	"go.opentelemetry.io/otel/exporters/jaeger"
)

const defaultEndpoint = "http://localhost:14268/api/traces"

// MustNewJaeger creates an exporter for a collector endpoint. An empty
// endpoint uses the local collector.
func MustNewJaeger(endpoint string) *jaeger.Exporter {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(endpoint),
	))
	if err != nil {
		panic(err)
	}

	return exp
}
