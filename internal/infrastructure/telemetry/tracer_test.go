package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://jaeger:4318", "jaeger:4318"},
		{"https://collector.example.com/v1/traces", "collector.example.com"},
		{"localhost:4318/", "localhost:4318"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseEndpoint(tt.in), tt.in)
	}
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(0).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
