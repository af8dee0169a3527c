package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/dentisalud-funnel/pkg/config"
)

func TestClient_Key(t *testing.T) {
	tests := []struct {
		namespace string
		parts     []string
		want      string
	}{
		{"dentisalud", []string{"contact", "dup", "abc"}, "dentisalud:contact:dup:abc"},
		{"dentisalud:", []string{"directory:regions"}, "dentisalud:directory:regions"},
		{"", []string{"leads"}, "leads"},
	}
	for _, tt := range tests {
		c := NewClientFrom(nil, tt.namespace)
		assert.Equal(t, tt.want, c.Key(tt.parts...))
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// port 1 is never a Redis server
	_, err := NewClient(ctx, &config.RedisConfig{Host: "127.0.0.1", Port: 1, Namespace: "test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
