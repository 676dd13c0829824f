package utils

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFromDBURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"with port", "postgresql://user:pw@db.local:6543/re", "db.local:6543"},
		{"default port", "postgresql://user:pw@db.local/re", "db.local:5432"},
		{"postgres scheme", "postgres://user@localhost:5432/re?sslmode=disable", "localhost:5432"},
		{"no credentials", "postgresql://localhost/re", "localhost:5432"},
		{"other scheme", "mysql://localhost/re", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFromDBURL(tt.url))
		})
	}
}

func TestExtractFromNatsURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"with port", "nats://localhost:4223", "localhost:4223"},
		{"default port", "nats://broker", "broker:4222"},
		{"credentials", "nats://u:p@broker:1234", "broker:1234"},
		{"server list", "nats://a:1,nats://b:2", "a:1"},
		{"tls", "tls://secure", "secure:4222"},
		{"invalid", "http://broker", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFromNatsURL(tt.url))
		})
	}
}

func TestWaitForTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = WaitForTCP(context.Background(), ln.Addr().String(), time.Second)
	assert.NoError(t, err)
}

func TestWaitForTCPTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	err = WaitForTCP(context.Background(), addr, 300*time.Millisecond)
	assert.Error(t, err)
}
