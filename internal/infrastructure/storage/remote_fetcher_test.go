package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteFetcher_Fetch(t *testing.T) {
	png := samplePNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/card.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(png)
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := NewRemoteFetcher(time.Second, 1024, AllowPrivateNetworks())

	t.Run("ok", func(t *testing.T) {
		data, err := f.Fetch(context.Background(), server.URL+"/card.png")
		require.NoError(t, err)
		assert.Equal(t, png, data)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), server.URL+"/missing.png")
		assert.ErrorIs(t, err, ErrRemoteUnavailable)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), server.URL+"/big")
		assert.ErrorIs(t, err, ErrRemoteTooLarge)
	})

	t.Run("timeout", func(t *testing.T) {
		short := NewRemoteFetcher(50*time.Millisecond, 1024, AllowPrivateNetworks())
		_, err := short.Fetch(context.Background(), server.URL+"/slow")
		assert.ErrorIs(t, err, ErrRemoteUnavailable)
	})

	t.Run("rejects non http urls", func(t *testing.T) {
		for _, u := range []string{"file:///etc/passwd", "ftp://example.com/a.png", "/relative.png", "::"} {
			_, err := f.Fetch(context.Background(), u)
			assert.ErrorIs(t, err, shared.ErrInvalidInput, u)
		}
	})
}

func TestRemoteFetcher_PrivateAddresses(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewRemoteFetcher(time.Second, 1024)

	tests := []struct {
		name string
		url  string
	}{
		{name: "loopback test server", url: server.URL + "/card.png"},
		{name: "localhost name", url: strings.Replace(server.URL, "127.0.0.1", "localhost", 1) + "/card.png"},
		{name: "metadata endpoint", url: "http://169.254.169.254/latest/meta-data/"},
		{name: "unspecified", url: "http://0.0.0.0/"},
		{name: "ipv6 loopback", url: "http://[::1]/"},
		{name: "private range", url: "http://10.0.0.1/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), tt.url)
			assert.ErrorIs(t, err, ErrRemoteForbidden)
		})
	}
	assert.Zero(t, hits)

	t.Run("allowed when private networks are enabled", func(t *testing.T) {
		allowed := NewRemoteFetcher(time.Second, 1024, AllowPrivateNetworks())
		data, err := allowed.Fetch(context.Background(), server.URL+"/card.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), data)
	})
}

func TestPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1:248:1893:25c8:1946", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fc00::1", false},
		{"0.0.0.0", false},
		{"::", false},
		{"224.0.0.1", false},
		{"::ffff:127.0.0.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, publicAddr(netip.MustParseAddr(tt.addr)))
		})
	}
}
