package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"

	"github.com/fulluproar/backoffice/internal/domain/shared"
)

// Remote fetch defaults
const (
	DefaultRemoteFetchTimeout = 15 * time.Second
	DefaultRemoteMaxBytes     = 20 << 20
)

var (
	// ErrRemoteUnavailable is returned when a remote image cannot be fetched
	ErrRemoteUnavailable = shared.NewDomainError("IMAGE_FETCH_FAILED", "remote image could not be fetched")
	// ErrRemoteTooLarge is returned when a remote image exceeds the size limit
	ErrRemoteTooLarge = shared.NewDomainError("IMAGE_TOO_LARGE", "remote image exceeds the size limit")
	// ErrRemoteForbidden is returned when a remote image URL resolves to an
	// address the fetcher may not dial
	ErrRemoteForbidden = shared.NewDomainError("IMAGE_SOURCE_FORBIDDEN", "remote image address is not allowed")
)

var errForbiddenAddress = errors.New("forbidden address")

// RemoteFetcher downloads images referenced by URL. Unless private networks
// are allowed, every dialed address (redirects included) must be public.
type RemoteFetcher struct {
	client       *http.Client
	maxBytes     int64
	allowPrivate bool
}

// RemoteFetcherOption configures a RemoteFetcher
type RemoteFetcherOption func(*RemoteFetcher)

// AllowPrivateNetworks lets URLs resolve to loopback, private and
// link-local addresses
func AllowPrivateNetworks() RemoteFetcherOption {
	return func(f *RemoteFetcher) {
		f.allowPrivate = true
	}
}

// NewRemoteFetcher creates a fetcher with a per-request timeout and size limit
func NewRemoteFetcher(timeout time.Duration, maxBytes int64, opts ...RemoteFetcherOption) *RemoteFetcher {
	if timeout <= 0 {
		timeout = DefaultRemoteFetchTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultRemoteMaxBytes
	}
	f := &RemoteFetcher{maxBytes: maxBytes}
	for _, opt := range opts {
		opt(f)
	}

	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	if !f.allowPrivate {
		dialer.Control = dialControl
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	f.client = &http.Client{Timeout: timeout, Transport: transport}
	return f
}

// dialControl runs after DNS resolution, so it sees the address actually dialed
func dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !publicAddr(addr) {
		return fmt.Errorf("%w: %s", errForbiddenAddress, addr)
	}
	return nil
}

func publicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsValid() &&
		!addr.IsLoopback() &&
		!addr.IsPrivate() &&
		!addr.IsUnspecified() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsLinkLocalMulticast() &&
		!addr.IsInterfaceLocalMulticast() &&
		!addr.IsMulticast()
}

// Fetch GETs rawURL. Only http and https URLs are accepted.
func (f *RemoteFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, shared.ErrInvalidInput.WithMessage("image url must be an absolute http(s) url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, errForbiddenAddress) {
			return nil, ErrRemoteForbidden
		}
		return nil, ErrRemoteUnavailable.WithMessage("remote image could not be fetched: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrRemoteUnavailable.WithMessage(fmt.Sprintf("remote image returned HTTP %d", resp.StatusCode))
	}
	if resp.ContentLength > f.maxBytes {
		return nil, ErrRemoteTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, ErrRemoteUnavailable.WithMessage("remote image could not be read: " + err.Error())
	}
	if int64(len(data)) > f.maxBytes {
		return nil, ErrRemoteTooLarge
	}
	return data, nil
}
