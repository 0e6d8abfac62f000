package fetcher_test

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"time"
)

// fakeResolver answers from static tables and records every query.
type fakeResolver struct {
	mu    sync.Mutex
	v4    map[string][]string
	v6    map[string][]string
	errV4 error
	errV6 error
	delay time.Duration
	calls []string
}

func (r *fakeResolver) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	r.mu.Lock()
	r.calls = append(r.calls, network+" "+host)
	r.mu.Unlock()

	if r.delay > 0 {
		// Ignores ctx on purpose: the caller must not wait for a slow resolver.
		time.Sleep(r.delay)
	}

	table, err := r.v4, r.errV4
	if network == "ip6" {
		table, err = r.v6, r.errV6
	}
	if err != nil {
		return nil, err
	}
	var addrs []netip.Addr
	for _, s := range table[host] {
		addrs = append(addrs, netip.MustParseAddr(s))
	}
	if len(addrs) == 0 {
		return nil, errors.New("no such host")
	}
	return addrs, nil
}

func (r *fakeResolver) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
