package fetcher_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"news-ingest/internal/infra/fetcher"
)

func TestIsSafeIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"93.184.216.34", true},
		{"8.8.8.8", true},
		{"1.1.1.1", true},
		{"2606:4700:4700::1111", true},

		{"10.0.0.1", false},
		{"127.0.0.1", false},
		{"169.254.169.254", false},
		{"::1", false},
		{"192.168.1.1", false},
		{"172.16.0.1", false},
		{"172.31.255.255", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"255.255.255.255", false},
		{"224.0.0.1", false},
		{"240.0.0.1", false},
		{"192.0.2.10", false},
		{"198.18.0.1", false},
		{"::", false},
		{"fe80::1", false},
		{"fd12:3456::1", false},
		{"ff02::1", false},
		{"2001:db8::1", false},
		{"::ffff:10.0.0.1", false},
		{"::ffff:127.0.0.1", false},

		{"", false},
		{"not-an-ip", false},
		{"999.1.1.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, fetcher.IsSafeIP(tt.ip))
		})
	}
}

func TestClassifyIP(t *testing.T) {
	tests := []struct {
		ip   string
		want fetcher.IPRange
	}{
		{"8.8.8.8", fetcher.RangePublic},
		{"172.32.0.1", fetcher.RangePublic},
		{"10.1.2.3", fetcher.RangePrivate},
		{"127.0.0.53", fetcher.RangeLoopback},
		{"169.254.0.1", fetcher.RangeLinkLocal},
		{"239.255.255.250", fetcher.RangeMulticast},
		{"203.0.113.7", fetcher.RangeReserved},
		{"0.1.2.3", fetcher.RangeUnspecified},
		{"255.255.255.255", fetcher.RangeBroadcast},
		{"100.127.255.255", fetcher.RangeCarrierGradeNAT},
		{"::1", fetcher.RangeLoopback},
		{"fc00::1", fetcher.RangeUniqueLocal},
		{"fe80::abcd", fetcher.RangeLinkLocal},
		{"ff05::2", fetcher.RangeMulticast},
		{"100::1", fetcher.RangeReserved},
		{"::ffff:192.168.0.1", fetcher.RangePrivate},
		{"2a00:1450:4001::200e", fetcher.RangePublic},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, fetcher.ClassifyIP(netip.MustParseAddr(tt.ip)))
		})
	}

	assert.Equal(t, fetcher.RangeUnknown, fetcher.ClassifyIP(netip.Addr{}))
}
