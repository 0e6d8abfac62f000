package fetcher

import "net/netip"

// IPRange is the named address block an IP belongs to.
type IPRange string

const (
	RangePublic          IPRange = "public"
	RangePrivate         IPRange = "private"
	RangeLoopback        IPRange = "loopback"
	RangeLinkLocal       IPRange = "linkLocal"
	RangeMulticast       IPRange = "multicast"
	RangeReserved        IPRange = "reserved"
	RangeUnspecified     IPRange = "unspecified"
	RangeUniqueLocal     IPRange = "uniqueLocal"
	RangeBroadcast       IPRange = "broadcastAddress"
	RangeCarrierGradeNAT IPRange = "carrierGradeNat"
	RangeUnknown         IPRange = "unknown"
)

type prefixRange struct {
	prefix netip.Prefix
	name   IPRange
}

// Order matters: the broadcast host is matched before the reserved 240.0.0.0/4 block.
var ipv4Ranges = []prefixRange{
	{netip.MustParsePrefix("0.0.0.0/8"), RangeUnspecified},
	{netip.MustParsePrefix("255.255.255.255/32"), RangeBroadcast},
	{netip.MustParsePrefix("224.0.0.0/4"), RangeMulticast},
	{netip.MustParsePrefix("169.254.0.0/16"), RangeLinkLocal},
	{netip.MustParsePrefix("127.0.0.0/8"), RangeLoopback},
	{netip.MustParsePrefix("100.64.0.0/10"), RangeCarrierGradeNAT},
	{netip.MustParsePrefix("10.0.0.0/8"), RangePrivate},
	{netip.MustParsePrefix("172.16.0.0/12"), RangePrivate},
	{netip.MustParsePrefix("192.168.0.0/16"), RangePrivate},
	{netip.MustParsePrefix("192.0.0.0/24"), RangeReserved},
	{netip.MustParsePrefix("192.0.2.0/24"), RangeReserved},
	{netip.MustParsePrefix("192.88.99.0/24"), RangeReserved},
	{netip.MustParsePrefix("198.18.0.0/15"), RangeReserved},
	{netip.MustParsePrefix("198.51.100.0/24"), RangeReserved},
	{netip.MustParsePrefix("203.0.113.0/24"), RangeReserved},
	{netip.MustParsePrefix("240.0.0.0/4"), RangeReserved},
}

var ipv6Ranges = []prefixRange{
	{netip.MustParsePrefix("::/128"), RangeUnspecified},
	{netip.MustParsePrefix("::1/128"), RangeLoopback},
	{netip.MustParsePrefix("fe80::/10"), RangeLinkLocal},
	{netip.MustParsePrefix("ff00::/8"), RangeMulticast},
	{netip.MustParsePrefix("fc00::/7"), RangeUniqueLocal},
	{netip.MustParsePrefix("2001:db8::/32"), RangeReserved},
	{netip.MustParsePrefix("100::/64"), RangeReserved},
}

// ClassifyIP returns the range an address falls in. IPv4-mapped IPv6
// addresses (::ffff:10.0.0.1) are classified as the IPv4 address they carry.
func ClassifyIP(addr netip.Addr) IPRange {
	if !addr.IsValid() {
		return RangeUnknown
	}
	addr = addr.Unmap()

	table := ipv6Ranges
	if addr.Is4() {
		table = ipv4Ranges
	}
	for _, r := range table {
		if r.prefix.Contains(addr) {
			return r.name
		}
	}
	return RangePublic
}

// IsSafeAddr reports whether addr may be contacted by the fetcher.
func IsSafeAddr(addr netip.Addr) bool {
	return ClassifyIP(addr) == RangePublic
}

// IsSafeIP parses ip and reports whether it is a public address.
// Anything that fails to parse is unsafe.
func IsSafeIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return IsSafeAddr(addr)
}
