package netio

import "net"

// Endpoint is an IPv4 peer address. Equality compares only the address
// octets: per spec, a sender does not pin the peer's port once the first
// valid handshake arrives, to tolerate NAT port remapping on later
// datagrams from the same address.
type Endpoint struct {
	IP net.IP
}

// EndpointFromUDPAddr extracts the Endpoint (address only) from a UDP source address.
func EndpointFromUDPAddr(addr *net.UDPAddr) Endpoint {
	return Endpoint{IP: addr.IP}
}

// Equal compares two endpoints by IP address only.
func (e Endpoint) Equal(other Endpoint) bool {
	return e.IP.Equal(other.IP)
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	if e.IP == nil {
		return "<nil>"
	}
	return e.IP.String()
}
