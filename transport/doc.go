//
// Package transport owns the two raw ICMP sockets (v4, v6) and the single
// epoll poller multiplexing them. It is the only place in pingfs that
// issues send/recv on a raw socket.
//
package transport
