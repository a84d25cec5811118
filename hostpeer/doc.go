//
// Package hostpeer maintains the set of vetted remote ICMP echo peers: the
// host registry (round-robin allocation) and the host evaluator (the
// 5-round loss test that decides which candidate hosts are fit to carry
// chunks).
//
package hostpeer
