package hostpeer

import (
	"bufio"
	"io"
	"os"

	"github.com/tredeske/u/uerr"
	"github.com/tredeske/u/ulog"
	"github.com/tredeske/u/unet"
)

const maxTokenBytes = 256 // per original_source host file token limit

const ErrNoHostsResolved = uerr.Const("hostpeer: no hosts resolved from host file")

// ParseHostFile reads a whitespace-separated list of hostnames, one
// token per host, from path ("-" reads standard input).
func ParseHostFile(path string) (tokens []string, err error) {
	var r io.Reader
	if "-" == path {
		r = os.Stdin
	} else {
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, uerr.Chainf(openErr, "opening host file %s", path)
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		tok := scanner.Text()
		if maxTokenBytes < len(tok) {
			ulog.Warnf("hostpeer: skipping host token over %d bytes", maxTokenBytes)
			continue
		}
		tokens = append(tokens, tok)
	}
	if err = scanner.Err(); err != nil {
		return nil, uerr.Chainf(err, "reading host file %s", path)
	}
	return
}

// ResolveHostFile reads and resolves a host file into candidate
// addresses. Per original_source (host.c), a dual-stack hostname
// contributes one candidate per resolved address, not one candidate per
// hostname, so the evaluator can accept/reject each address family
// independently.
//
// Individual resolution failures are skipped with a warning; total
// failure to resolve anything is left for the caller to treat as fatal.
func ResolveHostFile(path string) (candidates []unet.Address, err error) {
	tokens, err := ParseHostFile(path)
	if err != nil {
		return nil, err
	}
	for _, host := range tokens {
		addrs, resolveErr := unet.ResolveAddrs(host)
		if resolveErr != nil {
			ulog.Warnf("hostpeer: could not resolve %q: %s", host, resolveErr)
			continue
		}
		candidates = append(candidates, addrs...)
	}
	if 0 == len(candidates) {
		return nil, ErrNoHostsResolved
	}
	return
}
