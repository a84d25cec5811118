package hostpeer

import (
	"bytes"
	"time"

	"github.com/cornelk/hashmap"

	"github.com/tredeske/u/uerr"
	"github.com/tredeske/u/ulog"
	"github.com/tredeske/u/unet"
	"github.com/tredeske/u/usync"

	"github.com/tredeske/pingfs/transport"
)

const rounds = 5
const probePayloadLen = 1024

// maxConcurrentProbes caps how many candidates get probed at once per
// round, so a large host file doesn't open thousands of goroutines each
// doing a single Send call.
const maxConcurrentProbes = 32

const ErrNoHostsPassed = uerr.Const("hostpeer: no candidate host passed evaluation")

var evalDebug = ulog.NewDebug("hostpeer")

// probePattern is the fixed probe payload: byte i == i mod 256.
func probePattern() []byte {
	b := make([]byte, probePayloadLen)
	for i := range b {
		b[i] = byte(i % 256)
	}
	return b
}

// probeRecord is the per-candidate, per-round bookkeeping shared between
// the goroutine sending probes and the goroutine (the caller's, running
// transport.Recv) accepting replies. Both touch the same record
// concurrently for the duration of one round, hence the lock-free map and
// atomic fields rather than a record-per-access allocation under a mutex.
type probeRecord struct {
	host       unet.Address
	expectSeq  uint16
	sendAtNano usync.AtomicInt
	replied    usync.AtomicBool
	rttNano    usync.AtomicInt
}

// Evaluate loss-tests candidates over 5 rounds, using t to send and
// receive probes. A candidate passes only if it replies
// correctly to every round; passing candidates, in evaluation order,
// become Hosts. avgRTT is computed over every accepted round-trip,
// passing or not.
func Evaluate(
	t *transport.Transport,
	candidates []unet.Address,
	roundTimeout time.Duration,
) (
	passed []Host,
	avgRTT time.Duration,
	err error,
) {
	if 0 == len(candidates) {
		return nil, 0, ErrNoHostsResolved
	}

	payload := probePattern()
	seqs := make([]uint16, len(candidates))
	passes := make([]int, len(candidates))
	for i := range seqs {
		seqs[i] = uint16(2 * i)
	}

	var rttTotalNano, rttCount int64

	for round := 0; round < rounds; round++ {
		records := hashmap.New[uint16, *probeRecord]()

		var repliedCount usync.AtomicInt

		sendPool := usync.Workers{}
		workers := maxConcurrentProbes
		if workers > len(candidates) {
			workers = len(candidates)
		}
		sendPool.Go(workers, func() usync.WorkF {
			return func(req any) {
				i := req.(int)
				candidate := candidates[i]
				id := uint16(i)
				rec := &probeRecord{host: candidate, expectSeq: seqs[id]}
				records.Set(id, rec)
				rec.sendAtNano.Set(time.Now().UnixNano())
				if sendErr := t.Send(candidate, id, seqs[id], payload); sendErr != nil {
					ulog.Warnf("hostpeer: probe to %s: %s", candidate.Ip(), sendErr)
				}
			}
		})
		go func() {
			for i := range candidates {
				sendPool.Put(i)
			}
			sendPool.Close()
		}()

		deadline := time.Now().Add(roundTimeout)
		for time.Now().Before(deadline) && int(repliedCount.Get()) < len(candidates) {
			remaining := time.Until(deadline)
			if 0 >= remaining {
				break
			}
			_, recvErr := t.Recv(remaining, func(peer unet.Address, id, seq uint16, got []byte) {
				rec, ok := records.Get(id)
				if !ok || !rec.host.Ip().Equal(peer.Ip()) {
					return
				}
				if seq != rec.expectSeq || len(got) != len(payload) || !bytes.Equal(got, payload) {
					return
				}
				if rec.replied.SetUnlessSet() {
					rtt := time.Now().UnixNano() - rec.sendAtNano.Get()
					rec.rttNano.Set(rtt)
					repliedCount.Add(1)
					evalDebug.F("accepted reply from %s, id=%d seq=%d fingerprint=%x",
						peer.Ip(), id, seq, usync.HashBytes(got))
				}
			})
			if recvErr != nil {
				break
			}
		}

		for i := range candidates {
			rec, ok := records.Get(uint16(i))
			if ok && rec.replied.IsSet() {
				passes[i]++
				seqs[i]++
				rttTotalNano += rec.rttNano.Get()
				rttCount++
			}
		}
	}

	for i, candidate := range candidates {
		if rounds == passes[i] {
			passed = append(passed, Host{Addr: candidate})
		} else {
			ulog.Printf("hostpeer: %s failed evaluation (%d/%d rounds)",
				candidate.Ip(), passes[i], rounds)
		}
	}

	if 0 != rttCount {
		avgRTT = time.Duration(rttTotalNano / rttCount)
	}
	if 0 == len(passed) {
		return nil, avgRTT, ErrNoHostsPassed
	}
	return passed, avgRTT, nil
}
