// Package statsd sends StatsD gauge lines over UDP.
//
// Lines are coalesced into datagrams no larger than a configured packet
// size (1386 bytes by default). Every datagram is followed by a short pause
// so a burst of packets does not overrun the receiving daemon. Delivery is
// fire-and-forget: nothing is read back and failed writes are not retried.
//
//	e, err := statsd.Dial("127.0.0.1:8125")
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	_ = e.Add(ctx, "haproxy.web01.app.backend.scur:5|g")
//	_ = e.Flush(ctx)
package statsd
