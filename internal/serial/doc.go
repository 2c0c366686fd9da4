// Package serial provides the line-oriented serial transport used to talk to
// IM920 radio modules.
//
// The module speaks a CRLF-terminated text protocol over a UART at 19200 baud,
// 8 data bits, no parity and no flow control. This package opens the port
// through one of two drivers and wraps it in a LineTransport that offers the
// operations the protocol engine needs:
//
//   - FlushInput: discard anything received but not yet consumed
//   - Write/Flush: send a frame and wait until it has left the UART
//   - ReadLine: read one line, bounded by the configured read timeout
//   - ReadLines: read lines until the timeout elapses or a cap is reached
//
// # Drivers
//
//   - "bugst" (default): go.bug.st/serial
//   - "tarm": github.com/tarm/serial
//
// Both are wrapped behind the Port interface, which also lets tests run the
// whole stack against an in-memory port.
package serial
