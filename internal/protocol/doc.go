// Package protocol implements the IM920s command/response protocol.
//
// The module is driven with four-letter commands terminated by CRLF and
// answers each with a single CRLF-terminated line. Application data from
// other nodes arrives on the same line stream as unsolicited frames.
//
// # Wire Format
//
// Commands:
//
//	VERB[ arg1[ arg2...]]\r\n        e.g. "STNN 0002\r\n", "RDNN\r\n"
//
// Replies are one line ("OK", "NG", "0001", ...). The settings dump (RPRM)
// is the exception and answers with several lines.
//
// Inbound frames:
//
//	<prefix>,<sender>,<rssiHex>:<payload>\r\n   e.g. "00,0002,C4:hello\r\n"
//
// # Components
//
//   - Encode/Decode: command framing and reply decoding
//   - Engine: serialized command execution over a Transport
//   - DecodeInbound: inbound frame decoding
//   - Error: typed error taxonomy (transport, timeout, encoding, protocol,
//     invalid argument)
//
// # Usage Example
//
//	lt, err := serial.OpenLine(serial.DefaultConfig("/dev/ttyUSB0"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine := protocol.NewEngine(lt, lt.Name())
//
//	node, err := engine.Execute(protocol.VerbReadNodeNumber)
//	if protocol.IsTimeout(err) {
//	    // module did not answer within the read timeout
//	}
//
// # Stale Input
//
// Every command starts by discarding buffered input. Without this an inbound
// frame that arrived between two commands would be read as the reply to the
// next one.
package protocol
