// Package device provides a handle on a single IM920s radio module.
//
// A Device wraps the protocol engine with the module's configuration
// operations and caches what it last learned about the module: identity,
// node number, group number, I/O mode, network mode and ack mode.
//
// # Usage Example
//
//	dev, err := device.Open(serial.DefaultConfig("/dev/ttyUSB0"), device.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	if _, err := dev.Initialize(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Make this module a slave and join the master's group
//	if _, err := dev.SetNodeNumber("0002"); err != nil {
//	    log.Fatal(err)
//	}
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	group, err := dev.SetGroupNumber(ctx)
//
// # Group Registration
//
// Modules that have never been configured share no group. SetGroupNumber
// runs the registration handshake: the master (node 0001) adopts its own
// serial identity as group number; slaves wait until they have heard the
// master and report GRNOREGD. The firmware narrows the radio range during
// this exchange, so slaves must be placed within about 50cm of the master.
//
// # Cached State
//
// Query operations update the cache with what the module answered.
// Mutations never write the requested value into the cache optimistically;
// SetNodeNumber reads the node number back, ResetSettings reloads node and
// group. Refresh re-reads everything and returns a new State snapshot.
//
// # Thread Safety
//
// A Device is not safe for concurrent use. Each physical module should be
// owned by one goroutine.
package device
