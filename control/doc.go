// Package control models the USB control-transfer surface between a
// transport (endpoint 0 driver) and a class-level request handler.
//
// The transport parses the 8-byte SETUP packet into a [SetupPacket],
// wraps the data stage in an [In] or [Out] transfer, and hands it to the
// class driver. The driver resolves the transfer exactly once with
// Accept/AcceptWith or Reject; the transport then inspects the outcome
// to send the reply data or stall the pipe.
//
// A transfer left unresolved means the driver did not claim the request,
// allowing other classes on the same device to handle it.
//
// The package performs no I/O itself; it only carries request framing
// and the accept/reject decision.
package control
