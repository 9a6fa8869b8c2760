// Package ack provides HL7 v2.x acknowledgment (ACK) message generation.
//
// The ack package creates ACK messages in response to incoming HL7 messages.
// It supports both positive acknowledgments (AA - Application Accept) and
// negative acknowledgments (AE - Application Error, AR - Application Reject).
//
// # ACK Message Structure
//
// An ACK message consists of:
//   - MSH: Message header (mirrored from original with swapped sender/receiver)
//   - MSA: Message acknowledgment segment containing:
//   - MSA.1: Acknowledgment code (AA, AE, AR)
//   - MSA.2: Message control ID (from original MSH.10)
//   - MSA.3: Text message (optional description)
//   - ERR: Error segment (optional, for AE/AR responses)
//
// # Basic Usage
//
// Create a Builder and generate a positive acknowledgment:
//
//	// Parse incoming message
//	result, err := parser.Parse(incomingData)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	msg := result.Tree
//
//	// Generate ACK
//	b := ack.NewBuilder()
//	ackMsg, err := b.Accept(msg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Encode and send response
//	response, _ := encoder.Encode(ackMsg)
//	conn.Write(response)
//
// Generate a negative acknowledgment (MSA-3 and ERR-7 carry err.Error(),
// ERR-3 is "207", ERR-4 is "E"):
//
//	ackMsg, err := b.Error(msg, errors.New("Patient ID not found"))
//
// Generate a rejection (the reason goes to MSA-3; no ERR segment):
//
//	ackMsg, err := b.Reject(msg, "Invalid message format")
//
// # Acknowledgment Codes
//
// HL7 defines three acknowledgment codes:
//
//	AA - Application Accept
//	    Message was received, validated, and accepted for processing.
//
//	AE - Application Error
//	    Message was received but contained errors. The sending application
//	    should review and correct the message.
//
//	AR - Application Reject
//	    Message was rejected due to system or communication errors.
//	    The sending application may retry the transmission.
//
// # Builder Options
//
// NewBuilder accepts functional options:
//
//	b := ack.NewBuilder(
//	    ack.WithTimeFunc(time.Now),               // source of MSH-7
//	    ack.WithControlIDFunc(nextControlID),     // source of the ACK's MSH-10
//	    ack.WithMessageFactory(myFactory),        // custom message/segment types
//	)
//
// The ACK's MSH swaps the original sending and receiving application and
// facility (MSH-3..6), sets MSH-9 to "ACK^<trigger event>", and copies
// MSH-11 and MSH-12 from the original.
//
// # Custom Acknowledgments and Error Segments
//
// Custom builds an ACK from an ACK value, which allows any code (AA, AE,
// AR, CA, CE, CR) and full control over the ERR segment:
//
//	ackMsg, err := b.Custom(msg, ack.ACK{
//	    Code:          ack.ApplicationError,
//	    ControlID:     msg.ControlID(),
//	    TextMessage:   "Validation error",
//	    ErrorCode:     "101",
//	    ErrorLocation: "PID-3-1",
//	    ErrorMessage:  "Patient ID is required",
//	    Severity:      "E",
//	})
//
// An ERR segment is added only for error or reject codes (AE, AR, CE, CR)
// that carry an ErrorCode, ErrorLocation or ErrorMessage. ErrorLocation
// goes to ERR-1 and ERR-2, ErrorCode to ERR-3, Severity to ERR-4 and
// ErrorMessage to ERR-7.
//
// # Message Control ID
//
// The ACK's own control ID (MSH-10) comes from the builder's control ID
// function, which defaults to uuid.NewString(); MSA-2 always carries the
// original message's control ID:
//
//	// Auto-generate (default)
//	ackMsg, err := ack.NewBuilder().Accept(msg)
//
//	// Use specific control ID
//	ackMsg, err := ack.NewBuilder(
//	    ack.WithControlIDFunc(func() string { return "ACK-12345" }),
//	).Accept(msg)
//
// # Example: Complete ACK Workflow
//
//	func handleHL7Message(data []byte) ([]byte, error) {
//	    // Parse incoming message
//	    parser := parse.New()
//	    result, err := parser.Parse(data)
//	    if err != nil {
//	        // Without a parsed MSH there is no message to acknowledge
//	        return nil, fmt.Errorf("parse error: %w", err)
//	    }
//	    msg := result.Tree
//
//	    b := ack.NewBuilder()
//
//	    // Process message...
//	    if err := processMessage(msg); err != nil {
//	        // Generate error ACK for processing errors
//	        ackMsg, _ := b.Error(msg, err)
//	        return encode.New().Encode(ackMsg)
//	    }
//
//	    // Generate success ACK
//	    ackMsg, _ := b.Accept(msg)
//	    return encode.New().Encode(ackMsg)
//	}
//
// # Example ACK Message
//
// For an incoming ADT^A01 message, a successful ACK looks like:
//
//	MSH|^~\&|RECEIVING_APP|RECEIVING_FAC|SENDING_APP|SENDING_FAC|20240115120000||ACK^A01|ACK12345|P|2.5.1
//	MSA|AA|MSG12345
//
// An error ACK from Error(msg, errors.New("Patient ID not found")):
//
//	MSH|^~\&|RECEIVING_APP|RECEIVING_FAC|SENDING_APP|SENDING_FAC|20240115120000||ACK^A01|ACK12346|P|2.5.1
//	MSA|AE|MSG12345|Patient ID not found
//	ERR|||207|E|||Patient ID not found
package ack
