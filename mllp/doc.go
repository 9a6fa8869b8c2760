// Package mllp provides MLLP (Minimal Lower Layer Protocol) support for HL7 v2.x.
//
// MLLP is the standard transport protocol for HL7 messages over TCP/IP. It defines
// a simple framing mechanism using control characters to delimit message boundaries.
//
// # MLLP Frame Format
//
// An MLLP frame consists of:
//   - Start Block: 0x0B (vertical tab, VT)
//   - HL7 Message Data
//   - End Block: 0x1C (file separator, FS)
//   - Carriage Return: 0x0D (CR)
//
// Frame structure:
//
//	<VT>...HL7 Message Data...<FS><CR>
//	 |                        |   |
//	 0x0B                   0x1C 0x0D
//
// # Server Usage
//
// Create an MLLP server to receive HL7 messages:
//
//	// Define message handler
//	builder := ack.NewBuilder()
//	handler := mllp.HandlerFunc(func(ctx context.Context, msg hl7.Message) (hl7.Message, error) {
//	    // Process the message
//	    log.Printf("Received: %s", msg.Type())
//
//	    // Generate acknowledgment
//	    return builder.Accept(msg)
//	})
//
//	// Create and start server
//	server := mllp.NewServer(mllp.WithHandler(handler))
//	listener, err := net.Listen("tcp", ":2575")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.Serve(listener); err != nil {
//	    log.Fatal(err)
//	}
//
// Server with options:
//
//	server := mllp.NewServer(
//	    mllp.WithHandler(handler),
//	    mllp.WithReadTimeout(30*time.Second),
//	    mllp.WithWriteTimeout(30*time.Second),
//	    mllp.WithMaxMessageSize(1024*1024),  // 1MB max
//	    mllp.WithTLSConfig(tlsConfig),
//	)
//
// Serve returns ErrNoHandler when no handler is configured. When the
// handler returns an error or a nil response, the server sends nothing
// back for that message.
//
// # Client Usage
//
// Create an MLLP client to send HL7 messages:
//
//	// Connect to server
//	client, err := mllp.Dial("localhost:2575")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Send message and receive ACK
//	ackMsg, err := client.Send(ctx, msg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Check acknowledgment
//	ackCode, _ := ackMsg.Get("MSA.1")
//	if ackCode != "AA" {
//	    log.Printf("Message not accepted: %s", ackCode)
//	}
//
// Client with options:
//
//	client, err := mllp.Dial("localhost:2575",
//	    mllp.WithTimeout(10*time.Second),
//	    mllp.WithTLS(tlsConfig),
//	    mllp.WithRetry(3, time.Second),
//	)
//
// NewClient takes the same arguments but connects on the first Send
// instead of immediately. A Client holds a single connection and
// serializes Send calls on it; the package has no connection pool.
//
// # Reading and Writing Frames
//
// For low-level control, use the Reader and Writer types:
//
// Reading MLLP frames:
//
//	reader := mllp.NewReader(conn, 0) // 0 selects MaxMessageSize
//	for {
//	    data, err := reader.ReadMessage()
//	    if err != nil {
//	        if err == io.EOF {
//	            break
//	        }
//	        log.Fatal(err)
//	    }
//	    // data contains the unwrapped HL7 message
//	    result, _ := parser.Parse(data)
//	    msg := result.Tree
//	}
//
// Writing MLLP frames:
//
//	writer := mllp.NewWriter(conn)
//	if err := writer.WriteMessage(hl7Data); err != nil {
//	    log.Fatal(err)
//	}
//
// # Frame Validation
//
// Validate MLLP frame boundaries:
//
//	if mllp.IsCompleteFrame(data) {
//	    // Data has proper MLLP framing
//	}
//
//	// Extract message from frame
//	msg, err := mllp.Unframe(framedData)
//	if err != nil {
//	    log.Fatal("invalid MLLP frame:", err)
//	}
//
//	// Wrap message in MLLP frame
//	framedData := mllp.Frame(hl7Data)
//
// For bytes that arrive in arbitrary chunks, a StreamDeframer buffers
// them with Append and returns each complete payload from NextMessage.
//
// # Error Handling
//
// The package reports errors as sentinel values wrapped with context, so
// match them with errors.Is. ErrInvalidStartBlock and ErrInvalidEndBlock
// wrap hl7.ErrInvalidFrame; a timeout surfaces as the network error of
// the expired deadline:
//
//	ackMsg, err := client.Send(ctx, msg)
//	if err != nil {
//	    switch {
//	    case errors.Is(err, mllp.ErrConnectionClosed):
//	        log.Printf("Connection closed: %v", err)
//	    case errors.Is(err, mllp.ErrMessageTooLarge):
//	        log.Printf("Response too large: %v", err)
//	    case errors.Is(err, os.ErrDeadlineExceeded):
//	        log.Printf("Timeout: %v", err)
//	    default:
//	        log.Printf("Send failed: %v", err)
//	    }
//	}
//
// # TLS Support
//
// Enable TLS for secure connections:
//
// Server:
//
//	cert, _ := tls.LoadX509KeyPair("server.crt", "server.key")
//	tlsConfig := &tls.Config{
//	    Certificates: []tls.Certificate{cert},
//	    MinVersion:   tls.VersionTLS12,
//	}
//
//	server := mllp.NewServer(
//	    mllp.WithHandler(handler),
//	    mllp.WithTLSConfig(tlsConfig),
//	)
//
// Client:
//
//	tlsConfig := &tls.Config{
//	    InsecureSkipVerify: false,
//	    MinVersion:         tls.VersionTLS12,
//	}
//
//	client, _ := mllp.Dial("localhost:2575",
//	    mllp.WithTLS(tlsConfig),
//	)
//
// # Graceful Shutdown
//
// Properly shutdown server connections:
//
//	server := mllp.NewServer(mllp.WithHandler(handler))
//	listener, _ := net.Listen("tcp", ":2575")
//
//	// Start server in goroutine
//	go func() {
//	    if err := server.Serve(listener); err != nil && err != mllp.ErrServerClosed {
//	        log.Printf("Server stopped: %v", err)
//	    }
//	}()
//
//	// Handle shutdown signal
//	sigCh := make(chan os.Signal, 1)
//	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
//	<-sigCh
//
//	// Graceful shutdown with timeout
//	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	if err := server.Shutdown(shutdownCtx); err != nil {
//	    log.Printf("Shutdown error: %v", err)
//	}
//
// # Example: Complete MLLP Service
//
//	func main() {
//	    builder := ack.NewBuilder()
//
//	    handler := mllp.HandlerFunc(func(ctx context.Context, msg hl7.Message) (hl7.Message, error) {
//	        // Log message receipt
//	        sendingApp, _ := msg.Get("MSH.3")
//	        log.Printf("Received %s from %s", msg.Type(), sendingApp)
//
//	        // Process based on message type
//	        switch msg.Type() {
//	        case "ADT^A01":
//	            if err := handleAdmit(msg); err != nil {
//	                return builder.Error(msg, err)
//	            }
//	        case "ORU^R01":
//	            if err := handleLabResult(msg); err != nil {
//	                return builder.Error(msg, err)
//	            }
//	        default:
//	            return builder.Reject(msg, "Unsupported message type")
//	        }
//
//	        return builder.Accept(msg)
//	    })
//
//	    server := mllp.NewServer(
//	        mllp.WithHandler(handler),
//	        mllp.WithReadTimeout(60*time.Second),
//	        mllp.WithWriteTimeout(30*time.Second),
//	    )
//
//	    listener, err := net.Listen("tcp", ":2575")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    log.Println("Starting MLLP server on :2575")
//	    if err := server.Serve(listener); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Constants
//
// MLLP framing constants are exported for custom implementations:
//
//	mllp.StartBlock      // 0x0B - vertical tab
//	mllp.EndBlock        // 0x1C - file separator
//	mllp.CarriageReturn  // 0x0D - carriage return
package mllp
