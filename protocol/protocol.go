// Package protocol holds what the board and the host console agree on: the
// boot banner, the prompt, and how an echo is recognised on the wire.
package protocol

// Version represents the bmrp firmware version
const Version = "0.1.0"

// Console constants
const (
	// ReadySignal is the first byte the board sends once the mini UART is up
	ReadySignal = '!'

	// Rule frames the banner line
	Rule = "-------------------------------------\n"

	// Welcome is the middle banner line
	Welcome = "Welcome to BMRP (Bare metal RASPI) !!\n"

	// Banner is sent after ReadySignal
	Banner = Rule + Welcome + Rule

	// Prompt precedes the echo loop
	Prompt = "> "
)
