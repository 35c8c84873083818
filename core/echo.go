package core

import "bmrp/protocol"

// Greet sends the boot banner and the prompt
func Greet(u *MiniUART) {
	u.SendString(protocol.Banner)
	u.SendString(protocol.Prompt)
}

// Echo reads a byte and sends it straight back, count times. A negative count
// echoes forever. If activity is non-nil it is toggled once per byte.
func Echo(u *MiniUART, activity *GPIO, count int) {
	for i := 0; count < 0 || i < count; i++ {
		c := u.RecvByte()
		u.SendByte(c)
		if activity != nil {
			activity.Toggle()
		}
	}
}

// Run is the board's control loop: signal readiness, greet, then echo
// forever. It never returns.
func Run(u *MiniUART, activity *GPIO) {
	u.SendByte(protocol.ReadySignal)
	Greet(u)
	Echo(u, activity, -1)
}
