package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bmrp/sim"
)

// newTestUART builds a mini UART on a simulated bus with a line model
// attached, and clears the log so tests only see their own traffic
func newTestUART(t *testing.T) (*MiniUART, *sim.Bus, *sim.AuxUART) {
	t.Helper()
	bus := newTestBus(t)
	aux := sim.NewAuxUART(bus, AUX_MU_LSR, AUX_MU_IO)

	u, err := NewMiniUART(DefaultBaud)
	if err != nil {
		t.Fatalf("NewMiniUART failed: %v", err)
	}
	bus.ResetLog()
	return u, bus, aux
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// assertPolledBeforeWrites checks that every data register write is directly
// preceded by a line status read showing the transmitter empty
func assertPolledBeforeWrites(t *testing.T, log []sim.Access) {
	t.Helper()
	for i, a := range log {
		if a.Op != sim.OpWrite || a.Addr != AUX_MU_IO {
			continue
		}
		if i == 0 {
			t.Fatalf("data write 0x%02x with no status poll before it", a.Value)
		}
		prev := log[i-1]
		if prev.Op != sim.OpRead || prev.Addr != AUX_MU_LSR || prev.Value&LSRTxEmpty == 0 {
			t.Errorf("data write 0x%02x preceded by %+v, want LSR read with tx empty", a.Value, prev)
		}
	}
}

func TestComputeDivisor(t *testing.T) {
	tests := []struct {
		clock uint32
		baud  uint32
		want  uint32
	}{
		{250_000_000, 115200, 270},
		{250_000_000, 9600, 3254},
		{250_000_000, 31_250_000, 0},
		{500_000_000, 115200, 541},
	}
	for _, tt := range tests {
		if got := ComputeDivisor(tt.clock, tt.baud); got != tt.want {
			t.Errorf("ComputeDivisor(%d, %d) = %d, want %d", tt.clock, tt.baud, got, tt.want)
		}
	}
}

func TestNewMiniUARTRejectsBaud(t *testing.T) {
	tests := []struct {
		name string
		baud uint32
	}{
		{"zero", 0},
		{"divisor underflows", CoreClockHz/8 + 1},
		{"divisor wider than 16 bits", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newTestBus(t)

			u, err := NewMiniUART(tt.baud)
			if !errors.Is(err, ErrInvalidBaud) {
				t.Fatalf("NewMiniUART(%d) error = %v, want ErrInvalidBaud", tt.baud, err)
			}
			if u != nil {
				t.Error("NewMiniUART returned a UART on error")
			}
			if n := len(bus.Log()); n != 0 {
				t.Errorf("rejected construction made %d bus accesses", n)
			}
		})
	}
}

func TestNewMiniUARTSequence(t *testing.T) {
	bus := newTestBus(t)

	// SPI1 and SPI2 already enabled
	bus.Set(AUXENB, 0b110)

	u, err := NewMiniUART(DefaultBaud)
	if err != nil {
		t.Fatalf("NewMiniUART failed: %v", err)
	}

	divisor := ComputeDivisor(CoreClockHz, DefaultBaud)
	if u.Divisor() != divisor || u.Baud() != DefaultBaud {
		t.Errorf("Baud()/Divisor() = %d/%d, want %d/%d", u.Baud(), u.Divisor(), DefaultBaud, divisor)
	}

	type step struct {
		addr uint32
		val  uint32
	}
	want := []step{
		{AUXENB, 0b111},
		{AUX_MU_IER, 0},
		{AUX_MU_CNTL, 0},
		{AUX_MU_LCR, 0b11},
		{AUX_MU_MCR, 0},
		{AUX_MU_IIR, 0xC6},
		{AUX_MU_BAUD, divisor},
		{AUX_MU_CNTL, 0b11},
		{AUX_MU_IIR, 0b110},
	}

	log := bus.Log()
	var got []step
	lastPinWrite, enableIndex := -1, -1
	for i, a := range log {
		if a.Op != sim.OpWrite {
			continue
		}
		if a.Addr >= AUXENB {
			got = append(got, step{a.Addr, a.Value})
			if a.Addr == AUX_MU_CNTL && a.Value != 0 {
				enableIndex = i
			}
		} else {
			lastPinWrite = i
		}
	}

	if len(got) != len(want) {
		t.Fatalf("AUX writes = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AUX write %d = {0x%08x 0x%x}, want {0x%08x 0x%x}",
				i, got[i].addr, got[i].val, want[i].addr, want[i].val)
		}
	}
	if lastPinWrite > enableIndex {
		t.Error("transmitter enabled before pin setup finished")
	}

	// GPIO 14 and 15 share GPFSEL1 at bit 12 and 15
	fsel1 := bus.Value(fselAddr(14))
	if fsel1 != uint32(PinAltFunc5)<<12|uint32(PinAltFunc5)<<15 {
		t.Errorf("GPFSEL1 = 0x%08x, want alt5 on pins 14 and 15", fsel1)
	}
	if u.TxPin().Pin() != MiniUARTTxPin || u.RxPin().Pin() != MiniUARTRxPin {
		t.Errorf("pins = %d/%d, want %d/%d", u.TxPin().Pin(), u.RxPin().Pin(), MiniUARTTxPin, MiniUARTRxPin)
	}
	if u.TxPin().Pull() != PullNone || u.RxPin().Pull() != PullNone {
		t.Error("UART pins must have no pull resistor")
	}
}

func TestSendByteWaitsForTxEmpty(t *testing.T) {
	u, bus, aux := newTestUART(t)
	aux.HoldTx(true)

	done := make(chan struct{})
	go func() {
		defer close(done)
		u.SendByte('A')
	}()

	// Let it spin a while on the status register
	waitFor(t, "status polling", func() bool { return bus.ReadCount(AUX_MU_LSR) >= 10 })

	select {
	case <-done:
		t.Fatal("SendByte returned while the transmitter was busy")
	default:
	}
	if w := bus.Writes(AUX_MU_IO); len(w) != 0 {
		t.Fatalf("data register written while busy: %v", w)
	}

	aux.HoldTx(false)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendByte did not return after the transmitter freed up")
	}

	if got := aux.Transmitted(); string(got) != "A" {
		t.Errorf("transmitted %q, want %q", got, "A")
	}
	assertPolledBeforeWrites(t, bus.Log())
}

func TestRecvByte(t *testing.T) {
	u, _, aux := newTestUART(t)

	aux.Feed([]byte{0x58})
	if got := u.RecvByte(); got != 'X' {
		t.Errorf("RecvByte() = %q, want 'X'", got)
	}
}

func TestRecvByteBlocksUntilDataReady(t *testing.T) {
	u, bus, aux := newTestUART(t)

	result := make(chan byte, 1)
	go func() {
		result <- u.RecvByte()
	}()

	waitFor(t, "status polling", func() bool { return bus.ReadCount(AUX_MU_LSR) >= 10 })
	if bus.ReadCount(AUX_MU_IO) != 0 {
		t.Fatal("data register read before data ready")
	}

	aux.Feed([]byte("q"))
	select {
	case got := <-result:
		if got != 'q' {
			t.Errorf("RecvByte() = %q, want 'q'", got)
		}
	case <-time.After(time.Second):
		t.Fatal("RecvByte did not return after data arrived")
	}
}

func TestSendStringEndToEnd(t *testing.T) {
	u, bus, aux := newTestUART(t)

	u.SendString("AB")

	writes := bus.Writes(AUX_MU_IO)
	if len(writes) != 2 || writes[0] != 0x41 || writes[1] != 0x42 {
		t.Fatalf("data register writes = %v, want [0x41 0x42]", writes)
	}
	if string(aux.Transmitted()) != "AB" {
		t.Errorf("transmitted %q, want %q", aux.Transmitted(), "AB")
	}
	assertPolledBeforeWrites(t, bus.Log())
}

func TestSendStringNoNewlineTranslation(t *testing.T) {
	u, _, aux := newTestUART(t)

	u.SendString("a\nb")
	if got := string(aux.Transmitted()); got != "a\nb" {
		t.Errorf("transmitted %q, want %q", got, "a\nb")
	}
}

func TestContextVariants(t *testing.T) {
	u, bus, aux := newTestUART(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := u.RecvByteContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RecvByteContext() error = %v, want DeadlineExceeded", err)
	}

	aux.HoldTx(true)
	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	if err := u.SendByteContext(ctx2, 'z'); !errors.Is(err, context.Canceled) {
		t.Errorf("SendByteContext() error = %v, want Canceled", err)
	}
	if w := bus.Writes(AUX_MU_IO); len(w) != 0 {
		t.Errorf("cancelled send wrote %v", w)
	}

	aux.HoldTx(false)
	aux.Feed([]byte("k"))
	if err := u.SendByteContext(context.Background(), 'z'); err != nil {
		t.Errorf("SendByteContext() error = %v", err)
	}
	if c, err := u.RecvByteContext(context.Background()); err != nil || c != 'k' {
		t.Errorf("RecvByteContext() = %q, %v; want 'k', nil", c, err)
	}
}

func TestReaderWriter(t *testing.T) {
	u, _, aux := newTestUART(t)

	n, err := u.Write([]byte("hi "))
	if err != nil || n != 3 {
		t.Errorf("Write() = %d, %v", n, err)
	}
	if _, err := u.WriteString("there"); err != nil {
		t.Errorf("WriteString() error = %v", err)
	}
	if err := u.WriteByte('!'); err != nil {
		t.Errorf("WriteByte() error = %v", err)
	}
	if got := string(aux.Transmitted()); got != "hi there!" {
		t.Errorf("transmitted %q, want %q", got, "hi there!")
	}

	aux.Feed([]byte("hello"))
	buf := make([]byte, 8)
	n, err = u.Read(buf)
	if err != nil || string(buf[:n]) != "hello" {
		t.Errorf("Read() = %q, %v; want %q", buf[:n], err, "hello")
	}

	aux.Feed([]byte("xyz"))
	small := make([]byte, 2)
	if n, _ := u.Read(small); string(small[:n]) != "xy" {
		t.Errorf("Read() into short buffer = %q, want %q", small[:n], "xy")
	}
	if c, _ := u.ReadByte(); c != 'z' {
		t.Errorf("ReadByte() = %q, want 'z'", c)
	}
	if n, _ := u.Read(nil); n != 0 {
		t.Errorf("Read(nil) = %d, want 0", n)
	}
}

func TestUARTDebugOutput(t *testing.T) {
	var lines []string
	prevWriter, prevEnabled := debugPrintln, debugEnabled
	defer func() {
		debugPrintln, debugEnabled = prevWriter, prevEnabled
	}()
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	SetDebugEnabled(true)

	newTestUART(t)

	want := "[UART] baud=115200 divisor=" + utoa(ComputeDivisor(CoreClockHz, DefaultBaud))
	found := false
	for _, l := range lines {
		if l == want {
			found = true
		}
	}
	if !found {
		t.Errorf("debug output %q does not contain %q", strings.Join(lines, "|"), want)
	}
}
