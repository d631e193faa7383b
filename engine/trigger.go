package engine

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// TriggerBox drives a DLP-IO8-G digital I/O box over serial. The scheduler
// raises line 1 at stimulus onset and clears it at trial end so external
// recording equipment gets a hardware-timed onset marker.
type TriggerBox struct {
	port serial.Port
}

// OpenTriggerBox opens and pings the device, then switches it to binary
// line mode.
func OpenTriggerBox(device string, baudrate int) (*TriggerBox, error) {
	mode := &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}

	tb := &TriggerBox{port: port}
	if !tb.Ping() {
		port.Close()
		return nil, fmt.Errorf("trigger box %s did not answer ping", device)
	}
	if _, err := port.Write([]byte{0x5C}); err != nil {
		port.Close()
		return nil, err
	}
	return tb, nil
}

func (t *TriggerBox) Close() {
	if t.port != nil {
		t.port.Close()
	}
}

// Ping sends the query byte and expects the device's 'Q' answer.
func (t *TriggerBox) Ping() bool {
	if _, err := t.port.Write([]byte{0x27}); err != nil {
		return false
	}
	buf := make([]byte, 1)
	n, err := t.port.Read(buf)
	return err == nil && n == 1 && buf[0] == 'Q'
}

// Set raises the named output lines ("1".."8").
func (t *TriggerBox) Set(lines string) {
	if _, err := t.port.Write([]byte(lines)); err != nil {
		fmt.Printf("trigger set error: %v\n", err)
	}
}

// Unset lowers the named output lines. The device clears a line with the
// letter sitting above the digit on a QWERTY row.
func (t *TriggerBox) Unset(lines string) {
	const clearCodes = "QWERTYUI"
	cmd := []byte(lines)
	for i := range cmd {
		if cmd[i] >= '1' && cmd[i] <= '8' {
			cmd[i] = clearCodes[cmd[i]-'1']
		}
	}
	if _, err := t.port.Write(cmd); err != nil {
		fmt.Printf("trigger unset error: %v\n", err)
	}
}

// Pulse raises the lines for ms milliseconds, then lowers them again.
func (t *TriggerBox) Pulse(lines string, ms int) {
	t.Set(lines)
	time.Sleep(time.Duration(ms) * time.Millisecond)
	t.Unset(lines)
}
