//go:build rp2040 || rp2350

package main

import "time"

// blink flashes the on-board LED n times followed by a pause.
func blink(n int) {
	for i := 0; i < n; i++ {
		dev.GPIOSet(0, true)
		time.Sleep(150 * time.Millisecond)
		dev.GPIOSet(0, false)
		time.Sleep(250 * time.Millisecond)
	}
	time.Sleep(time.Second)
}
