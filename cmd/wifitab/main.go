// Command wifitab validates, lists, compiles and joins WiFi credential tables.
//
//	wifitab check -f credentials.yaml
//	wifitab gen -f credentials.yaml -o credentials_gen.go --tags "rp2040 || rp2350"
//	wifitab connect -f credentials.yaml --ifname wlan0
package main

import "github.com/soypat/wifitab/internal/cli"

func main() {
	cli.Execute()
}
