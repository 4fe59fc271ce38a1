// +build !linux

package bluez

import (
	"fmt"

	"librepods.dev/hamgr/haxact/bledefs"
)

func CheckPeer(addr bledefs.BleAddr) (*PeerInfo, error) {
	return nil, fmt.Errorf("BlueZ is only available on Linux")
}
