// +build !linux

package l2cap

import (
	"fmt"
	"time"

	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/haxutil"
	"librepods.dev/hamgr/haxact/xport"
)

func dial(cfg XportCfg, peer bledefs.BleDev, psm uint16,
	rxTimeout time.Duration) (xport.Conn, error) {

	return nil, haxutil.NewConnectError(
		fmt.Errorf("L2CAP sockets are only supported on Linux"), false, false)
}
