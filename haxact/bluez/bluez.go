/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package bluez queries the BlueZ daemon over D-Bus for what the host knows
// about a peer.  It never changes pairing or connection state; it only
// explains why an L2CAP connection is likely to be refused.
package bluez

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"librepods.dev/hamgr/haxact/bledefs"
)

type PeerInfo struct {
	Address   string          `structs:"address"`
	Name      string          `structs:"name"`
	Adapter   string          `structs:"adapter"`
	Paired    bool            `structs:"paired"`
	Connected bool            `structs:"connected"`
	Trusted   bool            `structs:"trusted"`
	Path      dbus.ObjectPath `structs:"path"`
}

// Indicates whether an ATT connection to the peer can be expected to
// succeed.
func (p *PeerInfo) Usable() bool {
	return p.Paired && p.Connected
}

// Describes what is preventing a connection, or "" if nothing is.
func (p *PeerInfo) Problem() string {
	switch {
	case !p.Paired:
		return fmt.Sprintf("%s is not paired with this host", p.Address)
	case !p.Connected:
		return fmt.Sprintf("%s is paired but not connected; "+
			"connect it from your Bluetooth settings", p.Address)
	default:
		return ""
	}
}

func findPeer(peers []*PeerInfo, addr bledefs.BleAddr) *PeerInfo {
	want := addr.String()
	for _, p := range peers {
		if strings.EqualFold(p.Address, want) {
			return p
		}
	}

	return nil
}

func notKnownError(addr bledefs.BleAddr, adapter string) error {
	return fmt.Errorf("device %s is not known to adapter %s; pair it first",
		addr.String(), adapter)
}
