// +build linux

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

package bluez

import (
	"github.com/muka/go-bluetooth/api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"librepods.dev/hamgr/haxact/bledefs"
)

// Looks up the peer among the devices known to the default adapter.
func CheckPeer(addr bledefs.BleAddr) (*PeerInfo, error) {
	a, err := api.GetDefaultAdapter()
	if err != nil {
		return nil, errors.Wrap(err, "can't get default Bluetooth adapter")
	}

	id, err := a.GetAdapterID()
	if err != nil {
		return nil, errors.Wrap(err, "can't get adapter ID")
	}

	devs, err := a.GetDevices()
	if err != nil {
		return nil, errors.Wrapf(err, "can't list devices on %s", id)
	}

	peers := make([]*PeerInfo, 0, len(devs))
	for _, d := range devs {
		if d == nil || d.Properties == nil {
			continue
		}

		peers = append(peers, &PeerInfo{
			Address:   d.Properties.Address,
			Name:      d.Properties.Name,
			Adapter:   id,
			Paired:    d.Properties.Paired,
			Connected: d.Properties.Connected,
			Trusted:   d.Properties.Trusted,
			Path:      d.Path(),
		})
	}
	log.Debugf("adapter %s knows %d devices", id, len(peers))

	p := findPeer(peers, addr)
	if p == nil {
		return nil, notKnownError(addr, id)
	}

	return p, nil
}
