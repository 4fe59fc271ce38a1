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

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"mynewt.apache.org/newt/util"

	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/l2cap"
	"librepods.dev/hamgr/haxact/sesn"
)

type L2capConfig struct {
	PeerAddr     bledefs.BleAddr
	PeerAddrType bledefs.BleAddrType
	Psm          uint16

	// Local adapter to connect from; nil lets the kernel choose.
	SrcAddr *bledefs.BleAddr
}

func NewL2capConfig() *L2capConfig {
	return &L2capConfig{
		PeerAddrType: bledefs.BLE_ADDR_TYPE_BREDR,
		Psm:          bledefs.PSM_ATT,
	}
}

func einvalL2capConnString(f string, args ...interface{}) error {
	suffix := fmt.Sprintf(f, args...)
	return util.FmtNewtError("Invalid l2cap connstring; %s", suffix)
}

func ParseL2capConnString(cs string) (*L2capConfig, error) {
	lc := NewL2capConfig()
	havePeer := false

	if cs == "" {
		return nil, einvalL2capConnString("peer_addr required")
	}

	parts := strings.Split(cs, ",")
	for _, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, einvalL2capConnString("expected comma-separated "+
				"key=value pairs; no '=' in: %s", p)
		}

		k := kv[0]
		v := kv[1]

		var err error
		switch k {
		case "peer_addr":
			lc.PeerAddr, err = bledefs.ParseBleAddr(v)
			if err != nil {
				return nil, einvalL2capConnString("Invalid peer_addr; %s",
					err.Error())
			}
			havePeer = true

		case "addr_type":
			lc.PeerAddrType, err = bledefs.BleAddrTypeFromString(v)
			if err != nil {
				return nil, einvalL2capConnString("Invalid addr_type: %s", v)
			}

		case "psm":
			psm, err := cast.ToUint16E(v)
			if err != nil || psm == 0 {
				return nil, einvalL2capConnString("Invalid psm: %s", v)
			}
			lc.Psm = psm

		case "src_addr":
			src, err := bledefs.ParseBleAddr(v)
			if err != nil {
				return nil, einvalL2capConnString("Invalid src_addr; %s",
					err.Error())
			}
			lc.SrcAddr = &src

		default:
			return nil, einvalL2capConnString("Unrecognized key: %s", k)
		}
	}

	if !havePeer {
		return nil, einvalL2capConnString("peer_addr required")
	}

	return lc, nil
}

func BuildL2capXport(lc *L2capConfig) *l2cap.L2capXport {
	cfg := l2cap.NewXportCfg()
	cfg.SrcAddr = lc.SrcAddr
	return l2cap.NewL2capXport(cfg)
}

func FillSesnCfg(lc *L2capConfig, sc *sesn.SesnCfg) {
	sc.PeerSpec.Ble = bledefs.BleDev{
		AddrType: lc.PeerAddrType,
		Addr:     lc.PeerAddr,
	}
	sc.Att.Psm = lc.Psm
}
