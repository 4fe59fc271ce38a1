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

// Package l2cap connects to a hearing device over a Linux Bluetooth L2CAP
// SOCK_SEQPACKET socket.  Each socket read or write carries exactly one ATT
// PDU.
package l2cap

import (
	"sync"
	"time"

	"librepods.dev/hamgr/haxact/attsesn"
	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/haxutil"
	"librepods.dev/hamgr/haxact/sesn"
	"librepods.dev/hamgr/haxact/xport"
)

type XportCfg struct {
	// Local adapter address to bind to.  If nil, the kernel chooses.
	SrcAddr *bledefs.BleAddr
}

func NewXportCfg() XportCfg {
	return XportCfg{}
}

type L2capXport struct {
	cfg     XportCfg
	started bool
	mtx     sync.Mutex
}

func NewL2capXport(cfg XportCfg) *L2capXport {
	return &L2capXport{
		cfg: cfg,
	}
}

func (lx *L2capXport) Start() error {
	lx.mtx.Lock()
	defer lx.mtx.Unlock()

	if lx.started {
		return haxutil.NewXportError(
			"Attempt to start an already-started L2CAP transport")
	}

	lx.started = true
	return nil
}

func (lx *L2capXport) Stop() error {
	lx.mtx.Lock()
	defer lx.mtx.Unlock()

	if !lx.started {
		return haxutil.NewXportError(
			"Attempt to stop an unstarted L2CAP transport")
	}

	lx.started = false
	return nil
}

func (lx *L2capXport) BuildSesn(cfg sesn.SesnCfg) (sesn.Sesn, error) {
	return attsesn.NewAttSesn(lx, cfg), nil
}

func (lx *L2capXport) Dial(peer bledefs.BleDev, psm uint16,
	rxTimeout time.Duration) (xport.Conn, error) {

	return dial(lx.cfg, peer, psm, rxTimeout)
}
