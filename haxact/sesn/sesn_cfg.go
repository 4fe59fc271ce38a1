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

package sesn

import (
	"time"

	"librepods.dev/hamgr/haxact/bledefs"
)

type SesnState int

const (
	SESN_STATE_DISCONNECTED SesnState = iota
	SESN_STATE_CONNECTING
	SESN_STATE_CONNECTED
	SESN_STATE_RECONNECTING
)

var sesnStateStringMap = map[SesnState]string{
	SESN_STATE_DISCONNECTED: "disconnected",
	SESN_STATE_CONNECTING:   "connecting",
	SESN_STATE_CONNECTED:    "connected",
	SESN_STATE_RECONNECTING: "reconnecting",
}

func (s SesnState) String() string {
	return sesnStateStringMap[s]
}

// Called once when a session gives up on its peer.  err describes why the
// connection was lost.
type OnCloseFn func(s Sesn, err error)

type PeerSpec struct {
	Ble bledefs.BleDev
}

type SesnCfgAtt struct {
	Psm uint16

	// How long a single receive waits before checking whether the session is
	// still running.
	RxPollTimeout time.Duration

	// Upper bound on how long Close() waits for the receive goroutine.
	JoinTimeout time.Duration

	// Number of connect attempts made for transient socket errors.
	ConnTries int

	// Whether a lost connection is reestablished once before the session
	// gives up.
	Reconnect bool
}

type SesnCfg struct {
	PeerSpec  PeerSpec
	OnCloseCb OnCloseFn

	Att SesnCfgAtt
}

func NewSesnCfg() SesnCfg {
	return SesnCfg{
		Att: SesnCfgAtt{
			Psm:           bledefs.PSM_ATT,
			RxPollTimeout: 100 * time.Millisecond,
			JoinTimeout:   time.Second,
			ConnTries:     3,
			Reconnect:     true,
		},
	}
}
