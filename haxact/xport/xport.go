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

package xport

import (
	"time"

	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/sesn"
)

// A single connected channel to a peer.  Each Tx and Rx carries exactly one
// PDU; the channel preserves message boundaries.
type Conn interface {
	Tx(data []byte) error

	// Receives one PDU into buf.  Returns haxutil.RxTimeoutError if nothing
	// arrived within the poll interval the connection was dialed with.
	Rx(buf []byte) (int, error)

	Close() error
}

type Xport interface {
	Start() error
	Stop() error

	BuildSesn(cfg sesn.SesnCfg) (sesn.Sesn, error)

	// Opens a connection to the peer.  Failures are reported as
	// haxutil.ConnectError.
	Dial(peer bledefs.BleDev, psm uint16, rxTimeout time.Duration) (Conn, error)
}
