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
)

var DfltTxOptions = TxOptions{
	Timeout: 2 * time.Second,
	Tries:   1,
}

type TxOptions struct {
	Timeout time.Duration
	Tries   int
}

func NewTxOptions() TxOptions {
	return DfltTxOptions
}

// Called on the receive goroutine with the new value of an attribute.  The
// slice is owned by the callee.
type NotifyFn func(value []byte)

// Identifies a registered notification listener so that it can be removed.
type ListenerToken uint64

// Represents an ATT session with a single hearing device.  Requests are
// serialized: at most one read or write is outstanding at a time.
type Sesn interface {
	// Connects to the peer and starts receiving.
	// Returns:
	//     * nil: success.
	//     * haxutil.SesnAlreadyOpenError: session already open.
	//     * haxutil.ConnectError: the connection could not be established.
	Open() error

	// Disconnects from the peer.  Closing a session that is already closed,
	// or was never opened, does nothing and returns nil.
	Close() error

	// Indicates whether the session is currently connected.
	IsOpen() bool

	State() SesnState

	PeerSpec() PeerSpec

	// Receives one value when the session disconnects: nil for a requested
	// close, otherwise the error that made the session give up.
	CloseChan() <-chan interface{}

	// Reads an attribute value.
	//     * haxutil.RspTimeoutError: no response within opt.Timeout.
	//     * haxutil.AttError: the peer rejected the read.
	//     * haxutil.SesnClosedError: session not connected.
	ReadOnce(handle uint16, opt TxOptions) ([]byte, error)

	// Writes an attribute value.  An unacknowledged write is logged, not
	// reported.
	//     * haxutil.AttError: the peer rejected the write.
	//     * haxutil.SesnClosedError: session not connected.
	WriteOnce(handle uint16, value []byte, opt TxOptions) error

	// Asks the peer to notify on changes to the specified attribute.
	EnableNotifications(handle uint16) error

	AddListener(handle uint16, fn NotifyFn) ListenerToken
	RemoveListener(handle uint16, token ListenerToken) bool
}
