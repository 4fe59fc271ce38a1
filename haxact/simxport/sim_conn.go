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

package simxport

import (
	"sync"
	"time"

	"librepods.dev/hamgr/haxact/haxutil"
)

const SIM_CONN_QUEUE_SZ = 64

type simConn struct {
	x         *SimXport
	rxCh      chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
	rxTimeout time.Duration
}

func newSimConn(x *SimXport, rxTimeout time.Duration) *simConn {
	return &simConn{
		x:         x,
		rxCh:      make(chan []byte, SIM_CONN_QUEUE_SZ),
		closeCh:   make(chan struct{}),
		rxTimeout: rxTimeout,
	}
}

func (c *simConn) closed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

func (c *simConn) shutdown() {
	c.closeOnce.Do(func() { close(c.closeCh) })
}

// Queues a PDU for the client.  PDUs are dropped if the client is not
// keeping up.
func (c *simConn) deliver(b []byte) {
	if c.closed() {
		return
	}

	select {
	case c.rxCh <- b:
	default:
	}
}

func (c *simConn) Tx(data []byte) error {
	if c.closed() {
		return haxutil.NewXportError("simulated connection closed")
	}

	b := make([]byte, len(data))
	copy(b, data)
	c.x.handleTx(c, b)

	return nil
}

func (c *simConn) Rx(buf []byte) (int, error) {
	var tmoChan <-chan time.Time
	if c.rxTimeout != 0 {
		timer := time.NewTimer(c.rxTimeout)
		defer timer.Stop()
		tmoChan = timer.C
	}

	select {
	case b := <-c.rxCh:
		return copy(buf, b), nil
	case <-c.closeCh:
		return 0, haxutil.NewXportError("simulated connection closed")
	case <-tmoChan:
		return 0, haxutil.NewRxTimeoutError()
	}
}

func (c *simConn) Close() error {
	c.shutdown()
	return nil
}
