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

package attsesn

import (
	"sync"
	"time"

	"librepods.dev/hamgr/haxact/haxutil"
)

// Hands the most recent non-notification PDU from the receive goroutine to
// the requester waiting for it.  ATT responses carry no transaction ID, so
// the slot holds at most one PDU; a newer one replaces an unclaimed older one.
type Correlator struct {
	ch  chan []byte
	mtx sync.Mutex
}

func NewCorrelator() *Correlator {
	return &Correlator{
		ch: make(chan []byte, 1),
	}
}

// Called by the receive goroutine only.
func (c *Correlator) Push(b []byte) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	for {
		select {
		case c.ch <- b:
			return
		default:
			select {
			case <-c.ch:
			default:
			}
		}
	}
}

// Discards an unclaimed PDU, e.g., a response that arrived after its
// requester timed out.
func (c *Correlator) Drain() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	select {
	case <-c.ch:
	default:
	}
}

// Waits for the next PDU.  A timeout of 0 waits until stopChan closes.
func (c *Correlator) Await(timeout time.Duration,
	stopChan <-chan struct{}) ([]byte, error) {

	var tmoChan <-chan time.Time
	if timeout != 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		tmoChan = timer.C
	}

	select {
	case b := <-c.ch:
		return b, nil
	case <-tmoChan:
		return nil, haxutil.FmtRspTimeoutError(
			"no ATT response after %s", timeout.String())
	case <-stopChan:
		return nil, haxutil.NewSesnClosedError(
			"connection lost while awaiting ATT response")
	}
}
