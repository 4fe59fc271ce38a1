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

	log "github.com/sirupsen/logrus"

	"librepods.dev/hamgr/haxact/sesn"
)

type listener struct {
	token sesn.ListenerToken
	fn    sesn.NotifyFn
}

// Maps attribute handles to notification listeners.  Listeners for a handle
// are called in registration order.
type Dispatcher struct {
	listeners map[uint16][]listener
	nextToken sesn.ListenerToken
	mtx       sync.Mutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: map[uint16][]listener{},
	}
}

func (d *Dispatcher) AddListener(handle uint16,
	fn sesn.NotifyFn) sesn.ListenerToken {

	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.nextToken++
	d.listeners[handle] = append(d.listeners[handle], listener{
		token: d.nextToken,
		fn:    fn,
	})

	return d.nextToken
}

// @return                      true if the listener was found and removed.
func (d *Dispatcher) RemoveListener(handle uint16,
	token sesn.ListenerToken) bool {

	d.mtx.Lock()
	defer d.mtx.Unlock()

	ls := d.listeners[handle]
	for i, l := range ls {
		if l.token == token {
			rem := make([]listener, 0, len(ls)-1)
			rem = append(rem, ls[:i]...)
			rem = append(rem, ls[i+1:]...)

			if len(rem) == 0 {
				delete(d.listeners, handle)
			} else {
				d.listeners[handle] = rem
			}
			return true
		}
	}

	return false
}

func (d *Dispatcher) ListenerCount(handle uint16) int {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return len(d.listeners[handle])
}

func (d *Dispatcher) callOne(handle uint16, l listener, value []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("notification listener for handle 0x%04x panicked: %v",
				handle, r)
		}
	}()

	l.fn(value)
}

// Delivers a notification to every listener registered for the handle.
// Listeners run on the caller's goroutine with the registry unlocked, so a
// listener may add or remove listeners.  Each listener gets its own copy of
// the value.
//
// @return                      the number of listeners called.
func (d *Dispatcher) Dispatch(handle uint16, value []byte) int {
	d.mtx.Lock()
	ls := d.listeners[handle]
	d.mtx.Unlock()

	for _, l := range ls {
		b := make([]byte, len(value))
		copy(b, value)
		d.callOne(handle, l, b)
	}

	return len(ls)
}
