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

package haxutil

import (
	"sync"
)

// Delivers a single value to every listener.  Listener channels are buffered
// so that Send never waits on a slow or absent reader.
type Bcaster struct {
	chs [](chan interface{})
	mtx sync.Mutex
}

func (b *Bcaster) Listen() <-chan interface{} {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	ch := make(chan interface{}, 1)
	b.chs = append(b.chs, ch)

	return ch
}

func (b *Bcaster) SendAndClear(val interface{}) {
	b.mtx.Lock()
	chs := b.chs
	b.chs = nil
	b.mtx.Unlock()

	for _, ch := range chs {
		ch <- val
		close(ch)
	}
}
