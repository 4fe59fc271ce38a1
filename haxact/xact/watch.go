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

package xact

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"librepods.dev/hamgr/haxact/hasettings"
	"librepods.dev/hamgr/haxact/sesn"
)

// Called with each hearing-aid record the device pushes.  err is non-nil if
// the record could not be decoded.
type SettingsFn func(st hasettings.Settings, err error)

// Decodes hearing-aid notifications and hands the result to a callback.  The
// callback runs on the session's receive goroutine; it must not issue
// requests on the same session synchronously.
type SettingsWatcher struct {
	s  sesn.Sesn
	fn SettingsFn

	token   sesn.ListenerToken
	started bool
	mtx     sync.Mutex
}

func NewSettingsWatcher(s sesn.Sesn, fn SettingsFn) *SettingsWatcher {
	return &SettingsWatcher{
		s:  s,
		fn: fn,
	}
}

func (w *SettingsWatcher) onNotify(b []byte) {
	st, err := hasettings.Decode(b)
	if err != nil {
		log.Debugf("undecodable hearing aid notification: %s", err.Error())
	}
	w.fn(st, err)
}

// Registers for notifications.  A failure to enable notifications on the
// device is logged but does not prevent the watcher from starting; some
// devices notify unconditionally.
func (w *SettingsWatcher) Start() error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.started {
		return nil
	}

	w.token = w.s.AddListener(hearingAidHandle, w.onNotify)
	if err := w.s.EnableNotifications(hearingAidHandle); err != nil {
		log.Warnf("failed to enable hearing aid notifications: %s",
			err.Error())
	}

	w.started = true
	return nil
}

func (w *SettingsWatcher) Stop() {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if !w.started {
		return
	}

	w.s.RemoveListener(hearingAidHandle, w.token)
	w.started = false
}
