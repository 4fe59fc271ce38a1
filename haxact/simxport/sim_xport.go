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

// Package simxport implements an in-memory hearing device.  It answers ATT
// reads and writes for the device's attributes and sends notifications to
// subscribed clients, which makes it suitable both for tests and for a
// dry run of the command-line tool without hardware.
package simxport

import (
	"fmt"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"librepods.dev/hamgr/haxact/att"
	"librepods.dev/hamgr/haxact/attsesn"
	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/hasettings"
	"librepods.dev/hamgr/haxact/haxutil"
	"librepods.dev/hamgr/haxact/sesn"
	"librepods.dev/hamgr/haxact/xport"
)

type SimXport struct {
	attrs      map[uint16][]byte
	subscribed map[uint16]bool

	refuse       bool
	transientErr int
	mute         bool
	rspDelay     time.Duration

	conn      *simConn
	dialCount int
	started   bool

	mtx sync.Mutex
}

// Factory-default records: mid-range amplification, noise reduction and own
// voice; flat EQ.
func DefaultHearingAidRecord() []byte {
	s := hasettings.DefaultAdjustment(hasettings.Settings{}).Settings()
	s.LeftAmplification = 0.5
	s.RightAmplification = 0.5

	b, _ := hasettings.EncodeForWrite(make([]byte, hasettings.HA_RECORD_MIN_SZ), s)
	return b
}

func DefaultTransparencyRecord() []byte {
	return hasettings.EncodeTransparency(hasettings.Transparency{
		Settings: hasettings.DefaultAdjustment(hasettings.Settings{}).Settings(),

		HasOwnVoice: true,
	})
}

func NewSimXport() *SimXport {
	return &SimXport{
		attrs: map[uint16][]byte{
			bledefs.ATT_HANDLE_HEARING_AID.Value():          DefaultHearingAidRecord(),
			bledefs.ATT_HANDLE_TRANSPARENCY.Value():         DefaultTransparencyRecord(),
			bledefs.ATT_HANDLE_LOUD_SOUND_REDUCTION.Value(): {0},
		},
		subscribed: map[uint16]bool{},
	}
}

func (x *SimXport) Start() error {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	if x.started {
		return haxutil.NewXportError(
			"Attempt to start an already-started simulated transport")
	}

	x.started = true
	return nil
}

func (x *SimXport) Stop() error {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	if !x.started {
		return haxutil.NewXportError(
			"Attempt to stop an unstarted simulated transport")
	}

	if x.conn != nil {
		x.conn.shutdown()
		x.conn = nil
	}
	x.started = false
	return nil
}

func (x *SimXport) BuildSesn(cfg sesn.SesnCfg) (sesn.Sesn, error) {
	return attsesn.NewAttSesn(x, cfg), nil
}

func (x *SimXport) Dial(peer bledefs.BleDev, psm uint16,
	rxTimeout time.Duration) (xport.Conn, error) {

	x.mtx.Lock()
	defer x.mtx.Unlock()

	x.dialCount++

	if x.refuse {
		return nil, haxutil.NewConnectError(syscall.ECONNREFUSED, true, false)
	}
	if x.transientErr > 0 {
		x.transientErr--
		return nil, haxutil.NewConnectError(syscall.EBUSY, false, true)
	}
	if psm != bledefs.PSM_ATT {
		return nil, haxutil.NewConnectError(
			fmt.Errorf("no service on psm %d", psm), true, false)
	}

	if x.conn != nil {
		x.conn.shutdown()
	}

	// Subscriptions do not survive a disconnect.
	x.subscribed = map[uint16]bool{}

	x.conn = newSimConn(x, rxTimeout)
	log.Debugf("simulated device %s connected", peer.Addr.String())

	return x.conn, nil
}

func (x *SimXport) respondNoLock(c *simConn, rsp []byte) {
	if x.mute {
		return
	}

	if x.rspDelay == 0 {
		c.deliver(rsp)
	} else {
		time.AfterFunc(x.rspDelay, func() { c.deliver(rsp) })
	}
}

// Processes one PDU sent by the client.
func (x *SimXport) handleTx(c *simConn, b []byte) {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	pdu, err := att.Decode(b)
	if err != nil {
		x.respondNoLock(c, att.EncodeErrRsp(0, 0, att.ATT_ECODE_INVALID_PDU))
		return
	}

	switch pdu.Type {
	case att.PDU_TYPE_READ_REQ:
		val, ok := x.attrs[pdu.Handle]
		if !ok {
			x.respondNoLock(c, att.EncodeErrRsp(pdu.Op, pdu.Handle,
				att.ATT_ECODE_INVALID_HANDLE))
			return
		}
		rsp := append([]byte{att.ATT_OP_READ_RSP}, val...)
		x.respondNoLock(c, rsp)

	case att.PDU_TYPE_WRITE_REQ:
		if _, ok := x.attrs[pdu.Handle-1]; ok && len(pdu.Payload) > 0 {
			// Client characteristic configuration.
			x.subscribed[pdu.Handle-1] = pdu.Payload[0]&0x01 != 0
			x.respondNoLock(c, []byte{att.ATT_OP_WRITE_RSP})
			return
		}

		if _, ok := x.attrs[pdu.Handle]; !ok {
			x.respondNoLock(c, att.EncodeErrRsp(pdu.Op, pdu.Handle,
				att.ATT_ECODE_INVALID_HANDLE))
			return
		}

		val := make([]byte, len(pdu.Payload))
		copy(val, pdu.Payload)
		x.attrs[pdu.Handle] = val

		x.respondNoLock(c, []byte{att.ATT_OP_WRITE_RSP})
		if x.subscribed[pdu.Handle] {
			c.deliver(att.EncodeNotify(pdu.Handle, val))
		}

	default:
		x.respondNoLock(c, att.EncodeErrRsp(pdu.Op, pdu.Handle,
			att.ATT_ECODE_REQ_NOT_SUPP))
	}
}

// Sends a notification for the specified handle to the connected client,
// whether or not it subscribed.
func (x *SimXport) Notify(handle uint16, value []byte) error {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	if x.conn == nil {
		return haxutil.NewXportError("simulated device not connected")
	}

	x.conn.deliver(att.EncodeNotify(handle, value))
	return nil
}

// Sends an arbitrary PDU to the connected client.
func (x *SimXport) Inject(pdu []byte) error {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	if x.conn == nil {
		return haxutil.NewXportError("simulated device not connected")
	}

	x.conn.deliver(pdu)
	return nil
}

// Terminates the current connection from the device side.
func (x *SimXport) DropLink() {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	if x.conn != nil {
		x.conn.shutdown()
		x.conn = nil
	}
}

// Makes subsequent connect attempts fail with ECONNREFUSED.
func (x *SimXport) SetRefuse(refuse bool) {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	x.refuse = refuse
}

// Makes the next n connect attempts fail with a transient error.
func (x *SimXport) SetTransientFailures(n int) {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	x.transientErr = n
}

// Stops the device from answering requests.
func (x *SimXport) SetMute(mute bool) {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	x.mute = mute
}

func (x *SimXport) SetRspDelay(d time.Duration) {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	x.rspDelay = d
}

func (x *SimXport) Value(handle uint16) []byte {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	val, ok := x.attrs[handle]
	if !ok {
		return nil
	}

	b := make([]byte, len(val))
	copy(b, val)
	return b
}

func (x *SimXport) SetValue(handle uint16, value []byte) {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	b := make([]byte, len(value))
	copy(b, value)
	x.attrs[handle] = b
}

func (x *SimXport) Subscribed(handle uint16) bool {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	return x.subscribed[handle]
}

func (x *SimXport) DialCount() int {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	return x.dialCount
}
