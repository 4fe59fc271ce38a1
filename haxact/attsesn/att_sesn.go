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

// Package attsesn implements an ATT client session over a message-oriented
// connection.  A single receive goroutine per connection routes notifications
// to registered listeners and everything else to the one outstanding request.
package attsesn

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"librepods.dev/hamgr/haxact/att"
	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/haxutil"
	"librepods.dev/hamgr/haxact/sesn"
	"librepods.dev/hamgr/haxact/xport"
)

// Large enough for any attribute value plus the ATT header.
const RX_BUF_SZ = bledefs.BLE_ATT_ATTR_MAX_LEN + att.ATT_HDR_SIZE

// Delay between connect attempts that failed with a transient error.
var connRetryDelay = 100 * time.Millisecond

type AttSesn struct {
	cfg  sesn.SesnCfg
	xp   xport.Xport
	corr *Correlator
	disp *Dispatcher

	// Serializes requests; ATT allows one outstanding request per bearer.
	reqRes haxutil.SingleResource

	// Protects all fields below.
	mtx     sync.Mutex
	state   sesn.SesnState
	running bool
	conn    xport.Conn

	// Incremented by every Open and Close.  A receive goroutine only acts on
	// the session while the generation it was started under is current.
	gen uint64

	// Per-connection: stopCh closes when the receive goroutine exits;
	// pumpBlk unblocks once it has finished any reconnect attempt.
	stopCh  chan struct{}
	pumpBlk *haxutil.Blocker

	closeBcast haxutil.Bcaster
}

func NewAttSesn(xp xport.Xport, cfg sesn.SesnCfg) *AttSesn {
	return &AttSesn{
		cfg:    cfg,
		xp:     xp,
		corr:   NewCorrelator(),
		disp:   NewDispatcher(),
		reqRes: haxutil.NewSingleResource(),
	}
}

func (s *AttSesn) peerStr() string {
	return s.cfg.PeerSpec.Ble.Addr.String()
}

func (s *AttSesn) setStateNoLock(state sesn.SesnState) {
	if state != s.state {
		log.Debugf("ATT session %s: %s --> %s",
			s.peerStr(), s.state.String(), state.String())
		s.state = state
	}
}

func (s *AttSesn) isCurrent(gen uint64) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.currentNoLock(gen)
}

// Dials the peer, retrying transient failures up to ConnTries times.
func (s *AttSesn) dial() (xport.Conn, error) {
	tries := s.cfg.Att.ConnTries
	if tries < 1 {
		tries = 1
	}

	var err error
	for i := 0; i < tries; i++ {
		if i > 0 {
			time.Sleep(connRetryDelay)
		}

		var conn xport.Conn
		conn, err = s.xp.Dial(s.cfg.PeerSpec.Ble, s.cfg.Att.Psm,
			s.cfg.Att.RxPollTimeout)
		if err == nil {
			return conn, nil
		}

		cerr := haxutil.ToConnect(err)
		if cerr == nil || !cerr.Transient {
			return nil, err
		}

		log.Debugf("connect to %s failed (attempt %d/%d): %s",
			s.peerStr(), i+1, tries, err.Error())
	}

	return nil, err
}

// Installs a new connection and starts its receive goroutine.
func (s *AttSesn) startPumpNoLock(conn xport.Conn) {
	s.conn = conn
	s.stopCh = make(chan struct{})
	s.pumpBlk = haxutil.NewBlocker()
	s.corr.Drain()

	go s.pump(conn, s.gen, s.stopCh, s.pumpBlk)

	s.setStateNoLock(sesn.SESN_STATE_CONNECTED)
}

func (s *AttSesn) Open() error {
	s.mtx.Lock()
	if s.state != sesn.SESN_STATE_DISCONNECTED {
		s.mtx.Unlock()
		return haxutil.NewSesnAlreadyOpenError(
			"Attempt to open an already-open ATT session")
	}

	s.setStateNoLock(sesn.SESN_STATE_CONNECTING)
	s.running = true
	s.gen++
	gen := s.gen
	s.mtx.Unlock()

	conn, err := s.dial()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.gen != gen {
		// Closed, and possibly reopened, while connecting.
		if conn != nil {
			conn.Close()
		}
		return haxutil.NewSesnClosedError("ATT session closed during connect")
	}

	if err != nil {
		s.running = false
		s.setStateNoLock(sesn.SESN_STATE_DISCONNECTED)
		return err
	}

	log.Infof("connected to %s on psm %d", s.peerStr(), s.cfg.Att.Psm)
	s.startPumpNoLock(conn)

	return nil
}

func (s *AttSesn) Close() error {
	s.mtx.Lock()

	// Closing a session that is not running, or was never opened, is a no-op.
	if !s.running {
		s.mtx.Unlock()
		return nil
	}

	s.running = false
	s.gen++
	gen := s.gen
	conn := s.conn
	blk := s.pumpBlk
	s.mtx.Unlock()

	s.reqRes.Abort(haxutil.NewSesnClosedError("ATT session closed"))

	if conn != nil {
		if err := conn.Close(); err != nil {
			log.Debugf("error closing connection to %s: %s",
				s.peerStr(), err.Error())
		}
	}

	if blk != nil {
		if _, err := blk.Wait(s.cfg.Att.JoinTimeout, nil); err != nil {
			log.Warnf("receive goroutine for %s did not exit within %s",
				s.peerStr(), s.cfg.Att.JoinTimeout.String())
		}
	}

	s.mtx.Lock()
	if s.gen != gen {
		// Reopened while waiting for the receive goroutine.
		s.mtx.Unlock()
		return nil
	}
	s.conn = nil
	s.setStateNoLock(sesn.SESN_STATE_DISCONNECTED)
	s.mtx.Unlock()

	log.Infof("disconnected from %s", s.peerStr())
	s.closeBcast.SendAndClear(nil)

	return nil
}

func (s *AttSesn) IsOpen() bool {
	return s.State() == sesn.SESN_STATE_CONNECTED
}

func (s *AttSesn) State() sesn.SesnState {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.state
}

func (s *AttSesn) PeerSpec() sesn.PeerSpec {
	return s.cfg.PeerSpec
}

// Returns a channel that receives a single value and closes when the session
// disconnects.  The value is nil for a requested close, or the error that
// caused the session to give up.  If the session is already disconnected the
// returned channel is already closed.
func (s *AttSesn) CloseChan() <-chan interface{} {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.state == sesn.SESN_STATE_DISCONNECTED {
		ch := make(chan interface{})
		close(ch)
		return ch
	}

	return s.closeBcast.Listen()
}

func (s *AttSesn) handleRx(b []byte) {
	log.Debugf("rx ATT pdu (%d bytes):\n%s", len(b), haxutil.DumpFrame(b))

	pdu, err := att.Decode(b)
	if err != nil {
		log.Debugf("discarding ATT pdu: %s", err.Error())
		return
	}

	if pdu.Type == att.PDU_TYPE_NOTIFY {
		if n := s.disp.Dispatch(pdu.Handle, pdu.Payload); n == 0 {
			log.Debugf("no listeners for notification on handle 0x%04x",
				pdu.Handle)
		}
		return
	}

	s.corr.Push(b)
}

// Reads until the connection fails or the session stops running.
func (s *AttSesn) rxLoop(conn xport.Conn, gen uint64) error {
	buf := make([]byte, RX_BUF_SZ)

	for s.isCurrent(gen) {
		n, err := conn.Rx(buf)
		if err != nil {
			if haxutil.IsRxTimeout(err) {
				continue
			}
			return err
		}

		b := make([]byte, n)
		copy(b, buf[:n])
		s.handleRx(b)
	}

	return nil
}

// Whether the session is still running under the specified generation.
func (s *AttSesn) currentNoLock(gen uint64) bool {
	return s.running && s.gen == gen
}

func (s *AttSesn) pump(conn xport.Conn, gen uint64, stopCh chan struct{},
	blk *haxutil.Blocker) {

	defer blk.Unblock(nil)

	err := s.rxLoop(conn, gen)
	close(stopCh)

	s.mtx.Lock()
	if !s.currentNoLock(gen) {
		s.mtx.Unlock()
		conn.Close()
		return
	}

	log.Infof("connection to %s lost: %v", s.peerStr(), err)
	reconnect := s.cfg.Att.Reconnect
	if reconnect {
		s.setStateNoLock(sesn.SESN_STATE_RECONNECTING)
	}
	s.mtx.Unlock()

	conn.Close()

	if reconnect {
		newConn, rerr := s.dial()

		s.mtx.Lock()
		if rerr == nil {
			if s.currentNoLock(gen) {
				log.Infof("reconnected to %s", s.peerStr())
				s.startPumpNoLock(newConn)
				s.mtx.Unlock()
				return
			}
			s.mtx.Unlock()

			// The session was closed, or closed and reopened, meanwhile.
			log.Debugf("discarding stale reconnection to %s", s.peerStr())
			newConn.Close()
			return
		}
		s.mtx.Unlock()

		log.Errorf("reconnect to %s failed: %s", s.peerStr(), rerr.Error())
		err = rerr
	}

	s.mtx.Lock()
	if !s.currentNoLock(gen) {
		// Closed during the reconnect attempt.
		s.mtx.Unlock()
		return
	}
	s.running = false
	s.conn = nil
	s.setStateNoLock(sesn.SESN_STATE_DISCONNECTED)
	s.mtx.Unlock()

	perr := haxutil.NewPumpTerminatedError(err)

	s.reqRes.Abort(haxutil.NewSesnClosedError("ATT session terminated"))
	s.closeBcast.SendAndClear(perr)

	if s.cfg.OnCloseCb != nil {
		s.cfg.OnCloseCb(s, perr)
	}
}

// Transmits a request and waits for the PDU that follows it.
func (s *AttSesn) txRx(req []byte, opt sesn.TxOptions) ([]byte, error) {
	if err := s.reqRes.Acquire(); err != nil {
		return nil, err
	}
	defer s.reqRes.Release()

	s.mtx.Lock()
	if s.state != sesn.SESN_STATE_CONNECTED {
		state := s.state
		s.mtx.Unlock()
		return nil, haxutil.FmtSesnClosedError(
			"Attempt to transmit over ATT session in state %s",
			state.String())
	}
	conn := s.conn
	stopCh := s.stopCh
	s.mtx.Unlock()

	s.corr.Drain()

	log.Debugf("tx ATT pdu (%d bytes):\n%s", len(req), haxutil.DumpFrame(req))
	if err := conn.Tx(req); err != nil {
		return nil, errors.Wrapf(err, "failed to send ATT %s",
			att.OpToString(req[0]))
	}

	var deadline time.Time
	if opt.Timeout != 0 {
		deadline = time.Now().Add(opt.Timeout)
	}

	for {
		var remaining time.Duration
		if !deadline.IsZero() {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return nil, haxutil.FmtRspTimeoutError(
					"no ATT response after %s", opt.Timeout.String())
			}
		}

		rsp, err := s.corr.Await(remaining, stopCh)
		if err != nil {
			return nil, err
		}

		if rspAnswers(req[0], rsp) {
			return rsp, nil
		}

		log.Debugf("discarding ATT %s received while awaiting response "+
			"to %s", att.OpToString(rsp[0]), att.OpToString(req[0]))
	}
}

// Reports whether a response PDU can belong to the specified request.  Only
// responses known to answer a different request are rejected; anything
// unrecognized is passed through as an opaque response.
func rspAnswers(reqOp uint8, rsp []byte) bool {
	switch rsp[0] {
	case att.ATT_OP_READ_RSP:
		return reqOp == att.ATT_OP_READ_REQ
	case att.ATT_OP_WRITE_RSP:
		return reqOp == att.ATT_OP_WRITE_REQ
	case att.ATT_OP_ERROR_RSP:
		if len(rsp) < 2 {
			return true
		}
		return rsp[1] == reqOp
	default:
		return true
	}
}

func rspError(rsp []byte) error {
	if rsp[0] != att.ATT_OP_ERROR_RSP {
		return nil
	}

	ersp, err := att.DecodeErrRsp(rsp)
	if err != nil {
		return err
	}
	return ersp.ToError()
}

func (s *AttSesn) ReadOnce(handle uint16, opt sesn.TxOptions) ([]byte, error) {
	rsp, err := s.txRx(att.EncodeRead(handle), opt)
	if err != nil {
		return nil, errors.Wrapf(err, "read of handle 0x%04x failed", handle)
	}

	if err := rspError(rsp); err != nil {
		return nil, err
	}

	return rsp[1:], nil
}

func (s *AttSesn) WriteOnce(handle uint16, value []byte,
	opt sesn.TxOptions) error {

	rsp, err := s.txRx(att.EncodeWrite(handle, value), opt)
	if err != nil {
		if haxutil.IsRspTimeout(err) {
			log.Warnf("write to handle 0x%04x unacknowledged: %s",
				handle, err.Error())
			return nil
		}
		return errors.Wrapf(err, "write to handle 0x%04x failed", handle)
	}

	return rspError(rsp)
}

func (s *AttSesn) EnableNotifications(handle uint16) error {
	return s.WriteOnce(handle+1, []byte{0x01, 0x00}, sesn.NewTxOptions())
}

func (s *AttSesn) AddListener(handle uint16,
	fn sesn.NotifyFn) sesn.ListenerToken {

	return s.disp.AddListener(handle, fn)
}

func (s *AttSesn) RemoveListener(handle uint16,
	token sesn.ListenerToken) bool {

	return s.disp.RemoveListener(handle, token)
}
