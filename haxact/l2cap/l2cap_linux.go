// +build linux

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

package l2cap

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/haxutil"
	"librepods.dev/hamgr/haxact/xport"
)

// Classifies a connect(2) failure.  A refused connection means nothing is
// listening on the PSM, typically because the device is not connected to
// this host.
func connectError(err error) *haxutil.ConnectError {
	refused := false
	transient := false

	if errno, ok := errors.Cause(err).(unix.Errno); ok {
		switch errno {
		case unix.ECONNREFUSED:
			refused = true
		case unix.EAGAIN, unix.EBUSY, unix.EINTR, unix.EALREADY:
			transient = true
		}
	}

	return haxutil.NewConnectError(err, refused, transient)
}

func dial(cfg XportCfg, peer bledefs.BleDev, psm uint16,
	rxTimeout time.Duration) (xport.Conn, error) {

	fd, err := unix.Socket(unix.AF_BLUETOOTH,
		unix.SOCK_SEQPACKET|unix.SOCK_CLOEXEC, unix.BTPROTO_L2CAP)
	if err != nil {
		return nil, haxutil.NewConnectError(
			errors.Wrap(err, "can't create L2CAP socket"), false, false)
	}

	if cfg.SrcAddr != nil {
		src := &unix.SockaddrL2{
			Addr: cfg.SrcAddr.Bytes,
		}
		if err := unix.Bind(fd, src); err != nil {
			unix.Close(fd)
			return nil, haxutil.NewConnectError(
				errors.Wrapf(err, "can't bind to adapter %s",
					cfg.SrcAddr.String()), false, false)
		}
	}

	// SockaddrL2 takes the address in display order and reverses it for the
	// kernel.
	sa := &unix.SockaddrL2{
		PSM:      psm,
		Addr:     peer.Addr.Bytes,
		AddrType: uint8(peer.AddrType),
	}

	log.Debugf("connecting to %s psm %d", peer.String(), psm)
	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return nil, connectError(err)
	}

	if rxTimeout != 0 {
		tv := unix.NsecToTimeval(rxTimeout.Nanoseconds())
		err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
		if err != nil {
			unix.Close(fd)
			return nil, haxutil.NewConnectError(
				errors.Wrap(err, "can't set receive timeout"), false, false)
		}
	}

	return &l2capConn{fd: fd}, nil
}

type l2capConn struct {
	fd int

	// rmu is held for the duration of a read so that Close() cannot release
	// the descriptor out from under it.
	rmu       sync.Mutex
	wmu       sync.Mutex
	closeOnce sync.Once
}

func (c *l2capConn) Tx(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.fd < 0 {
		return haxutil.NewXportError("L2CAP socket closed")
	}

	n, err := unix.Write(c.fd, data)
	if err != nil {
		return errors.Wrap(err, "can't write L2CAP socket")
	}
	if n != len(data) {
		return haxutil.NewXportError("short write on L2CAP socket")
	}

	return nil
}

func (c *l2capConn) Rx(buf []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	if c.fd < 0 {
		return 0, haxutil.NewXportError("L2CAP socket closed")
	}

	n, err := unix.Read(c.fd, buf)
	if err != nil {
		switch err {
		case unix.EAGAIN, unix.EINTR:
			return 0, haxutil.NewRxTimeoutError()
		default:
			return 0, errors.Wrap(err, "can't read L2CAP socket")
		}
	}
	if n == 0 {
		return 0, haxutil.NewXportError("L2CAP connection closed by peer")
	}

	return n, nil
}

func (c *l2capConn) Close() error {
	var err error

	c.closeOnce.Do(func() {
		// Wakes a blocked reader.
		unix.Shutdown(c.fd, unix.SHUT_RDWR)

		c.rmu.Lock()
		c.wmu.Lock()
		defer c.rmu.Unlock()
		defer c.wmu.Unlock()

		err = unix.Close(c.fd)
		c.fd = -1
	})

	if err != nil {
		return errors.Wrap(err, "can't close L2CAP socket")
	}
	return nil
}
