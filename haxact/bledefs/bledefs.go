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

package bledefs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// L2CAP protocol/service multiplexer of the attribute protocol channel.
const PSM_ATT = 31

const BLE_ATT_ATTR_MAX_LEN = 512

// Address type as understood by the kernel's L2CAP sockaddr.
type BleAddrType int

const (
	BLE_ADDR_TYPE_BREDR     BleAddrType = 0
	BLE_ADDR_TYPE_LE_PUBLIC             = 1
	BLE_ADDR_TYPE_LE_RANDOM             = 2
)

var BleAddrTypeStringMap = map[BleAddrType]string{
	BLE_ADDR_TYPE_BREDR:     "bredr",
	BLE_ADDR_TYPE_LE_PUBLIC: "le_public",
	BLE_ADDR_TYPE_LE_RANDOM: "le_random",
}

func BleAddrTypeToString(addrType BleAddrType) string {
	s := BleAddrTypeStringMap[addrType]
	if s == "" {
		return "???"
	}

	return s
}

func BleAddrTypeFromString(s string) (BleAddrType, error) {
	for addrType, name := range BleAddrTypeStringMap {
		if s == name {
			return addrType, nil
		}
	}

	return BleAddrType(0), fmt.Errorf("Invalid BleAddrType string: %s", s)
}

func (a BleAddrType) MarshalJSON() ([]byte, error) {
	return json.Marshal(BleAddrTypeToString(a))
}

func (a *BleAddrType) UnmarshalJSON(data []byte) error {
	var err error

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*a, err = BleAddrTypeFromString(s)
	return err
}

// Device address, most significant byte first (as printed).
type BleAddr struct {
	Bytes [6]byte
}

// Parses an address of the form XX:XX:XX:XX:XX:XX.  Hyphens are accepted in
// place of colons.
func ParseBleAddr(s string) (BleAddr, error) {
	ba := BleAddr{}

	norm := strings.Replace(strings.ToLower(s), "-", ":", -1)
	toks := strings.Split(norm, ":")
	if len(toks) != 6 {
		return ba, fmt.Errorf("invalid BLE addr string: %s", s)
	}

	for i, t := range toks {
		if len(t) != 2 {
			return ba, fmt.Errorf("invalid BLE addr string: %s", s)
		}
		u64, err := strconv.ParseUint(t, 16, 8)
		if err != nil {
			return ba, fmt.Errorf("invalid BLE addr string: %s", s)
		}
		ba.Bytes[i] = byte(u64)
	}

	return ba, nil
}

func (ba *BleAddr) String() string {
	var buf bytes.Buffer
	buf.Grow(len(ba.Bytes) * 3)

	for i, b := range ba.Bytes {
		if i != 0 {
			buf.WriteString(":")
		}
		fmt.Fprintf(&buf, "%02x", b)
	}

	return buf.String()
}

// Only the last two octets; keeps full device addresses out of the logs.
func (ba *BleAddr) Tail() string {
	return fmt.Sprintf("..:%02x:%02x", ba.Bytes[4], ba.Bytes[5])
}

func (ba *BleAddr) MarshalJSON() ([]byte, error) {
	return json.Marshal(ba.String())
}

func (ba *BleAddr) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	var err error
	*ba, err = ParseBleAddr(s)
	if err != nil {
		return err
	}

	return nil
}

type BleDev struct {
	AddrType BleAddrType
	Addr     BleAddr
}

func (bd *BleDev) String() string {
	return fmt.Sprintf("%s,%s",
		BleAddrTypeToString(bd.AddrType),
		bd.Addr.String())
}

// Attributes exposed by the hearing device.  Handles are fixed; they are
// never discovered.
type AttHandle int

const (
	ATT_HANDLE_TRANSPARENCY AttHandle = iota
	ATT_HANDLE_LOUD_SOUND_REDUCTION
	ATT_HANDLE_HEARING_AID
)

var attHandleValueMap = map[AttHandle]uint16{
	ATT_HANDLE_TRANSPARENCY:         0x18,
	ATT_HANDLE_LOUD_SOUND_REDUCTION: 0x1b,
	ATT_HANDLE_HEARING_AID:          0x2a,
}

var attHandleStringMap = map[AttHandle]string{
	ATT_HANDLE_TRANSPARENCY:         "transparency",
	ATT_HANDLE_LOUD_SOUND_REDUCTION: "loud_sound_reduction",
	ATT_HANDLE_HEARING_AID:          "hearing_aid",
}

func AttHandles() []AttHandle {
	return []AttHandle{
		ATT_HANDLE_TRANSPARENCY,
		ATT_HANDLE_LOUD_SOUND_REDUCTION,
		ATT_HANDLE_HEARING_AID,
	}
}

// The 16-bit attribute handle.
func (h AttHandle) Value() uint16 {
	return attHandleValueMap[h]
}

// The client characteristic configuration descriptor handle; always the
// attribute handle plus one.
func (h AttHandle) Cccd() uint16 {
	return h.Value() + 1
}

func (h AttHandle) String() string {
	s := attHandleStringMap[h]
	if s == "" {
		return "???"
	}

	return s
}

func AttHandleFromString(s string) (AttHandle, error) {
	for h, name := range attHandleStringMap {
		if s == name {
			return h, nil
		}
	}

	return AttHandle(0), fmt.Errorf("Invalid AttHandle string: %s", s)
}

func AttHandleFromValue(v uint16) (AttHandle, bool) {
	for h, hv := range attHandleValueMap {
		if hv == v {
			return h, true
		}
	}

	return AttHandle(0), false
}
