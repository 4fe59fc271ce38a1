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

// Package att encodes and decodes the attribute protocol PDUs exchanged with
// the hearing device.  Only the subset of ATT needed to read, write and
// observe fixed attribute handles is implemented.
package att

import (
	"encoding/binary"
	"fmt"

	"librepods.dev/hamgr/haxact/haxutil"
)

const (
	ATT_OP_ERROR_RSP  = 0x01
	ATT_OP_READ_REQ   = 0x0a
	ATT_OP_READ_RSP   = 0x0b
	ATT_OP_WRITE_REQ  = 0x12
	ATT_OP_WRITE_RSP  = 0x13
	ATT_OP_HANDLE_NTF = 0x1b
)

var attOpStringMap = map[uint8]string{
	ATT_OP_ERROR_RSP:  "error_rsp",
	ATT_OP_READ_REQ:   "read_req",
	ATT_OP_READ_RSP:   "read_rsp",
	ATT_OP_WRITE_REQ:  "write_req",
	ATT_OP_WRITE_RSP:  "write_rsp",
	ATT_OP_HANDLE_NTF: "handle_value_ntf",
}

func OpToString(op uint8) string {
	s := attOpStringMap[op]
	if s == "" {
		return fmt.Sprintf("0x%02x", op)
	}

	return s
}

// Size of the opcode and handle that prefix every request and notification.
const ATT_HDR_SIZE = 3

type PduType int

const (
	PDU_TYPE_UNKNOWN PduType = iota
	PDU_TYPE_READ_REQ
	PDU_TYPE_WRITE_REQ
	PDU_TYPE_NOTIFY
)

var pduTypeStringMap = map[PduType]string{
	PDU_TYPE_UNKNOWN:   "unknown",
	PDU_TYPE_READ_REQ:  "read_req",
	PDU_TYPE_WRITE_REQ: "write_req",
	PDU_TYPE_NOTIFY:    "notify",
}

func (t PduType) String() string {
	return pduTypeStringMap[t]
}

type Pdu struct {
	Type    PduType
	Op      uint8
	Handle  uint16
	Payload []byte

	// The undecoded PDU, opcode included.
	Raw []byte
}

func encodeHdr(op uint8, handle uint16, extra int) []byte {
	b := make([]byte, ATT_HDR_SIZE, ATT_HDR_SIZE+extra)
	b[0] = op
	binary.LittleEndian.PutUint16(b[1:], handle)
	return b
}

func EncodeRead(handle uint16) []byte {
	return encodeHdr(ATT_OP_READ_REQ, handle, 0)
}

func EncodeWrite(handle uint16, payload []byte) []byte {
	b := encodeHdr(ATT_OP_WRITE_REQ, handle, len(payload))
	return append(b, payload...)
}

// Used by tests and the simulated device; the client never sends these.
func EncodeNotify(handle uint16, value []byte) []byte {
	b := encodeHdr(ATT_OP_HANDLE_NTF, handle, len(value))
	return append(b, value...)
}

// Decodes a single PDU.  Only an empty PDU is an error.  Unrecognized opcodes,
// and recognized ones too short to carry a handle, yield a PDU_TYPE_UNKNOWN
// result so that the session can route them as opaque responses.
func Decode(b []byte) (*Pdu, error) {
	if len(b) == 0 {
		return nil, haxutil.NewMalformedPduError("empty ATT PDU")
	}

	pdu := &Pdu{
		Op:  b[0],
		Raw: b,
	}

	if len(b) < ATT_HDR_SIZE {
		pdu.Type = PDU_TYPE_UNKNOWN
		pdu.Payload = b[1:]
		return pdu, nil
	}

	switch b[0] {
	case ATT_OP_READ_REQ:
		pdu.Type = PDU_TYPE_READ_REQ
	case ATT_OP_WRITE_REQ:
		pdu.Type = PDU_TYPE_WRITE_REQ
	case ATT_OP_HANDLE_NTF:
		pdu.Type = PDU_TYPE_NOTIFY
	default:
		pdu.Type = PDU_TYPE_UNKNOWN
		pdu.Payload = b[1:]
		return pdu, nil
	}

	pdu.Handle = binary.LittleEndian.Uint16(b[1:3])
	pdu.Payload = b[ATT_HDR_SIZE:]

	return pdu, nil
}
