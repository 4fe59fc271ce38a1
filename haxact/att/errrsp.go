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

package att

import (
	"encoding/binary"
	"fmt"

	"librepods.dev/hamgr/haxact/haxutil"
)

const (
	ATT_ECODE_INVALID_HANDLE       = 0x01
	ATT_ECODE_READ_NOT_PERM        = 0x02
	ATT_ECODE_WRITE_NOT_PERM       = 0x03
	ATT_ECODE_INVALID_PDU          = 0x04
	ATT_ECODE_AUTHENTICATION       = 0x05
	ATT_ECODE_REQ_NOT_SUPP         = 0x06
	ATT_ECODE_INVALID_OFFSET       = 0x07
	ATT_ECODE_AUTHORIZATION        = 0x08
	ATT_ECODE_PREP_QUEUE_FULL      = 0x09
	ATT_ECODE_ATTR_NOT_FOUND       = 0x0a
	ATT_ECODE_ATTR_NOT_LONG        = 0x0b
	ATT_ECODE_INSUFF_ENC_KEY_SIZE  = 0x0c
	ATT_ECODE_INVAL_ATTR_VALUE_LEN = 0x0d
	ATT_ECODE_UNLIKELY             = 0x0e
	ATT_ECODE_INSUFF_ENC           = 0x0f
	ATT_ECODE_UNSUPP_GRP_TYPE      = 0x10
	ATT_ECODE_INSUFF_RESOURCES     = 0x11
)

var attEcodeStringMap = map[uint8]string{
	ATT_ECODE_INVALID_HANDLE:       "invalid handle",
	ATT_ECODE_READ_NOT_PERM:        "read not permitted",
	ATT_ECODE_WRITE_NOT_PERM:       "write not permitted",
	ATT_ECODE_INVALID_PDU:          "invalid pdu",
	ATT_ECODE_AUTHENTICATION:       "insufficient authentication",
	ATT_ECODE_REQ_NOT_SUPP:         "request not supported",
	ATT_ECODE_INVALID_OFFSET:       "invalid offset",
	ATT_ECODE_AUTHORIZATION:        "insufficient authorization",
	ATT_ECODE_PREP_QUEUE_FULL:      "prepare queue full",
	ATT_ECODE_ATTR_NOT_FOUND:       "attribute not found",
	ATT_ECODE_ATTR_NOT_LONG:        "attribute not long",
	ATT_ECODE_INSUFF_ENC_KEY_SIZE:  "insufficient encryption key size",
	ATT_ECODE_INVAL_ATTR_VALUE_LEN: "invalid attribute value length",
	ATT_ECODE_UNLIKELY:             "unlikely error",
	ATT_ECODE_INSUFF_ENC:           "insufficient encryption",
	ATT_ECODE_UNSUPP_GRP_TYPE:      "unsupported group type",
	ATT_ECODE_INSUFF_RESOURCES:     "insufficient resources",
}

func EcodeToString(ecode uint8) string {
	s := attEcodeStringMap[ecode]
	if s == "" {
		return fmt.Sprintf("0x%02x", ecode)
	}

	return s
}

// ATT Error Response: opcode, request opcode, handle, error code.
const ATT_ERR_RSP_SIZE = 5

type ErrRsp struct {
	ReqOp  uint8
	Handle uint16
	Ecode  uint8
}

func EncodeErrRsp(reqOp uint8, handle uint16, ecode uint8) []byte {
	b := make([]byte, ATT_ERR_RSP_SIZE)
	b[0] = ATT_OP_ERROR_RSP
	b[1] = reqOp
	binary.LittleEndian.PutUint16(b[2:4], handle)
	b[4] = ecode
	return b
}

func DecodeErrRsp(b []byte) (*ErrRsp, error) {
	if len(b) < ATT_ERR_RSP_SIZE || b[0] != ATT_OP_ERROR_RSP {
		return nil, haxutil.FmtMalformedPduError(
			"invalid ATT error response: %x", b)
	}

	return &ErrRsp{
		ReqOp:  b[1],
		Handle: binary.LittleEndian.Uint16(b[2:4]),
		Ecode:  b[4],
	}, nil
}

func (r *ErrRsp) ToError() *haxutil.AttError {
	return haxutil.NewAttError(r.ReqOp, r.Handle, r.Ecode,
		fmt.Sprintf("ATT %s on handle 0x%04x failed: %s",
			OpToString(r.ReqOp), r.Handle, EcodeToString(r.Ecode)))
}
