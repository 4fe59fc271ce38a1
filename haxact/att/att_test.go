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
	"bytes"
	"testing"

	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/haxutil"
)

func TestEncodeRead(t *testing.T) {
	got := EncodeRead(bledefs.ATT_HANDLE_HEARING_AID.Value())
	want := []byte{0x0a, 0x2a, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeRead: got %x want %x", got, want)
	}

	got = EncodeRead(0x1234)
	want = []byte{0x0a, 0x34, 0x12}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeRead: got %x want %x", got, want)
	}
}

func TestEncodeWrite(t *testing.T) {
	got := EncodeWrite(bledefs.ATT_HANDLE_HEARING_AID.Cccd(), []byte{0x01, 0x00})
	want := []byte{0x12, 0x2b, 0x00, 0x01, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeWrite: got %x want %x", got, want)
	}

	got = EncodeWrite(0x18, nil)
	want = []byte{0x12, 0x18, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeWrite(nil): got %x want %x", got, want)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	h := bledefs.ATT_HANDLE_HEARING_AID.Value()

	pdu, err := Decode(EncodeRead(h))
	if err != nil {
		t.Fatalf("Decode(read): %v", err)
	}
	if pdu.Type != PDU_TYPE_READ_REQ || pdu.Handle != 0x2a || len(pdu.Payload) != 0 {
		t.Errorf("Decode(read): got %+v", pdu)
	}

	payload := []byte{1, 2, 3, 4, 5}
	pdu, err = Decode(EncodeWrite(h, payload))
	if err != nil {
		t.Fatalf("Decode(write): %v", err)
	}
	if pdu.Type != PDU_TYPE_WRITE_REQ || pdu.Handle != 0x2a ||
		!bytes.Equal(pdu.Payload, payload) {

		t.Errorf("Decode(write): got %+v", pdu)
	}

	pdu, err = Decode(EncodeNotify(h, payload))
	if err != nil {
		t.Fatalf("Decode(notify): %v", err)
	}
	if pdu.Type != PDU_TYPE_NOTIFY || pdu.Handle != 0x2a ||
		!bytes.Equal(pdu.Payload, payload) {

		t.Errorf("Decode(notify): got %+v", pdu)
	}
}

func TestDecodeUnknown(t *testing.T) {
	raw := []byte{ATT_OP_READ_RSP, 0xde, 0xad}
	pdu, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if pdu.Type != PDU_TYPE_UNKNOWN {
		t.Errorf("Decode: got type %s want unknown", pdu.Type)
	}
	if !bytes.Equal(pdu.Raw, raw) || !bytes.Equal(pdu.Payload, raw[1:]) {
		t.Errorf("Decode: got raw %x payload %x", pdu.Raw, pdu.Payload)
	}

	// A lone opcode byte is still a valid unknown PDU.
	pdu, err = Decode([]byte{ATT_OP_WRITE_RSP})
	if err != nil || pdu.Type != PDU_TYPE_UNKNOWN {
		t.Errorf("Decode(write rsp): got %+v, %v", pdu, err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, b := range [][]byte{nil, {}} {
		if _, err := Decode(b); !haxutil.IsMalformedPdu(err) {
			t.Errorf("Decode(%x): got %v want MalformedPduError", b, err)
		}
	}
}

func TestDecodeShortKnownOp(t *testing.T) {
	cases := [][]byte{
		{ATT_OP_HANDLE_NTF},
		{ATT_OP_HANDLE_NTF, 0x2a},
		{ATT_OP_READ_REQ, 0x2a},
		{ATT_OP_WRITE_REQ},
	}

	for _, b := range cases {
		pdu, err := Decode(b)
		if err != nil {
			t.Errorf("Decode(%x): unexpected error: %v", b, err)
			continue
		}
		if pdu.Type != PDU_TYPE_UNKNOWN || pdu.Op != b[0] {
			t.Errorf("Decode(%x): got type %s op 0x%02x", b, pdu.Type, pdu.Op)
		}
		if !bytes.Equal(pdu.Raw, b) || !bytes.Equal(pdu.Payload, b[1:]) {
			t.Errorf("Decode(%x): got raw %x payload %x", b, pdu.Raw,
				pdu.Payload)
		}
	}
}

func TestErrRsp(t *testing.T) {
	b := EncodeErrRsp(ATT_OP_READ_REQ, 0x2a, ATT_ECODE_READ_NOT_PERM)
	if !bytes.Equal(b, []byte{0x01, 0x0a, 0x2a, 0x00, 0x02}) {
		t.Fatalf("EncodeErrRsp: got %x", b)
	}

	rsp, err := DecodeErrRsp(b)
	if err != nil {
		t.Fatalf("DecodeErrRsp: %v", err)
	}
	if rsp.ReqOp != ATT_OP_READ_REQ || rsp.Handle != 0x2a ||
		rsp.Ecode != ATT_ECODE_READ_NOT_PERM {

		t.Errorf("DecodeErrRsp: got %+v", rsp)
	}

	aerr := rsp.ToError()
	if !haxutil.IsAtt(aerr) || aerr.Status != ATT_ECODE_READ_NOT_PERM {
		t.Errorf("ToError: got %v", aerr)
	}

	if _, err := DecodeErrRsp([]byte{0x01, 0x0a}); !haxutil.IsMalformedPdu(err) {
		t.Errorf("DecodeErrRsp(short): got %v", err)
	}
}
