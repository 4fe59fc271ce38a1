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

package hasettings

import (
	"bytes"
	"math"
	"testing"

	"librepods.dev/hamgr/haxact/haxutil"
)

const eps = 1e-6

func near(a float32, b float32) bool {
	return math.Abs(float64(a)-float64(b)) < eps
}

// Builds a record with distinct, recognizable values in every field.
func sampleRecord(sz int) []byte {
	b := make([]byte, sz)
	b[0] = 0x01
	b[1] = 0x02
	b[2] = WRITE_MODE_BYTE
	b[3] = 0x04

	for i := 0; i < NUM_EQ_BANDS; i++ {
		putF32(b, OFF_LEFT_EQ+i*4, float32(10*i))
		putF32(b, OFF_RIGHT_EQ+i*4, float32(10*i+5))
	}
	putF32(b, OFF_LEFT_AMP, 0.25)
	putF32(b, OFF_LEFT_TONE, -0.5)
	putF32(b, OFF_LEFT_CONV, 1.0)
	putF32(b, OFF_LEFT_ANR, 0.75)
	putF32(b, OFF_RIGHT_AMP, 0.5)
	putF32(b, OFF_RIGHT_TONE, 0.125)
	putF32(b, OFF_RIGHT_CONV, 0.0)
	putF32(b, OFF_RIGHT_ANR, 0.3)
	putF32(b, OFF_OWN_VOICE, 0.6)

	for i := HA_RECORD_MIN_SZ; i < sz; i++ {
		b[i] = byte(i)
	}

	return b
}

func TestDecode(t *testing.T) {
	s, err := Decode(sampleRecord(HA_RECORD_MIN_SZ))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	for i := 0; i < NUM_EQ_BANDS; i++ {
		if s.LeftEQ[i] != float32(10*i) || s.RightEQ[i] != float32(10*i+5) {
			t.Errorf("EQ band %d: got %f/%f", i, s.LeftEQ[i], s.RightEQ[i])
		}
	}
	if s.LeftAmplification != 0.25 || s.RightAmplification != 0.5 {
		t.Errorf("amplification: got %f/%f",
			s.LeftAmplification, s.RightAmplification)
	}
	if s.LeftTone != -0.5 || s.RightTone != 0.125 {
		t.Errorf("tone: got %f/%f", s.LeftTone, s.RightTone)
	}
	if !s.LeftConversationBoost || s.RightConversationBoost {
		t.Errorf("boost: got %t/%t",
			s.LeftConversationBoost, s.RightConversationBoost)
	}
	if s.LeftAmbientNoiseReduction != 0.75 ||
		!near(s.RightAmbientNoiseReduction, 0.3) {

		t.Errorf("anr: got %f/%f",
			s.LeftAmbientNoiseReduction, s.RightAmbientNoiseReduction)
	}
	if !near(s.OwnVoiceAmplification, 0.6) {
		t.Errorf("own voice: got %f", s.OwnVoiceAmplification)
	}
	if s.NetAmplification != 0.375 || s.Balance != 0.25 {
		t.Errorf("derived: got net=%f balance=%f",
			s.NetAmplification, s.Balance)
	}
}

func TestDecodeLengthBoundary(t *testing.T) {
	_, err := Decode(sampleRecord(HA_RECORD_MIN_SZ)[:HA_RECORD_MIN_SZ-1])
	if !haxutil.IsTooShort(err) {
		t.Errorf("Decode(103 bytes): got %v want TooShortError", err)
	}

	if _, err := Decode(nil); !haxutil.IsTooShort(err) {
		t.Errorf("Decode(nil): got %v want TooShortError", err)
	}

	if _, err := Decode(sampleRecord(HA_RECORD_MIN_SZ)); err != nil {
		t.Errorf("Decode(104 bytes): %v", err)
	}
	if _, err := Decode(sampleRecord(140)); err != nil {
		t.Errorf("Decode(140 bytes): %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, sz := range []int{HA_RECORD_MIN_SZ, 120} {
		rec := sampleRecord(sz)
		s, err := Decode(rec)
		if err != nil {
			t.Fatalf("Decode(%d): %v", sz, err)
		}

		out, err := EncodeForWrite(rec, s)
		if err != nil {
			t.Fatalf("EncodeForWrite(%d): %v", sz, err)
		}
		if !bytes.Equal(out, rec) {
			t.Errorf("round trip (%d bytes) changed record:\ngot  %x\nwant %x",
				sz, out, rec)
		}
	}
}

func TestEncodeForWrite(t *testing.T) {
	cur := sampleRecord(112)
	cur[OFF_WRITE_MODE] = 0x00
	orig := append([]byte(nil), cur...)

	desired := Settings{
		LeftAmplification:      -0.25,
		RightAmplification:     0.75,
		LeftConversationBoost:  false,
		RightConversationBoost: true,
		OwnVoiceAmplification:  0.5,
	}
	desired.LeftEQ[3] = 42

	out, err := EncodeForWrite(cur, desired)
	if err != nil {
		t.Fatalf("EncodeForWrite: %v", err)
	}

	if !bytes.Equal(cur, orig) {
		t.Errorf("EncodeForWrite modified its input")
	}
	if len(out) != len(cur) {
		t.Fatalf("length: got %d want %d", len(out), len(cur))
	}
	if out[OFF_WRITE_MODE] != WRITE_MODE_BYTE {
		t.Errorf("write mode byte: got 0x%02x", out[OFF_WRITE_MODE])
	}
	if out[0] != cur[0] || out[1] != cur[1] || out[3] != cur[3] {
		t.Errorf("header not preserved: got %x", out[:4])
	}
	if !bytes.Equal(out[HA_RECORD_MIN_SZ:], cur[HA_RECORD_MIN_SZ:]) {
		t.Errorf("trailing bytes not preserved")
	}

	s, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.LeftAmplification != -0.25 || s.RightAmplification != 0.75 ||
		s.LeftConversationBoost || !s.RightConversationBoost ||
		s.LeftEQ[3] != 42 || s.OwnVoiceAmplification != 0.5 {

		t.Errorf("decoded write: got %+v", s)
	}
	if getF32(out, OFF_RIGHT_CONV) != 1.0 || getF32(out, OFF_LEFT_CONV) != 0.0 {
		t.Errorf("boost encoding: got %f/%f",
			getF32(out, OFF_LEFT_CONV), getF32(out, OFF_RIGHT_CONV))
	}

	if _, err := EncodeForWrite(cur[:HA_RECORD_MIN_SZ-1], desired); !haxutil.IsTooShort(err) {
		t.Errorf("EncodeForWrite(short): got %v want TooShortError", err)
	}
}

func TestBoostThreshold(t *testing.T) {
	cases := []struct {
		v    float32
		want bool
	}{
		{0.0, false},
		{0.5, false},
		{0.50001, true},
		{1.0, true},
		{-1.0, false},
	}

	for _, tt := range cases {
		rec := sampleRecord(HA_RECORD_MIN_SZ)
		putF32(rec, OFF_LEFT_CONV, tt.v)
		putF32(rec, OFF_RIGHT_CONV, tt.v)

		s, err := Decode(rec)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if s.LeftConversationBoost != tt.want || s.RightConversationBoost != tt.want {
			t.Errorf("boost %f: got %t/%t want %t", tt.v,
				s.LeftConversationBoost, s.RightConversationBoost, tt.want)
		}
	}
}

func TestDerivation(t *testing.T) {
	cases := []struct {
		left, right  float32
		net, balance float32
	}{
		{0.2, 0.6, 0.4, 0.4},
		{0.5, 0.5, 0.5, 0},
		{1, 1, 1, 0},
		{-1, 1, 0, 1},
		{1, -1, 0, -1},
		{2, 2, 1, 0},
	}

	for _, tt := range cases {
		rec := sampleRecord(HA_RECORD_MIN_SZ)
		putF32(rec, OFF_LEFT_AMP, tt.left)
		putF32(rec, OFF_RIGHT_AMP, tt.right)

		s, err := Decode(rec)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !near(s.NetAmplification, tt.net) || !near(s.Balance, tt.balance) {
			t.Errorf("left=%f right=%f: got net=%f balance=%f want %f/%f",
				tt.left, tt.right, s.NetAmplification, s.Balance,
				tt.net, tt.balance)
		}
	}
}

func TestDecompose(t *testing.T) {
	cases := []struct {
		amp, balance float32
		left, right  float32
	}{
		{0.4, 0, 0.4, 0.4},
		{0.5, 0.5, 0.5, 0.5},
		{0.5, 1, 0.5, 1.0},
		{0.5, 0.25, 0.5, 0.25},
		{0.4, -0.5, 1.2, 0.4},
		{0.5, -1, 2.0, 0.5},
		{0, 0.8, 0, 0},
	}

	for _, tt := range cases {
		l, r := Decompose(tt.amp, tt.balance)
		if !near(l, tt.left) || !near(r, tt.right) {
			t.Errorf("Decompose(%f, %f): got %f/%f want %f/%f",
				tt.amp, tt.balance, l, r, tt.left, tt.right)
		}
	}
}

// Decompose is the companion UI's convention, not the inverse of the values
// derived on decode.  Positive and negative balances of equal magnitude do not
// produce mirrored results, and decoding a decomposed pair does not return the
// original balance.
func TestDecomposeAsymmetry(t *testing.T) {
	lp, rp := Decompose(0.5, 0.25)
	ln, rn := Decompose(0.5, -0.25)
	if near(lp, rn) && near(rp, ln) {
		t.Errorf("Decompose is unexpectedly symmetric: %f/%f vs %f/%f",
			lp, rp, ln, rn)
	}

	l, r := Decompose(0.5, 0.25)
	if near(Balance(l, r), 0.25) {
		t.Errorf("Balance(Decompose(0.5, 0.25)) unexpectedly round-trips")
	}
}

func TestAdjustment(t *testing.T) {
	base, err := Decode(sampleRecord(HA_RECORD_MIN_SZ))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	a := AdjustmentFromSettings(base)
	if a.Amplification != base.NetAmplification || a.Balance != base.Balance ||
		a.Tone != base.LeftTone || a.ConversationBoost != base.LeftConversationBoost ||
		a.LeftEQ != base.LeftEQ || a.RightEQ != base.RightEQ {

		t.Errorf("AdjustmentFromSettings: got %+v", a)
	}

	a.Amplification = 0.4
	a.Balance = -0.5
	a.Tone = 0.1
	a.AmbientNoiseReduction = 0.2
	a.ConversationBoost = true

	s := a.Settings()
	if !near(s.LeftAmplification, 1.2) || !near(s.RightAmplification, 0.4) {
		t.Errorf("Settings(): amplification %f/%f",
			s.LeftAmplification, s.RightAmplification)
	}
	if s.LeftTone != 0.1 || s.RightTone != 0.1 ||
		s.LeftAmbientNoiseReduction != 0.2 || s.RightAmbientNoiseReduction != 0.2 ||
		!s.LeftConversationBoost || !s.RightConversationBoost {

		t.Errorf("Settings(): per-ear controls not mirrored: %+v", s)
	}

	d := DefaultAdjustment(base)
	if d.Amplification != 0 || d.Balance != 0 || d.Tone != 0 ||
		d.AmbientNoiseReduction != 0.5 || d.ConversationBoost ||
		d.OwnVoiceAmplification != 0.5 || d.LeftEQ != base.LeftEQ {

		t.Errorf("DefaultAdjustment: got %+v", d)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("DefaultAdjustment().Validate(): %v", err)
	}
}

func TestAdjustmentValidate(t *testing.T) {
	cases := []struct {
		a  Adjustment
		ok bool
	}{
		{Adjustment{Amplification: 1, Balance: -1, Tone: 1}, true},
		{Adjustment{Amplification: 1.5}, false},
		{Adjustment{Balance: -1.01}, false},
		{Adjustment{AmbientNoiseReduction: -0.1}, false},
		{Adjustment{OwnVoiceAmplification: 2}, false},
	}

	for i, tt := range cases {
		err := tt.a.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("case %d: got %v want ok=%t", i, err, tt.ok)
		}
	}
}

func TestTransparency(t *testing.T) {
	rec := sampleRecord(HA_RECORD_MIN_SZ)
	putF32(rec, 0, 1.0)

	tp, err := DecodeTransparency(rec)
	if err != nil {
		t.Fatalf("DecodeTransparency: %v", err)
	}
	if !tp.Enabled || !tp.HasOwnVoice || !near(tp.OwnVoiceAmplification, 0.6) {
		t.Errorf("DecodeTransparency: got %+v", tp)
	}
	if tp.LeftAmplification != 0.25 || tp.NetAmplification != 0.375 {
		t.Errorf("DecodeTransparency: amplification %f net %f",
			tp.LeftAmplification, tp.NetAmplification)
	}

	if out := EncodeTransparency(tp); !bytes.Equal(out, rec) {
		t.Errorf("EncodeTransparency:\ngot  %x\nwant %x", out, rec)
	}

	short := append([]byte(nil), rec[:TP_RECORD_MIN_SZ]...)
	putF32(short, 0, 0.0)
	tp, err = DecodeTransparency(short)
	if err != nil {
		t.Fatalf("DecodeTransparency(100): %v", err)
	}
	if tp.Enabled || tp.HasOwnVoice || tp.OwnVoiceAmplification != 0 {
		t.Errorf("DecodeTransparency(100): got %+v", tp)
	}
	if out := EncodeTransparency(tp); !bytes.Equal(out, short) {
		t.Errorf("EncodeTransparency(100):\ngot  %x\nwant %x", out, short)
	}

	if _, err := DecodeTransparency(rec[:TP_RECORD_MIN_SZ-1]); !haxutil.IsTooShort(err) {
		t.Errorf("DecodeTransparency(99): got %v want TooShortError", err)
	}
}

func TestToggle(t *testing.T) {
	if on, err := DecodeToggle([]byte{1}); err != nil || !on {
		t.Errorf("DecodeToggle([1]): got %t, %v", on, err)
	}
	if on, err := DecodeToggle([]byte{0, 1}); err != nil || on {
		t.Errorf("DecodeToggle([0 1]): got %t, %v", on, err)
	}
	if _, err := DecodeToggle(nil); !haxutil.IsTooShort(err) {
		t.Errorf("DecodeToggle(nil): got %v", err)
	}
	if !bytes.Equal(EncodeToggle(true), []byte{1}) ||
		!bytes.Equal(EncodeToggle(false), []byte{0}) {

		t.Errorf("EncodeToggle mismatch")
	}
}
