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

// Package hasettings converts the hearing-aid configuration record to and
// from its structured form.
//
// The record is a fixed layout of little-endian IEEE-754 32-bit floats:
//
//     [0..4)    header (opaque; byte 2 is forced to 0x64 on write)
//     [4..36)   left EQ, 8 bands
//     36        left amplification
//     40        left tone
//     44        left conversation boost (> 0.5 is on)
//     48        left ambient noise reduction
//     [52..84)  right EQ, 8 bands
//     84        right amplification
//     88        right tone
//     92        right conversation boost
//     96        right ambient noise reduction
//     100       own voice amplification
//
// Bytes past offset 104 are opaque and preserved on write.
package hasettings

import (
	"encoding/binary"
	"fmt"
	"math"

	"librepods.dev/hamgr/haxact/haxutil"
)

const NUM_EQ_BANDS = 8

const (
	OFF_WRITE_MODE = 2
	OFF_LEFT_EQ    = 4
	OFF_LEFT_AMP   = 36
	OFF_LEFT_TONE  = 40
	OFF_LEFT_CONV  = 44
	OFF_LEFT_ANR   = 48
	OFF_RIGHT_EQ   = 52
	OFF_RIGHT_AMP  = 84
	OFF_RIGHT_TONE = 88
	OFF_RIGHT_CONV = 92
	OFF_RIGHT_ANR  = 96
	OFF_OWN_VOICE  = 100
)

const HA_RECORD_MIN_SZ = 104

// Value the device requires at OFF_WRITE_MODE for a write to take effect.
// Its meaning is unknown.
const WRITE_MODE_BYTE = 0x64

// Audiology frequency bands, in record order.
var EqBandLabels = [NUM_EQ_BANDS]string{
	"250Hz", "500Hz", "1kHz", "2kHz", "3kHz", "4kHz", "6kHz", "8kHz",
}

// Decoded hearing-aid configuration.  A Settings is a snapshot; it holds no
// reference to the record it was decoded from.
type Settings struct {
	LeftEQ                     [NUM_EQ_BANDS]float32 `structs:"left_eq" codec:"left_eq"`
	RightEQ                    [NUM_EQ_BANDS]float32 `structs:"right_eq" codec:"right_eq"`
	LeftAmplification          float32               `structs:"left_amplification" codec:"left_amplification"`
	RightAmplification         float32               `structs:"right_amplification" codec:"right_amplification"`
	LeftTone                   float32               `structs:"left_tone" codec:"left_tone"`
	RightTone                  float32               `structs:"right_tone" codec:"right_tone"`
	LeftConversationBoost      bool                  `structs:"left_conversation_boost" codec:"left_conversation_boost"`
	RightConversationBoost     bool                  `structs:"right_conversation_boost" codec:"right_conversation_boost"`
	LeftAmbientNoiseReduction  float32               `structs:"left_ambient_noise_reduction" codec:"left_ambient_noise_reduction"`
	RightAmbientNoiseReduction float32               `structs:"right_ambient_noise_reduction" codec:"right_ambient_noise_reduction"`
	NetAmplification           float32               `structs:"net_amplification" codec:"net_amplification"`
	Balance                    float32               `structs:"balance" codec:"balance"`
	OwnVoiceAmplification      float32               `structs:"own_voice_amplification" codec:"own_voice_amplification"`
}

func getF32(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4]))
}

func putF32(b []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(b[off:off+4], math.Float32bits(v))
}

func getEq(b []byte, off int) [NUM_EQ_BANDS]float32 {
	var eq [NUM_EQ_BANDS]float32
	for i := range eq {
		eq[i] = getF32(b, off+i*4)
	}
	return eq
}

func putEq(b []byte, off int, eq [NUM_EQ_BANDS]float32) {
	for i, v := range eq {
		putF32(b, off+i*4, v)
	}
}

func boolToF32(v bool) float32 {
	if v {
		return 1.0
	}
	return 0.0
}

func f32ToBool(v float32) bool {
	return v > 0.5
}

func Clamp(v float32, lo float32, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Overall amplification as presented to the user.
func NetAmplification(left float32, right float32) float32 {
	return Clamp((left+right)/2, -1, 1)
}

// Right-minus-left amplification difference.
func Balance(left float32, right float32) float32 {
	return Clamp(right-left, -1, 1)
}

// Splits an overall amplification and a balance into per-ear values.  This is
// the convention the device's companion UI uses; it is not the inverse of
// NetAmplification()/Balance().
func Decompose(amp float32, balance float32) (left float32, right float32) {
	left = amp
	right = amp

	if balance < 0 {
		left = amp + (0.5-balance)*amp*2
	} else if balance > 0 {
		right = amp + (balance-0.5)*amp*2
	}

	return left, right
}

// Parses a hearing-aid record.  Net amplification and balance are derived
// from the per-ear amplification; they are not stored in the record.
func Decode(b []byte) (Settings, error) {
	if len(b) < HA_RECORD_MIN_SZ {
		return Settings{}, haxutil.NewTooShortError(
			"hearing aid record", HA_RECORD_MIN_SZ, len(b))
	}

	s := Settings{
		LeftEQ:                     getEq(b, OFF_LEFT_EQ),
		LeftAmplification:          getF32(b, OFF_LEFT_AMP),
		LeftTone:                   getF32(b, OFF_LEFT_TONE),
		LeftConversationBoost:      f32ToBool(getF32(b, OFF_LEFT_CONV)),
		LeftAmbientNoiseReduction:  getF32(b, OFF_LEFT_ANR),
		RightEQ:                    getEq(b, OFF_RIGHT_EQ),
		RightAmplification:         getF32(b, OFF_RIGHT_AMP),
		RightTone:                  getF32(b, OFF_RIGHT_TONE),
		RightConversationBoost:     f32ToBool(getF32(b, OFF_RIGHT_CONV)),
		RightAmbientNoiseReduction: getF32(b, OFF_RIGHT_ANR),
		OwnVoiceAmplification:      getF32(b, OFF_OWN_VOICE),
	}

	s.NetAmplification = NetAmplification(
		s.LeftAmplification, s.RightAmplification)
	s.Balance = Balance(s.LeftAmplification, s.RightAmplification)

	return s, nil
}

// Builds the record to write from the device's current record and the desired
// settings.  The current record must have been read immediately before the
// write; every byte outside the decoded fields is carried over from it.  The
// input slice is not modified.
func EncodeForWrite(current []byte, desired Settings) ([]byte, error) {
	if len(current) < HA_RECORD_MIN_SZ {
		return nil, haxutil.NewTooShortError(
			"current hearing aid record", HA_RECORD_MIN_SZ, len(current))
	}

	b := make([]byte, len(current))
	copy(b, current)

	b[OFF_WRITE_MODE] = WRITE_MODE_BYTE

	putEq(b, OFF_LEFT_EQ, desired.LeftEQ)
	putF32(b, OFF_LEFT_AMP, desired.LeftAmplification)
	putF32(b, OFF_LEFT_TONE, desired.LeftTone)
	putF32(b, OFF_LEFT_CONV, boolToF32(desired.LeftConversationBoost))
	putF32(b, OFF_LEFT_ANR, desired.LeftAmbientNoiseReduction)

	putEq(b, OFF_RIGHT_EQ, desired.RightEQ)
	putF32(b, OFF_RIGHT_AMP, desired.RightAmplification)
	putF32(b, OFF_RIGHT_TONE, desired.RightTone)
	putF32(b, OFF_RIGHT_CONV, boolToF32(desired.RightConversationBoost))
	putF32(b, OFF_RIGHT_ANR, desired.RightAmbientNoiseReduction)

	putF32(b, OFF_OWN_VOICE, desired.OwnVoiceAmplification)

	return b, nil
}

func (s *Settings) String() string {
	return fmt.Sprintf("amp=%.2f balance=%.2f tone=%.2f/%.2f "+
		"anr=%.2f/%.2f conv=%t/%t own_voice=%.2f",
		s.NetAmplification, s.Balance, s.LeftTone, s.RightTone,
		s.LeftAmbientNoiseReduction, s.RightAmbientNoiseReduction,
		s.LeftConversationBoost, s.RightConversationBoost,
		s.OwnVoiceAmplification)
}
