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
	"github.com/pkg/errors"

	"librepods.dev/hamgr/haxact/haxutil"
)

// The transparency record shares the hearing-aid layout except that its four
// byte header is an "enabled" float and own voice amplification is optional.
const TP_RECORD_MIN_SZ = 100

type Transparency struct {
	Enabled bool `structs:"enabled" codec:"enabled"`
	Settings

	// Only meaningful when HasOwnVoice is set.
	HasOwnVoice bool `structs:"has_own_voice" codec:"has_own_voice"`
}

func DecodeTransparency(b []byte) (Transparency, error) {
	if len(b) < TP_RECORD_MIN_SZ {
		return Transparency{}, haxutil.NewTooShortError(
			"transparency record", TP_RECORD_MIN_SZ, len(b))
	}

	// Pad a short record so the shared decoder can read it; the padded own
	// voice field is discarded below.
	full := b
	if len(b) < HA_RECORD_MIN_SZ {
		full = make([]byte, HA_RECORD_MIN_SZ)
		copy(full, b)
	}

	s, err := Decode(full)
	if err != nil {
		return Transparency{}, errors.Wrapf(err, "transparency record")
	}

	t := Transparency{
		Enabled:     f32ToBool(getF32(b, 0)),
		Settings:    s,
		HasOwnVoice: len(b) >= HA_RECORD_MIN_SZ,
	}
	if !t.HasOwnVoice {
		t.OwnVoiceAmplification = 0
	}

	return t, nil
}

// Builds a fresh transparency record.  Unlike the hearing-aid record nothing
// is carried over from the device.
func EncodeTransparency(t Transparency) []byte {
	sz := TP_RECORD_MIN_SZ
	if t.HasOwnVoice {
		sz = HA_RECORD_MIN_SZ
	}

	b := make([]byte, sz)
	putF32(b, 0, boolToF32(t.Enabled))

	putEq(b, OFF_LEFT_EQ, t.LeftEQ)
	putF32(b, OFF_LEFT_AMP, t.LeftAmplification)
	putF32(b, OFF_LEFT_TONE, t.LeftTone)
	putF32(b, OFF_LEFT_CONV, boolToF32(t.LeftConversationBoost))
	putF32(b, OFF_LEFT_ANR, t.LeftAmbientNoiseReduction)

	putEq(b, OFF_RIGHT_EQ, t.RightEQ)
	putF32(b, OFF_RIGHT_AMP, t.RightAmplification)
	putF32(b, OFF_RIGHT_TONE, t.RightTone)
	putF32(b, OFF_RIGHT_CONV, boolToF32(t.RightConversationBoost))
	putF32(b, OFF_RIGHT_ANR, t.RightAmbientNoiseReduction)

	if t.HasOwnVoice {
		putF32(b, OFF_OWN_VOICE, t.OwnVoiceAmplification)
	}

	return b
}
