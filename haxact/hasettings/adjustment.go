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
	"fmt"
	"strings"
)

// The controls a user adjusts.  Tone, noise reduction and conversation boost
// apply to both ears alike; amplification is split between the ears by
// Decompose().
type Adjustment struct {
	Amplification         float32               `structs:"amplification" codec:"amplification"`
	Balance               float32               `structs:"balance" codec:"balance"`
	Tone                  float32               `structs:"tone" codec:"tone"`
	AmbientNoiseReduction float32               `structs:"ambient_noise_reduction" codec:"ambient_noise_reduction"`
	ConversationBoost     bool                  `structs:"conversation_boost" codec:"conversation_boost"`
	OwnVoiceAmplification float32               `structs:"own_voice_amplification" codec:"own_voice_amplification"`
	LeftEQ                [NUM_EQ_BANDS]float32 `structs:"left_eq" codec:"left_eq"`
	RightEQ               [NUM_EQ_BANDS]float32 `structs:"right_eq" codec:"right_eq"`
}

// Presents decoded settings as adjustable controls.  Per-ear values that
// differ are represented by the left ear.
func AdjustmentFromSettings(s Settings) Adjustment {
	return Adjustment{
		Amplification:         s.NetAmplification,
		Balance:               s.Balance,
		Tone:                  s.LeftTone,
		AmbientNoiseReduction: s.LeftAmbientNoiseReduction,
		ConversationBoost:     s.LeftConversationBoost,
		OwnVoiceAmplification: s.OwnVoiceAmplification,
		LeftEQ:                s.LeftEQ,
		RightEQ:               s.RightEQ,
	}
}

// Factory control positions.  The audiogram is not part of a reset, so the EQ
// is taken from eqFrom.
func DefaultAdjustment(eqFrom Settings) Adjustment {
	return Adjustment{
		Amplification:         0,
		Balance:               0,
		Tone:                  0,
		AmbientNoiseReduction: 0.5,
		ConversationBoost:     false,
		OwnVoiceAmplification: 0.5,
		LeftEQ:                eqFrom.LeftEQ,
		RightEQ:               eqFrom.RightEQ,
	}
}

func (a Adjustment) Settings() Settings {
	left, right := Decompose(a.Amplification, a.Balance)

	return Settings{
		LeftEQ:                     a.LeftEQ,
		RightEQ:                    a.RightEQ,
		LeftAmplification:          left,
		RightAmplification:         right,
		LeftTone:                   a.Tone,
		RightTone:                  a.Tone,
		LeftConversationBoost:      a.ConversationBoost,
		RightConversationBoost:     a.ConversationBoost,
		LeftAmbientNoiseReduction:  a.AmbientNoiseReduction,
		RightAmbientNoiseReduction: a.AmbientNoiseReduction,
		NetAmplification:           a.Amplification,
		Balance:                    a.Balance,
		OwnVoiceAmplification:      a.OwnVoiceAmplification,
	}
}

// Reports controls outside the ranges the device's own UI produces.  The
// codec itself writes whatever it is given.
func (a *Adjustment) Validate() error {
	var bad []string

	check := func(name string, v float32, lo float32, hi float32) {
		if v < lo || v > hi {
			bad = append(bad,
				fmt.Sprintf("%s=%.3f not in [%.0f, %.0f]", name, v, lo, hi))
		}
	}

	check("amp", a.Amplification, -1, 1)
	check("balance", a.Balance, -1, 1)
	check("tone", a.Tone, -1, 1)
	check("anr", a.AmbientNoiseReduction, 0, 1)
	check("own_voice", a.OwnVoiceAmplification, 0, 1)

	if len(bad) > 0 {
		return fmt.Errorf("invalid adjustment: %s", strings.Join(bad, "; "))
	}

	return nil
}
