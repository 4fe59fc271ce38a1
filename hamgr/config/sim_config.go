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

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"mynewt.apache.org/newt/util"

	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/simxport"
)

// Settings for the in-memory device.  All keys are optional.
type SimConfig struct {
	LoudSoundReduction bool
	RspDelay           time.Duration
}

func einvalSimConnString(f string, args ...interface{}) error {
	suffix := fmt.Sprintf(f, args...)
	return util.FmtNewtError("Invalid sim connstring; %s", suffix)
}

func ParseSimConnString(cs string) (*SimConfig, error) {
	sc := &SimConfig{}
	if cs == "" {
		return sc, nil
	}

	for _, p := range strings.Split(cs, ",") {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, einvalSimConnString("expected comma-separated "+
				"key=value pairs; no '=' in: %s", p)
		}

		k := kv[0]
		v := kv[1]

		switch k {
		case "lsr":
			on, err := cast.ToBoolE(v)
			if err != nil {
				return nil, einvalSimConnString("Invalid lsr: %s", v)
			}
			sc.LoudSoundReduction = on

		case "rsp_delay":
			ms, err := cast.ToIntE(v)
			if err != nil || ms < 0 {
				return nil, einvalSimConnString("Invalid rsp_delay: %s", v)
			}
			sc.RspDelay = time.Duration(ms) * time.Millisecond

		default:
			return nil, einvalSimConnString("Unrecognized key: %s", k)
		}
	}

	return sc, nil
}

func BuildSimXport(sc *SimConfig) *simxport.SimXport {
	sx := simxport.NewSimXport()
	sx.SetRspDelay(sc.RspDelay)
	if sc.LoudSoundReduction {
		sx.SetValue(bledefs.ATT_HANDLE_LOUD_SOUND_REDUCTION.Value(), []byte{1})
	}
	return sx
}
