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
	"librepods.dev/hamgr/haxact/haxutil"
)

// Single-byte on/off attributes such as loud sound reduction.
func DecodeToggle(b []byte) (bool, error) {
	if len(b) < 1 {
		return false, haxutil.NewTooShortError("toggle", 1, len(b))
	}

	return b[0] != 0, nil
}

func EncodeToggle(on bool) []byte {
	if on {
		return []byte{1}
	}
	return []byte{0}
}
