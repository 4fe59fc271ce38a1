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

package sesn

import (
	"librepods.dev/hamgr/haxact/haxutil"
)

// Reads an attribute, retrying on response timeout up to opt.Tries times.
func Read(s Sesn, handle uint16, o TxOptions) ([]byte, error) {
	retries := o.Tries - 1
	for i := 0; ; i++ {
		b, err := s.ReadOnce(handle, o)
		if err == nil {
			return b, nil
		}

		if !haxutil.IsRspTimeout(err) || i >= retries {
			return nil, err
		}
	}
}

func Write(s Sesn, handle uint16, value []byte, o TxOptions) error {
	return s.WriteOnce(handle, value, o)
}
