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

package hautil

import (
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"mynewt.apache.org/newt/util"

	"librepods.dev/hamgr/haxact/sesn"
)

type ToolInfoType struct {
	ExeName       string
	ShortName     string
	LongName      string
	VersionString string
	CfgFilename   string

	// Relative to the user's home directory.
	PresetDir string
}

var Timeout float64
var Tries int
var ConnProfile string
var ConnType string
var ConnString string
var Preflight bool
var ToolInfo ToolInfoType

func TxOptions() sesn.TxOptions {
	return sesn.TxOptions{
		Timeout: time.Duration(Timeout * float64(time.Second)),
		Tries:   Tries,
	}
}

func HomePath(rel string) (string, error) {
	dir, err := homedir.Dir()
	if err != nil {
		return "", util.NewNewtError(err.Error())
	}

	return filepath.Join(dir, rel), nil
}
