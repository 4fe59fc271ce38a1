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

package xact

import (
	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/hasettings"
	"librepods.dev/hamgr/haxact/sesn"
)

var transparencyHandle = bledefs.ATT_HANDLE_TRANSPARENCY.Value()

type TransparencyReadCmd struct {
	CmdBase
}

func NewTransparencyReadCmd() *TransparencyReadCmd {
	return &TransparencyReadCmd{
		CmdBase: NewCmdBase(),
	}
}

type TransparencyReadResult struct {
	Raw          []byte
	Transparency hasettings.Transparency
}

func (r *TransparencyReadResult) Status() int {
	return 0
}

func (c *TransparencyReadCmd) Run(s sesn.Sesn) (Result, error) {
	b, err := txRead(s, transparencyHandle, &c.CmdBase)
	if err != nil {
		return nil, err
	}

	t, err := hasettings.DecodeTransparency(b)
	if err != nil {
		return nil, err
	}

	return &TransparencyReadResult{
		Raw:          b,
		Transparency: t,
	}, nil
}

// Writes a transparency record built from scratch; the current record is not
// consulted.
type TransparencyWriteCmd struct {
	CmdBase
	Transparency hasettings.Transparency
}

func NewTransparencyWriteCmd() *TransparencyWriteCmd {
	return &TransparencyWriteCmd{
		CmdBase: NewCmdBase(),
	}
}

type TransparencyWriteResult struct {
	Written []byte
}

func (r *TransparencyWriteResult) Status() int {
	return 0
}

func (c *TransparencyWriteCmd) Run(s sesn.Sesn) (Result, error) {
	b := hasettings.EncodeTransparency(c.Transparency)
	if err := txWrite(s, transparencyHandle, b, &c.CmdBase); err != nil {
		return nil, err
	}

	return &TransparencyWriteResult{
		Written: b,
	}, nil
}
