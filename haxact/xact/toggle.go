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

type ToggleReadCmd struct {
	CmdBase
	Handle bledefs.AttHandle
}

func NewToggleReadCmd() *ToggleReadCmd {
	return &ToggleReadCmd{
		CmdBase: NewCmdBase(),
		Handle:  bledefs.ATT_HANDLE_LOUD_SOUND_REDUCTION,
	}
}

type ToggleResult struct {
	On bool
}

func (r *ToggleResult) Status() int {
	return 0
}

func (c *ToggleReadCmd) Run(s sesn.Sesn) (Result, error) {
	b, err := txRead(s, c.Handle.Value(), &c.CmdBase)
	if err != nil {
		return nil, err
	}

	on, err := hasettings.DecodeToggle(b)
	if err != nil {
		return nil, err
	}

	return &ToggleResult{On: on}, nil
}

type ToggleWriteCmd struct {
	CmdBase
	Handle bledefs.AttHandle
	On     bool
}

func NewToggleWriteCmd() *ToggleWriteCmd {
	return &ToggleWriteCmd{
		CmdBase: NewCmdBase(),
		Handle:  bledefs.ATT_HANDLE_LOUD_SOUND_REDUCTION,
	}
}

func (c *ToggleWriteCmd) Run(s sesn.Sesn) (Result, error) {
	err := txWrite(s, c.Handle.Value(), hasettings.EncodeToggle(c.On),
		&c.CmdBase)
	if err != nil {
		return nil, err
	}

	return &ToggleResult{On: c.On}, nil
}
