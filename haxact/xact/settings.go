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
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/hasettings"
	"librepods.dev/hamgr/haxact/sesn"
)

var hearingAidHandle = bledefs.ATT_HANDLE_HEARING_AID.Value()

func readHearingAid(s sesn.Sesn, c *CmdBase) ([]byte, hasettings.Settings,
	error) {

	b, err := txRead(s, hearingAidHandle, c)
	if err != nil {
		return nil, hasettings.Settings{}, err
	}

	st, err := hasettings.Decode(b)
	if err != nil {
		return nil, hasettings.Settings{}, err
	}

	return b, st, nil
}

///////////////////////////////////////////////////////////////////////////////
// $read                                                                     //
///////////////////////////////////////////////////////////////////////////////

type SettingsReadCmd struct {
	CmdBase
}

func NewSettingsReadCmd() *SettingsReadCmd {
	return &SettingsReadCmd{
		CmdBase: NewCmdBase(),
	}
}

type SettingsReadResult struct {
	Raw      []byte
	Settings hasettings.Settings
}

func (r *SettingsReadResult) Status() int {
	return 0
}

func (c *SettingsReadCmd) Run(s sesn.Sesn) (Result, error) {
	b, st, err := readHearingAid(s, &c.CmdBase)
	if err != nil {
		return nil, err
	}

	return &SettingsReadResult{
		Raw:      b,
		Settings: st,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// $write                                                                    //
///////////////////////////////////////////////////////////////////////////////

// Writes a complete set of hearing-aid settings.  The device's current record
// is read first; bytes the codec does not interpret are carried over from it.
type SettingsWriteCmd struct {
	CmdBase
	Settings hasettings.Settings
}

func NewSettingsWriteCmd() *SettingsWriteCmd {
	return &SettingsWriteCmd{
		CmdBase: NewCmdBase(),
	}
}

type SettingsWriteResult struct {
	// Record read before the write.
	Prev []byte

	// Record written.
	Written []byte
}

func (r *SettingsWriteResult) Status() int {
	return 0
}

func writeMerged(s sesn.Sesn, cur []byte, desired hasettings.Settings,
	c *CmdBase) (*SettingsWriteResult, error) {

	b, err := hasettings.EncodeForWrite(cur, desired)
	if err != nil {
		return nil, err
	}

	log.Debugf("writing hearing aid settings: %s", desired.String())
	if err := txWrite(s, hearingAidHandle, b, c); err != nil {
		return nil, err
	}

	return &SettingsWriteResult{
		Prev:    cur,
		Written: b,
	}, nil
}

func (c *SettingsWriteCmd) Run(s sesn.Sesn) (Result, error) {
	cur, err := txRead(s, hearingAidHandle, &c.CmdBase)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch current settings")
	}

	return writeMerged(s, cur, c.Settings, &c.CmdBase)
}

///////////////////////////////////////////////////////////////////////////////
// $adjust                                                                   //
///////////////////////////////////////////////////////////////////////////////

type AdjustFn func(a hasettings.Adjustment) hasettings.Adjustment

// Reads the current settings, presents them as adjustable controls, applies
// Fn and writes the result.
type SettingsAdjustCmd struct {
	CmdBase
	Fn AdjustFn

	// Write even if the adjusted controls are out of range.
	Force bool
}

func NewSettingsAdjustCmd() *SettingsAdjustCmd {
	return &SettingsAdjustCmd{
		CmdBase: NewCmdBase(),
	}
}

type SettingsAdjustResult struct {
	SettingsWriteResult
	Adjustment hasettings.Adjustment
}

func (c *SettingsAdjustCmd) Run(s sesn.Sesn) (Result, error) {
	cur, st, err := readHearingAid(s, &c.CmdBase)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch current settings")
	}

	adj := hasettings.AdjustmentFromSettings(st)
	if c.Fn != nil {
		adj = c.Fn(adj)
	}

	if err := adj.Validate(); err != nil && !c.Force {
		return nil, err
	}

	wr, err := writeMerged(s, cur, adj.Settings(), &c.CmdBase)
	if err != nil {
		return nil, err
	}

	return &SettingsAdjustResult{
		SettingsWriteResult: *wr,
		Adjustment:          adj,
	}, nil
}

// Restores the factory control positions.  The EQ is left as it is.
func NewSettingsResetCmd() *SettingsAdjustCmd {
	c := NewSettingsAdjustCmd()
	c.Fn = func(a hasettings.Adjustment) hasettings.Adjustment {
		return hasettings.DefaultAdjustment(a.Settings())
	}
	return c
}
