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

// Package xact implements the hearing device operations as commands that run
// over a session.
package xact

import (
	log "github.com/sirupsen/logrus"

	"librepods.dev/hamgr/haxact/haxutil"
	"librepods.dev/hamgr/haxact/sesn"
)

type Result interface {
	Status() int
}

type Cmd interface {
	// Transmits the command's requests and returns the outcome.
	Run(s sesn.Sesn) (Result, error)

	// Makes the command's remaining requests fail with a SesnClosedError.
	Abort() error

	TxOptions() sesn.TxOptions
	SetTxOptions(opt sesn.TxOptions)
}

type CmdBase struct {
	txOptions sesn.TxOptions
	abortErr  error
}

func NewCmdBase() CmdBase {
	return CmdBase{
		txOptions: sesn.NewTxOptions(),
	}
}

func (c *CmdBase) TxOptions() sesn.TxOptions {
	if c.txOptions.Timeout == 0 && c.txOptions.Tries == 0 {
		return sesn.NewTxOptions()
	}
	return c.txOptions
}

func (c *CmdBase) SetTxOptions(opt sesn.TxOptions) {
	c.txOptions = opt
}

func (c *CmdBase) Abort() error {
	c.abortErr = haxutil.NewSesnClosedError("command aborted")
	return nil
}

func txRead(s sesn.Sesn, handle uint16, c *CmdBase) ([]byte, error) {
	if err := c.abortErr; err != nil {
		return nil, err
	}

	b, err := sesn.Read(s, handle, c.TxOptions())
	if err != nil {
		log.Debugf("read of handle 0x%04x failed: %s", handle, err.Error())
		return nil, err
	}

	return b, nil
}

func txWrite(s sesn.Sesn, handle uint16, value []byte, c *CmdBase) error {
	if err := c.abortErr; err != nil {
		return err
	}

	return sesn.Write(s, handle, value, c.TxOptions())
}
