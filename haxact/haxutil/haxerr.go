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

package haxutil

import (
	"fmt"

	"github.com/pkg/errors"
)

// Represents an ATT-layer timeout; request sent, but no response received.
type RspTimeoutError struct {
	Text string
}

func NewRspTimeoutError(text string) *RspTimeoutError {
	return &RspTimeoutError{
		Text: text,
	}
}

func FmtRspTimeoutError(format string, args ...interface{}) *RspTimeoutError {
	return NewRspTimeoutError(fmt.Sprintf(format, args...))
}

func (e *RspTimeoutError) Error() string {
	return e.Text
}

func IsRspTimeout(err error) bool {
	_, ok := errors.Cause(err).(*RspTimeoutError)
	return ok
}

// Indicates a failure to establish the L2CAP connection.  A refused
// connection means the device is not reachable or not paired; it is never
// retried.
type ConnectError struct {
	Text      string
	Refused   bool
	Transient bool
	Err       error
}

func NewConnectError(err error, refused bool, transient bool) *ConnectError {
	return &ConnectError{
		Text:      fmt.Sprintf("connect failed: %s", err.Error()),
		Refused:   refused,
		Transient: transient,
		Err:       err,
	}
}

func (e *ConnectError) Error() string {
	return e.Text
}

func IsConnect(err error) bool {
	_, ok := errors.Cause(err).(*ConnectError)
	return ok
}

func ToConnect(err error) *ConnectError {
	if cerr, ok := errors.Cause(err).(*ConnectError); ok {
		return cerr
	} else {
		return nil
	}
}

func IsConnRefused(err error) bool {
	cerr := ToConnect(err)
	return cerr != nil && cerr.Refused
}

type MalformedPduError struct {
	Text string
}

func NewMalformedPduError(text string) *MalformedPduError {
	return &MalformedPduError{
		Text: text,
	}
}

func FmtMalformedPduError(format string,
	args ...interface{}) *MalformedPduError {

	return NewMalformedPduError(fmt.Sprintf(format, args...))
}

func (e *MalformedPduError) Error() string {
	return e.Text
}

func IsMalformedPdu(err error) bool {
	_, ok := errors.Cause(err).(*MalformedPduError)
	return ok
}

// Indicates a record too short to be decoded.
type TooShortError struct {
	Text string
	Need int
	Have int
}

func NewTooShortError(what string, need int, have int) *TooShortError {
	return &TooShortError{
		Text: fmt.Sprintf("%s too short: have %d bytes, need %d",
			what, have, need),
		Need: need,
		Have: have,
	}
}

func (e *TooShortError) Error() string {
	return e.Text
}

func IsTooShort(err error) bool {
	_, ok := errors.Cause(err).(*TooShortError)
	return ok
}

// Reported when the receive pump exits while the session is still supposed to
// be running.
type PumpTerminatedError struct {
	Text string
	Err  error
}

func NewPumpTerminatedError(err error) *PumpTerminatedError {
	text := "receive pump terminated"
	if err != nil {
		text += ": " + err.Error()
	}

	return &PumpTerminatedError{
		Text: text,
		Err:  err,
	}
}

func (e *PumpTerminatedError) Error() string {
	return e.Text
}

func IsPumpTerminated(err error) bool {
	_, ok := errors.Cause(err).(*PumpTerminatedError)
	return ok
}

type SesnAlreadyOpenError struct {
	Text string
}

func NewSesnAlreadyOpenError(text string) *SesnAlreadyOpenError {
	return &SesnAlreadyOpenError{
		Text: text,
	}
}

func (e *SesnAlreadyOpenError) Error() string {
	return e.Text
}

func IsSesnAlreadyOpen(err error) bool {
	_, ok := errors.Cause(err).(*SesnAlreadyOpenError)
	return ok
}

type SesnClosedError struct {
	Text string
}

func NewSesnClosedError(text string) *SesnClosedError {
	return &SesnClosedError{
		Text: text,
	}
}

func FmtSesnClosedError(format string, args ...interface{}) *SesnClosedError {
	return NewSesnClosedError(fmt.Sprintf(format, args...))
}

func (e *SesnClosedError) Error() string {
	return e.Text
}

func IsSesnClosed(err error) bool {
	_, ok := errors.Cause(err).(*SesnClosedError)
	return ok
}

// Represents a low-level transport error.
type XportError struct {
	Text string
}

func NewXportError(text string) *XportError {
	return &XportError{text}
}

func (e *XportError) Error() string {
	return e.Text
}

func IsXport(err error) bool {
	if err == nil {
		return false
	}

	_, ok := errors.Cause(err).(*XportError)
	return ok
}

// Returned by a transport receive when the poll interval elapses without any
// data.  Not an error condition for the pump.
type RxTimeoutError struct {
	Text string
}

func NewRxTimeoutError() *RxTimeoutError {
	return &RxTimeoutError{"receive timeout"}
}

func (e *RxTimeoutError) Error() string {
	return e.Text
}

func IsRxTimeout(err error) bool {
	_, ok := errors.Cause(err).(*RxTimeoutError)
	return ok
}

// An ATT Error Response sent by the peer.
type AttError struct {
	Text   string
	ReqOp  uint8
	Handle uint16
	Status uint8
}

func NewAttError(reqOp uint8, handle uint16, status uint8,
	text string) *AttError {

	return &AttError{
		Text:   text,
		ReqOp:  reqOp,
		Handle: handle,
		Status: status,
	}
}

func (e *AttError) Error() string {
	return e.Text
}

func IsAtt(err error) bool {
	_, ok := errors.Cause(err).(*AttError)
	return ok
}

func ToAtt(err error) *AttError {
	if aerr, ok := errors.Cause(err).(*AttError); ok {
		return aerr
	} else {
		return nil
	}
}
