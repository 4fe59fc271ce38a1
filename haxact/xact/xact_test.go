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

package xact_test

import (
	"bytes"
	"math"
	"testing"
	"time"

	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/hasettings"
	"librepods.dev/hamgr/haxact/haxutil"
	"librepods.dev/hamgr/haxact/sesn"
	"librepods.dev/hamgr/haxact/simxport"
	"librepods.dev/hamgr/haxact/xact"
)

var hHearingAid = bledefs.ATT_HANDLE_HEARING_AID.Value()

func openSim(t *testing.T) (*simxport.SimXport, sesn.Sesn) {
	addr, err := bledefs.ParseBleAddr("11:22:33:44:55:66")
	if err != nil {
		t.Fatal(err)
	}

	cfg := sesn.NewSesnCfg()
	cfg.PeerSpec.Ble.Addr = addr
	cfg.Att.RxPollTimeout = 10 * time.Millisecond

	x := simxport.NewSimXport()
	s, err := x.BuildSesn(cfg)
	if err != nil {
		t.Fatalf("BuildSesn: %v", err)
	}
	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}

	return x, s
}

func near(a float32, b float32) bool {
	return math.Abs(float64(a)-float64(b)) < 1e-6
}

func TestSettingsRead(t *testing.T) {
	x, s := openSim(t)
	defer s.Close()

	res, err := xact.NewSettingsReadCmd().Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sres := res.(*xact.SettingsReadResult)

	if !bytes.Equal(sres.Raw, x.Value(hHearingAid)) {
		t.Errorf("raw record mismatch")
	}
	if sres.Settings.NetAmplification != 0.5 || sres.Settings.Balance != 0 {
		t.Errorf("settings: got %s", sres.Settings.String())
	}
}

func TestSettingsReadTooShort(t *testing.T) {
	x, s := openSim(t)
	defer s.Close()

	x.SetValue(hHearingAid, make([]byte, 103))

	if _, err := xact.NewSettingsReadCmd().Run(s); !haxutil.IsTooShort(err) {
		t.Errorf("Run: got %v want TooShortError", err)
	}
}

func TestSettingsWritePreservesOpaqueBytes(t *testing.T) {
	x, s := openSim(t)
	defer s.Close()

	cur := x.Value(hHearingAid)
	cur = append(cur, 0xde, 0xad, 0xbe, 0xef)
	cur[0] = 0x77
	cur[2] = 0x00
	x.SetValue(hHearingAid, cur)

	st, err := hasettings.Decode(cur)
	if err != nil {
		t.Fatal(err)
	}
	st.LeftAmplification = 0.1
	st.RightConversationBoost = true

	c := xact.NewSettingsWriteCmd()
	c.Settings = st
	if _, err := c.Run(s); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := x.Value(hHearingAid)
	if len(got) != len(cur) {
		t.Fatalf("written length: got %d want %d", len(got), len(cur))
	}
	if got[0] != 0x77 || got[2] != hasettings.WRITE_MODE_BYTE {
		t.Errorf("header: got %x", got[:4])
	}
	if !bytes.Equal(got[hasettings.HA_RECORD_MIN_SZ:], []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("trailing bytes: got %x", got[hasettings.HA_RECORD_MIN_SZ:])
	}

	wst, err := hasettings.Decode(got)
	if err != nil {
		t.Fatal(err)
	}
	if wst.LeftAmplification != 0.1 || !wst.RightConversationBoost {
		t.Errorf("written settings: %s", wst.String())
	}
}

func TestSettingsAdjust(t *testing.T) {
	x, s := openSim(t)
	defer s.Close()

	c := xact.NewSettingsAdjustCmd()
	c.Fn = func(a hasettings.Adjustment) hasettings.Adjustment {
		a.Amplification = 0.4
		a.Balance = 0.25
		a.ConversationBoost = true
		return a
	}

	if _, err := c.Run(s); err != nil {
		t.Fatalf("Run: %v", err)
	}

	st, err := hasettings.Decode(x.Value(hHearingAid))
	if err != nil {
		t.Fatal(err)
	}
	left, right := hasettings.Decompose(0.4, 0.25)
	if !near(st.LeftAmplification, left) || !near(st.RightAmplification, right) {
		t.Errorf("amplification: got %f/%f want %f/%f",
			st.LeftAmplification, st.RightAmplification, left, right)
	}
	if !st.LeftConversationBoost || !st.RightConversationBoost {
		t.Errorf("boost not applied to both ears")
	}

	// Out-of-range controls are refused unless forced.
	c.Fn = func(a hasettings.Adjustment) hasettings.Adjustment {
		a.Tone = 3
		return a
	}
	before := x.Value(hHearingAid)
	if _, err := c.Run(s); err == nil {
		t.Errorf("Run(out of range): no error")
	}
	if !bytes.Equal(x.Value(hHearingAid), before) {
		t.Errorf("out-of-range adjustment was written")
	}

	c.Force = true
	if _, err := c.Run(s); err != nil {
		t.Errorf("Run(forced): %v", err)
	}
}

func TestSettingsReset(t *testing.T) {
	x, s := openSim(t)
	defer s.Close()

	rec := x.Value(hHearingAid)
	st, _ := hasettings.Decode(rec)
	st.LeftEQ[0] = 30
	st.RightEQ[7] = 45
	st.LeftTone = 0.9
	st.LeftAmplification = 0.8
	rec, _ = hasettings.EncodeForWrite(rec, st)
	x.SetValue(hHearingAid, rec)

	if _, err := xact.NewSettingsResetCmd().Run(s); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, _ := hasettings.Decode(x.Value(hHearingAid))
	if got.LeftEQ[0] != 30 || got.RightEQ[7] != 45 {
		t.Errorf("reset changed the EQ: %v %v", got.LeftEQ, got.RightEQ)
	}
	if got.LeftAmplification != 0 || got.RightAmplification != 0 ||
		got.LeftTone != 0 || got.LeftAmbientNoiseReduction != 0.5 ||
		got.LeftConversationBoost || got.OwnVoiceAmplification != 0.5 {

		t.Errorf("reset settings: %s", got.String())
	}
}

func TestTransparency(t *testing.T) {
	x, s := openSim(t)
	defer s.Close()

	res, err := xact.NewTransparencyReadCmd().Run(s)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	tp := res.(*xact.TransparencyReadResult).Transparency
	if tp.Enabled || !tp.HasOwnVoice {
		t.Errorf("default transparency: %+v", tp)
	}

	tp.Enabled = true
	tp.HasOwnVoice = false
	wc := xact.NewTransparencyWriteCmd()
	wc.Transparency = tp
	if _, err := wc.Run(s); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw := x.Value(bledefs.ATT_HANDLE_TRANSPARENCY.Value())
	if len(raw) != hasettings.TP_RECORD_MIN_SZ {
		t.Errorf("written length: got %d", len(raw))
	}
	got, err := hasettings.DecodeTransparency(raw)
	if err != nil || !got.Enabled {
		t.Errorf("written transparency: %+v, %v", got, err)
	}
}

func TestToggle(t *testing.T) {
	_, s := openSim(t)
	defer s.Close()

	res, err := xact.NewToggleReadCmd().Run(s)
	if err != nil || res.(*xact.ToggleResult).On {
		t.Fatalf("read: got %+v, %v", res, err)
	}

	wc := xact.NewToggleWriteCmd()
	wc.On = true
	if _, err := wc.Run(s); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err = xact.NewToggleReadCmd().Run(s)
	if err != nil || !res.(*xact.ToggleResult).On {
		t.Errorf("read after write: got %+v, %v", res, err)
	}
}

func TestAbort(t *testing.T) {
	_, s := openSim(t)
	defer s.Close()

	c := xact.NewSettingsReadCmd()
	c.Abort()
	if _, err := c.Run(s); !haxutil.IsSesnClosed(err) {
		t.Errorf("Run(aborted): got %v want SesnClosedError", err)
	}
}

func TestSettingsWatcher(t *testing.T) {
	x, s := openSim(t)
	defer s.Close()

	ch := make(chan hasettings.Settings, 4)
	w := xact.NewSettingsWatcher(s, func(st hasettings.Settings, err error) {
		if err == nil {
			ch <- st
		}
	})
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !x.Subscribed(hHearingAid) {
		t.Errorf("device not subscribed")
	}

	// A write by another client triggers a notification.
	c := xact.NewSettingsAdjustCmd()
	c.Fn = func(a hasettings.Adjustment) hasettings.Adjustment {
		a.Amplification = 0.3
		return a
	}
	if _, err := c.Run(s); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	select {
	case st := <-ch:
		if !near(st.NetAmplification, 0.3) {
			t.Errorf("notified settings: %s", st.String())
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no notification")
	}

	w.Stop()
	x.Notify(hHearingAid, x.Value(hHearingAid))
	select {
	case st := <-ch:
		t.Errorf("notification after Stop: %s", st.String())
	case <-time.After(50 * time.Millisecond):
	}
}
