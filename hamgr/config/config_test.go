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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/sesn"
)

func TestParseL2capConnString(t *testing.T) {
	lc, err := ParseL2capConnString("peer_addr=AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("ParseL2capConnString: %v", err)
	}
	if lc.PeerAddr.String() != "aa:bb:cc:dd:ee:ff" ||
		lc.PeerAddrType != bledefs.BLE_ADDR_TYPE_BREDR ||
		lc.Psm != bledefs.PSM_ATT || lc.SrcAddr != nil {

		t.Errorf("defaults: got %+v", lc)
	}

	lc, err = ParseL2capConnString(
		"peer_addr=aa-bb-cc-dd-ee-ff,addr_type=le_public,psm=31," +
			"src_addr=00:11:22:33:44:55")
	if err != nil {
		t.Fatalf("ParseL2capConnString: %v", err)
	}
	if lc.PeerAddrType != bledefs.BLE_ADDR_TYPE_LE_PUBLIC || lc.Psm != 31 {
		t.Errorf("got %+v", lc)
	}
	if lc.SrcAddr == nil || lc.SrcAddr.String() != "00:11:22:33:44:55" {
		t.Errorf("src_addr: got %v", lc.SrcAddr)
	}

	sc := sesn.NewSesnCfg()
	FillSesnCfg(lc, &sc)
	if sc.PeerSpec.Ble.Addr != lc.PeerAddr || sc.Att.Psm != 31 {
		t.Errorf("FillSesnCfg: got %+v", sc)
	}
}

func TestParseL2capConnStringInvalid(t *testing.T) {
	cases := []string{
		"",
		"psm=31",
		"peer_addr=AA:BB:CC:DD:EE",
		"peer_addr=AA:BB:CC:DD:EE:FF,psm=0",
		"peer_addr=AA:BB:CC:DD:EE:FF,psm=abc",
		"peer_addr=AA:BB:CC:DD:EE:FF,addr_type=classic",
		"peer_addr=AA:BB:CC:DD:EE:FF,bogus=1",
		"peer_addr",
	}

	for _, cs := range cases {
		if _, err := ParseL2capConnString(cs); err == nil {
			t.Errorf("ParseL2capConnString(%q): expected error", cs)
		}
	}
}

func TestParseSimConnString(t *testing.T) {
	sc, err := ParseSimConnString("")
	if err != nil || sc.LoudSoundReduction || sc.RspDelay != 0 {
		t.Errorf("empty: got %+v, %v", sc, err)
	}

	sc, err = ParseSimConnString("lsr=true,rsp_delay=20")
	if err != nil {
		t.Fatalf("ParseSimConnString: %v", err)
	}
	if !sc.LoudSoundReduction || sc.RspDelay != 20*time.Millisecond {
		t.Errorf("got %+v", sc)
	}

	sx := BuildSimXport(sc)
	v := sx.Value(bledefs.ATT_HANDLE_LOUD_SOUND_REDUCTION.Value())
	if len(v) != 1 || v[0] != 1 {
		t.Errorf("BuildSimXport: lsr value %x", v)
	}

	for _, cs := range []string{"lsr=maybe", "rsp_delay=-1", "x=1", "lsr"} {
		if _, err := ParseSimConnString(cs); err == nil {
			t.Errorf("ParseSimConnString(%q): expected error", cs)
		}
	}
}

func TestConnProfileMgr(t *testing.T) {
	dir, err := ioutil.TempDir("", "hamgr-cp")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, "cp.json")
	cpm, err := newConnProfileMgrFile(filename)
	if err != nil {
		t.Fatalf("newConnProfileMgrFile: %v", err)
	}

	bad := &ConnProfile{Name: "bad", Type: CONN_TYPE_L2CAP}
	if err := cpm.AddConnProfile(bad); err == nil {
		t.Errorf("AddConnProfile: l2cap profile without peer_addr accepted")
	}

	profiles := []*ConnProfile{
		{Name: "pods", Type: CONN_TYPE_L2CAP,
			ConnString: "peer_addr=AA:BB:CC:DD:EE:FF"},
		{Name: "dev", Type: CONN_TYPE_SIM},
	}
	for _, p := range profiles {
		if err := cpm.AddConnProfile(p); err != nil {
			t.Fatalf("AddConnProfile(%s): %v", p.Name, err)
		}
	}

	// Reload from disk.
	cpm, err = newConnProfileMgrFile(filename)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	list, _ := cpm.GetConnProfileList()
	if len(list) != 2 || list[0].Name != "dev" || list[1].Name != "pods" {
		t.Fatalf("GetConnProfileList: got %v", list)
	}
	if list[1].Type != CONN_TYPE_L2CAP || list[0].Type != CONN_TYPE_SIM {
		t.Errorf("types not preserved: %v", list)
	}

	cp, err := cpm.ResolveConnProfile("pods", "",
		"peer_addr=11:22:33:44:55:66")
	if err != nil {
		t.Fatalf("ResolveConnProfile: %v", err)
	}
	if cp.ConnString != "peer_addr=11:22:33:44:55:66" {
		t.Errorf("connstring override: got %s", cp.ConnString)
	}
	orig, _ := cpm.GetConnProfile("pods")
	if orig.ConnString != "peer_addr=AA:BB:CC:DD:EE:FF" {
		t.Errorf("override modified stored profile: %s", orig.ConnString)
	}

	cp, err = cpm.ResolveConnProfile("", "sim", "")
	if err != nil || cp.Type != CONN_TYPE_SIM {
		t.Errorf("ResolveConnProfile(conntype): got %v, %v", cp, err)
	}

	if _, err := cpm.ResolveConnProfile("", "", ""); err == nil {
		t.Errorf("ResolveConnProfile: expected error with no profile")
	}
	if _, err := cpm.ResolveConnProfile("", "serial", ""); err == nil {
		t.Errorf("ResolveConnProfile: expected error for unknown type")
	}

	if err := cpm.DeleteConnProfile("dev"); err != nil {
		t.Errorf("DeleteConnProfile: %v", err)
	}
	if err := cpm.DeleteConnProfile("dev"); err == nil {
		t.Errorf("DeleteConnProfile: deleted twice")
	}
}
