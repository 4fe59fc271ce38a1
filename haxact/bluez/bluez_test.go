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

package bluez

import (
	"testing"

	"librepods.dev/hamgr/haxact/bledefs"
)

func TestFindPeer(t *testing.T) {
	peers := []*PeerInfo{
		{Address: "00:11:22:33:44:55", Paired: true},
		{Address: "AA:BB:CC:DD:EE:FF", Paired: true, Connected: true},
	}

	addr, err := bledefs.ParseBleAddr("aa:bb:cc:dd:ee:ff")
	if err != nil {
		t.Fatal(err)
	}

	p := findPeer(peers, addr)
	if p == nil || p != peers[1] {
		t.Fatalf("findPeer: got %+v", p)
	}
	if !p.Usable() || p.Problem() != "" {
		t.Errorf("connected peer not usable: %s", p.Problem())
	}

	addr, _ = bledefs.ParseBleAddr("01:02:03:04:05:06")
	if findPeer(peers, addr) != nil {
		t.Errorf("findPeer: matched unknown address")
	}
}

func TestPeerProblem(t *testing.T) {
	cases := []struct {
		p      PeerInfo
		usable bool
	}{
		{PeerInfo{Address: "x", Paired: false, Connected: true}, false},
		{PeerInfo{Address: "x", Paired: true, Connected: false}, false},
		{PeerInfo{Address: "x", Paired: true, Connected: true}, true},
	}

	for i, tt := range cases {
		if tt.p.Usable() != tt.usable {
			t.Errorf("case %d: Usable() = %t", i, tt.p.Usable())
		}
		if (tt.p.Problem() == "") != tt.usable {
			t.Errorf("case %d: Problem() = %q", i, tt.p.Problem())
		}
	}
}
