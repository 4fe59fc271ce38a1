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

package preset

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"librepods.dev/hamgr/haxact/hasettings"
)

func tmpStore(t *testing.T) (*Store, func()) {
	dir, err := ioutil.TempDir("", "hamgr-preset")
	if err != nil {
		t.Fatal(err)
	}

	return NewStore(filepath.Join(dir, "presets")), func() { os.RemoveAll(dir) }
}

func samplePreset(name string) Preset {
	st := hasettings.Settings{
		LeftAmplification:     0.25,
		RightAmplification:    0.5,
		LeftConversationBoost: true,
		OwnVoiceAmplification: 0.5,
	}
	st.LeftEQ[2] = 20
	st.NetAmplification = hasettings.NetAmplification(0.25, 0.5)
	st.Balance = hasettings.Balance(0.25, 0.5)

	rec := make([]byte, hasettings.HA_RECORD_MIN_SZ)
	rec[2] = hasettings.WRITE_MODE_BYTE

	return NewPreset(name, st, rec)
}

func TestSaveLoad(t *testing.T) {
	st, cleanup := tmpStore(t)
	defer cleanup()

	p := samplePreset("quiet-room")
	if err := st.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load("quiet-room")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Name != p.Name || got.Created != p.Created {
		t.Errorf("Load: got %+v", got)
	}
	if got.Settings != p.Settings {
		t.Errorf("Load settings: got %s want %s",
			got.Settings.String(), p.Settings.String())
	}
	if !bytes.Equal(got.Record, p.Record) {
		t.Errorf("Load record mismatch")
	}
}

func TestLoadCorrupt(t *testing.T) {
	st, cleanup := tmpStore(t)
	defer cleanup()

	if err := st.Save(samplePreset("a")); err != nil {
		t.Fatal(err)
	}

	path := st.path("a")
	b, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Alter a byte of the stored record: a 104-byte CBOR byte string.
	i := bytes.Index(b, []byte{0x58, 0x68, 0x00, 0x00, hasettings.WRITE_MODE_BYTE})
	if i < 0 {
		t.Fatalf("record not found in preset file")
	}
	b[i+4] = 0x65
	if err := ioutil.WriteFile(path, b, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Load("a"); err == nil {
		t.Errorf("Load(corrupt): no error")
	}
}

func TestListDelete(t *testing.T) {
	st, cleanup := tmpStore(t)
	defer cleanup()

	names, err := st.List()
	if err != nil || len(names) != 0 {
		t.Fatalf("List(empty): got %v, %v", names, err)
	}

	for _, n := range []string{"b", "a", "c_2"} {
		if err := st.Save(samplePreset(n)); err != nil {
			t.Fatal(err)
		}
	}
	ioutil.WriteFile(filepath.Join(st.Dir(), "notes.txt"), []byte("x"), 0644)

	names, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c_2"}
	if len(names) != len(want) {
		t.Fatalf("List: got %v want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List: got %v want %v", names, want)
			break
		}
	}

	if err := st.Delete("b"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := st.Delete("b"); err == nil {
		t.Errorf("Delete(missing): no error")
	}
	if _, err := st.Load("b"); err == nil {
		t.Errorf("Load(deleted): no error")
	}
}

func TestValidateName(t *testing.T) {
	for _, n := range []string{"ok", "Ok-2", "a_b"} {
		if err := ValidateName(n); err != nil {
			t.Errorf("ValidateName(%q): %v", n, err)
		}
	}
	for _, n := range []string{"", "../x", "a b", "a/b", "x.cbor"} {
		if err := ValidateName(n); err == nil {
			t.Errorf("ValidateName(%q): no error", n)
		}
	}
}
