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

// Package preset persists named hearing-aid settings.  Each preset is stored
// in its own CBOR file, protected by a CRC16 over its contents.
package preset

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joaojeronimo/go-crc16"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"

	"librepods.dev/hamgr/haxact/hasettings"
)

const PRESET_FILE_EXT = ".cbor"

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Preset struct {
	Name    string `codec:"name"`
	Created int64  `codec:"created"`

	Settings hasettings.Settings `codec:"settings"`

	// The device record the settings were captured from.  Informational;
	// applying a preset merges Settings into the device's current record.
	Record []byte `codec:"record"`

	Crc uint16 `codec:"crc"`
}

func NewPreset(name string, st hasettings.Settings, record []byte) Preset {
	return Preset{
		Name:     name,
		Created:  time.Now().Unix(),
		Settings: st,
		Record:   record,
	}
}

func (p *Preset) CreatedTime() time.Time {
	return time.Unix(p.Created, 0)
}

func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("invalid preset name \"%s\"; "+
			"use letters, digits, '-' and '_'", name)
	}
	return nil
}

func encodeCbor(v interface{}) ([]byte, error) {
	var b []byte
	enc := codec.NewEncoderBytes(&b, new(codec.CborHandle))
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b, nil
}

// Computes the checksum stored with a preset.  It covers everything except
// the checksum itself.
func (p *Preset) checksum() (uint16, error) {
	cp := *p
	cp.Crc = 0

	b, err := encodeCbor(&cp)
	if err != nil {
		return 0, err
	}

	return crc16.Crc16(b), nil
}

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{
		dir: dir,
	}
}

func (st *Store) Dir() string {
	return st.dir
}

func (st *Store) path(name string) string {
	return filepath.Join(st.dir, name+PRESET_FILE_EXT)
}

func (st *Store) Save(p Preset) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}

	crc, err := p.checksum()
	if err != nil {
		return errors.Wrap(err, "failed to encode preset")
	}
	p.Crc = crc

	b, err := encodeCbor(&p)
	if err != nil {
		return errors.Wrap(err, "failed to encode preset")
	}

	if err := os.MkdirAll(st.dir, 0755); err != nil {
		return errors.Wrapf(err, "can't create preset directory %s", st.dir)
	}

	path := st.path(p.Name)
	if err := ioutil.WriteFile(path, b, 0644); err != nil {
		return errors.Wrapf(err, "can't write preset file %s", path)
	}

	log.Debugf("saved preset %s to %s (crc=0x%04x)", p.Name, path, p.Crc)
	return nil
}

func (st *Store) Load(name string) (Preset, error) {
	if err := ValidateName(name); err != nil {
		return Preset{}, err
	}

	path := st.path(name)
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return Preset{}, errors.Wrapf(err, "can't read preset %s", name)
	}

	var p Preset
	dec := codec.NewDecoderBytes(b, new(codec.CborHandle))
	if err := dec.Decode(&p); err != nil {
		return Preset{}, errors.Wrapf(err, "preset file %s is corrupt", path)
	}

	crc, err := p.checksum()
	if err != nil {
		return Preset{}, err
	}
	if crc != p.Crc {
		return Preset{}, fmt.Errorf(
			"preset file %s failed checksum: have 0x%04x, computed 0x%04x",
			path, p.Crc, crc)
	}

	return p, nil
}

// Lists the names of all stored presets in lexical order.  A missing store
// directory holds no presets.
func (st *Store) List() ([]string, error) {
	infos, err := ioutil.ReadDir(st.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "can't read preset directory %s", st.dir)
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}

		name := info.Name()
		if !strings.HasSuffix(name, PRESET_FILE_EXT) {
			continue
		}

		name = strings.TrimSuffix(name, PRESET_FILE_EXT)
		if ValidateName(name) == nil {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}

func (st *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if err := os.Remove(st.path(name)); err != nil {
		return errors.Wrapf(err, "can't delete preset %s", name)
	}

	return nil
}
