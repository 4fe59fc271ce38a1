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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"mynewt.apache.org/newt/util"

	"librepods.dev/hamgr/hamgr/hautil"
)

type ConnProfileMgr struct {
	filename string
	profiles map[string]*ConnProfile
}

type ConnType int

type ConnProfile struct {
	Name       string   `json:"MyName"`
	Type       ConnType `json:"MyType"`
	ConnString string   `json:"MyConnString"`
}

func (p *ConnProfile) String() string {
	return fmt.Sprintf("name=%s type=%s connstring=%s",
		p.Name, ConnTypeToString(p.Type), p.ConnString)
}

const (
	CONN_TYPE_NONE ConnType = iota
	CONN_TYPE_L2CAP
	CONN_TYPE_SIM
)

var connTypeNameMap = map[ConnType]string{
	CONN_TYPE_L2CAP: "l2cap",
	CONN_TYPE_SIM:   "sim",
	CONN_TYPE_NONE:  "???",
}

func ConnTypeToString(ct ConnType) string {
	return connTypeNameMap[ct]
}

func ConnTypeFromString(s string) (ConnType, error) {
	for k, v := range connTypeNameMap {
		if k != CONN_TYPE_NONE && s == v {
			return k, nil
		}
	}

	return CONN_TYPE_NONE, util.FmtNewtError("Invalid connection type: %s", s)
}

func (ct ConnType) MarshalJSON() ([]byte, error) {
	return json.Marshal(ConnTypeToString(ct))
}

func (ct *ConnType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	var err error
	*ct, err = ConnTypeFromString(s)
	if err != nil {
		*ct = CONN_TYPE_NONE
	}
	return nil
}

func NewConnProfile() *ConnProfile {
	return &ConnProfile{}
}

// Checks that the profile's connstring parses for its type.
func (p *ConnProfile) Validate() error {
	switch p.Type {
	case CONN_TYPE_L2CAP:
		_, err := ParseL2capConnString(p.ConnString)
		return err

	case CONN_TYPE_SIM:
		_, err := ParseSimConnString(p.ConnString)
		return err

	default:
		return util.NewNewtError("Must specify a connection type")
	}
}

func connProfileCfgFilename() (string, error) {
	return hautil.HomePath(hautil.ToolInfo.CfgFilename)
}

func NewConnProfileMgr() (*ConnProfileMgr, error) {
	filename, err := connProfileCfgFilename()
	if err != nil {
		return nil, err
	}

	return newConnProfileMgrFile(filename)
}

func newConnProfileMgrFile(filename string) (*ConnProfileMgr, error) {
	cpm := &ConnProfileMgr{
		filename: filename,
		profiles: map[string]*ConnProfile{},
	}

	if err := cpm.Init(); err != nil {
		return nil, err
	}

	return cpm, nil
}

func (cpm *ConnProfileMgr) Init() error {
	log.Debugf("Reading connection profiles from %s", cpm.filename)
	blob, err := ioutil.ReadFile(cpm.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return util.ChildNewtError(err)
	}

	var profiles []*ConnProfile
	if err := json.Unmarshal(blob, &profiles); err != nil {
		return util.FmtNewtError("error reading connection profile "+
			"config (%s): %s", cpm.filename, err.Error())
	}

	for _, p := range profiles {
		cpm.profiles[p.Name] = p
	}

	return nil
}

func (cpm *ConnProfileMgr) GetConnProfileList() ([]*ConnProfile, error) {
	cpList := make([]*ConnProfile, 0, len(cpm.profiles))
	for _, p := range cpm.profiles {
		cpList = append(cpList, p)
	}

	sort.Slice(cpList, func(i, j int) bool {
		return cpList[i].Name < cpList[j].Name
	})
	return cpList, nil
}

func (cpm *ConnProfileMgr) save() error {
	list, _ := cpm.GetConnProfileList()
	b, err := json.MarshalIndent(list, "", "    ")
	if err != nil {
		return util.NewNewtError(err.Error())
	}

	if err := ioutil.WriteFile(cpm.filename, b, 0644); err != nil {
		return util.ChildNewtError(err)
	}

	return nil
}

func (cpm *ConnProfileMgr) DeleteConnProfile(name string) error {
	if cpm.profiles[name] == nil {
		return util.FmtNewtError("connection profile \"%s\" doesn't exist",
			name)
	}

	delete(cpm.profiles, name)
	return cpm.save()
}

func (cpm *ConnProfileMgr) AddConnProfile(cp *ConnProfile) error {
	if err := cp.Validate(); err != nil {
		return err
	}

	cpm.profiles[cp.Name] = cp
	return cpm.save()
}

func (cpm *ConnProfileMgr) GetConnProfile(pName string) (*ConnProfile, error) {
	p := cpm.profiles[pName]
	if p == nil {
		return nil, util.FmtNewtError("connection profile \"%s\" doesn't "+
			"exist", pName)
	}

	return p, nil
}

// Determines the profile a command connects with.  An explicit connection
// type builds an unnamed profile from the connstring; otherwise the named
// profile is used, with its connstring optionally overridden.
func (cpm *ConnProfileMgr) ResolveConnProfile(name string, connType string,
	connString string) (*ConnProfile, error) {

	if connType != "" {
		ct, err := ConnTypeFromString(connType)
		if err != nil {
			return nil, err
		}

		cp := &ConnProfile{
			Type:       ct,
			ConnString: connString,
		}
		if err := cp.Validate(); err != nil {
			return nil, err
		}
		return cp, nil
	}

	if name == "" {
		return nil, util.NewNewtError("No connection profile specified; " +
			"use -c <profile> or --conntype")
	}

	cp, err := cpm.GetConnProfile(name)
	if err != nil {
		return nil, err
	}

	if connString != "" {
		ovr := *cp
		ovr.ConnString = connString
		if err := ovr.Validate(); err != nil {
			return nil, err
		}
		return &ovr, nil
	}

	return cp, nil
}

var globalConnProfileMgr *ConnProfileMgr

func GlobalConnProfileMgr() *ConnProfileMgr {
	if globalConnProfileMgr == nil {
		panic("connection profile manager not initialized")
	}
	return globalConnProfileMgr
}

func InitGlobalConnProfileMgr() error {
	if globalConnProfileMgr != nil {
		return util.NewNewtError("connection profile manager initialized twice")
	}

	var err error
	globalConnProfileMgr, err = NewConnProfileMgr()
	if err != nil {
		return err
	}

	return nil
}
