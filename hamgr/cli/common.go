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

package cli

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"mynewt.apache.org/newt/util"

	"librepods.dev/hamgr/hamgr/config"
	"librepods.dev/hamgr/hamgr/hautil"
	"librepods.dev/hamgr/haxact/bluez"
	"librepods.dev/hamgr/haxact/haxutil"
	"librepods.dev/hamgr/haxact/sesn"
	"librepods.dev/hamgr/haxact/xport"
)

const connRefusedMsg = "Connection refused. Try reconnecting your AirPods."

var globalSesn sesn.Sesn
var globalXport xport.Xport

// Tracks whether globalXport has been assigned; a typed nil would otherwise
// compare non-nil.
var globalXportSet bool

var onExit func()

func HaSetOnExit(cb func()) {
	onExit = cb
}

func HaExit(status int) {
	if onExit != nil {
		onExit()
	}
	os.Exit(status)
}

func haUsage(cmd *cobra.Command, err error) {
	if err != nil {
		if haxutil.IsConnRefused(err) {
			fmt.Fprintln(os.Stderr, connRefusedMsg)
			HaExit(1)
		}

		if ne, ok := err.(*util.NewtError); ok {
			if ne.Parent != nil && haxutil.IsConnRefused(ne.Parent) {
				fmt.Fprintln(os.Stderr, connRefusedMsg)
				HaExit(1)
			}
			log.Debugf("%s", ne.StackTrace)
			fmt.Fprintf(os.Stderr, "Error: %s\n", ne.Text)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		}
	}

	if cmd != nil {
		fmt.Printf("\n")
		fmt.Printf("%s - ", cmd.Name())
		cmd.Help()
	}

	HaExit(1)
}

func getConnProfile() (*config.ConnProfile, error) {
	return config.GlobalConnProfileMgr().ResolveConnProfile(
		hautil.ConnProfile, hautil.ConnType, hautil.ConnString)
}

func GetXport() (xport.Xport, error) {
	if globalXport != nil {
		return globalXport, nil
	}

	cp, err := getConnProfile()
	if err != nil {
		return nil, err
	}

	switch cp.Type {
	case config.CONN_TYPE_L2CAP:
		lc, err := config.ParseL2capConnString(cp.ConnString)
		if err != nil {
			return nil, err
		}
		globalXport = config.BuildL2capXport(lc)

	case config.CONN_TYPE_SIM:
		sc, err := config.ParseSimConnString(cp.ConnString)
		if err != nil {
			return nil, err
		}
		globalXport = config.BuildSimXport(sc)

	default:
		return nil, util.FmtNewtError("Unknown connection type: %s (%d)",
			config.ConnTypeToString(cp.Type), int(cp.Type))
	}

	globalXportSet = true

	if err := globalXport.Start(); err != nil {
		return nil, util.ChildNewtError(err)
	}

	return globalXport, nil
}

func GetXportIfOpen() (xport.Xport, error) {
	if !globalXportSet {
		return nil, fmt.Errorf("xport not initialized")
	}

	return globalXport, nil
}

func onSesnClose(s sesn.Sesn, err error) {
	log.Errorf("Lost connection to %s: %s",
		s.PeerSpec().Ble.Addr.Tail(), err.Error())
}

func buildSesnCfg(cp *config.ConnProfile) (sesn.SesnCfg, error) {
	sc := sesn.NewSesnCfg()
	sc.OnCloseCb = onSesnClose

	switch cp.Type {
	case config.CONN_TYPE_L2CAP:
		lc, err := config.ParseL2capConnString(cp.ConnString)
		if err != nil {
			return sc, err
		}
		config.FillSesnCfg(lc, &sc)

		if hautil.Preflight {
			if err := preflight(lc); err != nil {
				return sc, err
			}
		}

		return sc, nil

	case config.CONN_TYPE_SIM:
		return sc, nil

	default:
		return sc, util.FmtNewtError("Unknown connection type: %s (%d)",
			config.ConnTypeToString(cp.Type), int(cp.Type))
	}
}

// Asks BlueZ whether the peer is paired and connected before dialing.  A
// connection attempt to an unusable peer is refused with no explanation.
func preflight(lc *config.L2capConfig) error {
	pi, err := bluez.CheckPeer(lc.PeerAddr)
	if err != nil {
		return util.ChildNewtError(err)
	}

	if !pi.Usable() {
		return util.NewNewtError(pi.Problem())
	}

	log.Debugf("preflight: %s (%s) paired and connected", pi.Name, pi.Path)
	return nil
}

func GetSesn() (sesn.Sesn, error) {
	if globalSesn != nil {
		return globalSesn, nil
	}

	cp, err := getConnProfile()
	if err != nil {
		return nil, err
	}

	sc, err := buildSesnCfg(cp)
	if err != nil {
		return nil, err
	}

	x, err := GetXport()
	if err != nil {
		return nil, err
	}

	s, err := x.BuildSesn(sc)
	if err != nil {
		return nil, util.ChildNewtError(err)
	}

	globalSesn = s
	if err := globalSesn.Open(); err != nil {
		return nil, util.ChildNewtError(err)
	}

	return globalSesn, nil
}

func GetSesnIfOpen() (sesn.Sesn, error) {
	if globalSesn == nil {
		return nil, fmt.Errorf("sesn not initialized")
	}

	return globalSesn, nil
}
