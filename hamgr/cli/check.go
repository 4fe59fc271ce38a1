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
	"io"
	"os"

	"github.com/spf13/cobra"
	"mynewt.apache.org/newt/util"

	"librepods.dev/hamgr/hamgr/config"
	"librepods.dev/hamgr/haxact/bledefs"
	"librepods.dev/hamgr/haxact/bluez"
)

// Determines which device to check: the argument if given, otherwise the
// peer of the selected l2cap profile.
func checkTarget(args []string) (bledefs.BleAddr, error) {
	if len(args) > 0 {
		addr, err := bledefs.ParseBleAddr(args[0])
		if err != nil {
			return addr, util.ChildNewtError(err)
		}
		return addr, nil
	}

	cp, err := getConnProfile()
	if err != nil {
		return bledefs.BleAddr{}, err
	}

	if cp.Type != config.CONN_TYPE_L2CAP {
		return bledefs.BleAddr{}, util.FmtNewtError(
			"Connection type %s has no Bluetooth peer to check",
			config.ConnTypeToString(cp.Type))
	}

	lc, err := config.ParseL2capConnString(cp.ConnString)
	if err != nil {
		return bledefs.BleAddr{}, err
	}

	return lc.PeerAddr, nil
}

func printPeerInfo(w io.Writer, pi *bluez.PeerInfo) {
	fmt.Fprintf(w, "Device %s:\n", pi.Address)
	printFields(w, "    ", *pi)
}

func checkRunCmd(cmd *cobra.Command, args []string) {
	addr, err := checkTarget(args)
	if err != nil {
		haUsage(cmd, err)
	}

	pi, err := bluez.CheckPeer(addr)
	if err != nil {
		haUsage(nil, util.ChildNewtError(err))
	}

	printPeerInfo(os.Stdout, pi)
	if !pi.Usable() {
		haUsage(nil, util.NewNewtError(pi.Problem()))
	}

	fmt.Printf("Ready to connect\n")
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [peer_addr]",
		Short: "Ask BlueZ whether the device is paired and connected",
		Run:   checkRunCmd,
	}
}
