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
	"strings"

	"github.com/spf13/cobra"
	"mynewt.apache.org/newt/util"

	"librepods.dev/hamgr/hamgr/config"
	"librepods.dev/hamgr/hamgr/hautil"
	"librepods.dev/hamgr/haxact/bledefs"
)

// Connstring keys accepted directly on the "conn add" command line.
var connStringKeys = map[config.ConnType][]string{
	config.CONN_TYPE_L2CAP: {"peer_addr", "addr_type", "psm", "src_addr"},
	config.CONN_TYPE_SIM:   {"lsr", "rsp_delay"},
}

func isConnStringKey(ct config.ConnType, key string) bool {
	for _, k := range connStringKeys[ct] {
		if k == key {
			return true
		}
	}
	return false
}

// Builds a profile from "conn add" arguments.  Connstring keys can be given
// either as a single connstring=... argument or individually, e.g.,
// "type=l2cap peer_addr=AA:BB:CC:DD:EE:FF psm=31".
func buildConnProfile(name string, vdefs []string) (*config.ConnProfile, error) {
	cp := config.NewConnProfile()
	cp.Name = name
	cp.Type = config.CONN_TYPE_NONE

	var pairs [][2]string
	for _, vdef := range vdefs {
		s := strings.SplitN(vdef, "=", 2)
		if len(s) != 2 {
			return nil, util.NewNewtError("Expected varname=value; got " + vdef)
		}

		switch s[0] {
		case "type":
			var err error
			cp.Type, err = config.ConnTypeFromString(s[1])
			if err != nil {
				return nil, err
			}
		case "connstring":
			cp.ConnString = s[1]
		default:
			pairs = append(pairs, [2]string{s[0], s[1]})
		}
	}

	if cp.Type == config.CONN_TYPE_NONE {
		return nil, util.NewNewtError("Must specify a connection type")
	}

	if len(pairs) > 0 {
		if cp.ConnString != "" {
			return nil, util.NewNewtError(
				"Specify connstring or individual keys, not both")
		}

		parts := make([]string, 0, len(pairs))
		for _, kv := range pairs {
			if !isConnStringKey(cp.Type, kv[0]) {
				return nil, util.FmtNewtError("Unknown variable %s for "+
					"connection type %s", kv[0], config.ConnTypeToString(cp.Type))
			}
			parts = append(parts, kv[0]+"="+kv[1])
		}
		cp.ConnString = strings.Join(parts, ",")
	}

	if err := cp.Validate(); err != nil {
		return nil, err
	}

	return cp, nil
}

// One-line summary of the peer a profile connects to.
func describeConnProfile(cp *config.ConnProfile) string {
	switch cp.Type {
	case config.CONN_TYPE_L2CAP:
		lc, err := config.ParseL2capConnString(cp.ConnString)
		if err != nil {
			return "invalid: " + err.Error()
		}
		desc := fmt.Sprintf("peer %s (%s), psm %d", lc.PeerAddr.String(),
			bledefs.BleAddrTypeToString(lc.PeerAddrType), lc.Psm)
		if lc.SrcAddr != nil {
			desc += ", via adapter " + lc.SrcAddr.String()
		}
		return desc

	case config.CONN_TYPE_SIM:
		sc, err := config.ParseSimConnString(cp.ConnString)
		if err != nil {
			return "invalid: " + err.Error()
		}
		return fmt.Sprintf("simulated device, lsr %s, response delay %s",
			onOffString(sc.LoudSoundReduction), sc.RspDelay.String())

	default:
		return "no connection type"
	}
}

func connProfileAddCmd(cmd *cobra.Command, args []string) {
	cpm := config.GlobalConnProfileMgr()

	if len(args) == 0 {
		haUsage(cmd, util.NewNewtError("Need connection profile name"))
	}

	cp, err := buildConnProfile(args[0], args[1:])
	if err != nil {
		haUsage(cmd, err)
	}

	if err := cpm.AddConnProfile(cp); err != nil {
		haUsage(cmd, err)
	}

	fmt.Printf("Connection profile %s successfully added: %s\n", cp.Name,
		describeConnProfile(cp))
}

func connProfileShowCmd(cmd *cobra.Command, args []string) {
	cpm := config.GlobalConnProfileMgr()

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	cpList, err := cpm.GetConnProfileList()
	if err != nil {
		haUsage(cmd, err)
	}

	found := false
	for _, cp := range cpList {
		if name != "" && cp.Name != name {
			continue
		}

		if !found {
			found = true
			fmt.Printf("Connection profiles: \n")
		}
		fmt.Printf("  %s: type=%s, connstring='%s'\n      %s\n",
			cp.Name, config.ConnTypeToString(cp.Type), cp.ConnString,
			describeConnProfile(cp))
	}

	if !found {
		if name == "" {
			fmt.Printf("No connection profiles found!\n")
		} else {
			fmt.Printf("No connection profiles found matching %s\n", name)
		}
	}
}

func connProfileDelCmd(cmd *cobra.Command, args []string) {
	cpm := config.GlobalConnProfileMgr()

	if len(args) == 0 {
		haUsage(cmd, util.NewNewtError("Need connection profile name"))
	}

	name := args[0]
	if err := cpm.DeleteConnProfile(name); err != nil {
		haUsage(cmd, err)
	}

	fmt.Printf("Connection profile %s successfully deleted.\n", name)
}

func connProfileCmd() *cobra.Command {
	cpCmd := &cobra.Command{
		Use:   "conn",
		Short: "Manage " + hautil.ToolInfo.ShortName + " connection profiles",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	addHelpText := "Add a connection profile.  Types:\n" +
		"  l2cap  connstring peer_addr=XX:XX:XX:XX:XX:XX" +
		"[,addr_type=bredr|le_public|le_random][,psm=N][,src_addr=...]\n" +
		"  sim    in-memory device; connstring [lsr=true][,rsp_delay=ms]\n" +
		"Connstring keys may also be given as separate arguments.\n"

	addCmd := &cobra.Command{
		Use:   "add <conn_profile> <varname=value ...> ",
		Short: "Add a " + hautil.ToolInfo.ShortName + " connection profile",
		Long:  addHelpText,
		Example: "  " + hautil.ToolInfo.ExeName +
			" conn add pods type=l2cap connstring=peer_addr=AA:BB:CC:DD:EE:FF\n" +
			"  " + hautil.ToolInfo.ExeName +
			" conn add pods type=l2cap peer_addr=AA:BB:CC:DD:EE:FF psm=31",
		Run: connProfileAddCmd,
	}
	cpCmd.AddCommand(addCmd)

	deleCmd := &cobra.Command{
		Use:   "delete <conn_profile>",
		Short: "Delete a " + hautil.ToolInfo.ShortName + " connection profile",
		Run:   connProfileDelCmd,
	}
	cpCmd.AddCommand(deleCmd)

	connShowHelpText := "Show information for the conn_profile connection "
	connShowHelpText += "profile or for all\nconnection profiles "
	connShowHelpText += "if conn_profile is not specified.\n"

	showCmd := &cobra.Command{
		Use:   "show [conn_profile]",
		Short: "Show " + hautil.ToolInfo.ShortName + " connection profiles",
		Long:  connShowHelpText,
		Run:   connProfileShowCmd,
	}
	cpCmd.AddCommand(showCmd)

	return cpCmd
}
