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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"mynewt.apache.org/newt/util"

	"librepods.dev/hamgr/hamgr/hautil"
	"librepods.dev/hamgr/haxact/haxutil"
	"librepods.dev/hamgr/haxact/sesn"
)

var HamgrLogLevel log.Level

func Commands() *cobra.Command {
	logLevelStr := ""
	haCmd := &cobra.Command{
		Use:   hautil.ToolInfo.ExeName,
		Short: hautil.ToolInfo.ShortName + " adjusts hearing aid settings on AirPods",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			HamgrLogLevel, err = log.ParseLevel(logLevelStr)
			if err != nil {
				haUsage(nil, util.ChildNewtError(err))
			}

			err = util.Init(HamgrLogLevel, "", util.VERBOSITY_DEFAULT)
			if err != nil {
				haUsage(nil, err)
			}
			haxutil.SetLogLevel(HamgrLogLevel)
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	dflt := sesn.NewTxOptions()

	haCmd.PersistentFlags().StringVarP(&hautil.ConnProfile, "conn", "c", "",
		"connection profile to use")

	haCmd.PersistentFlags().Float64VarP(&hautil.Timeout, "timeout", "t",
		dflt.Timeout.Seconds(),
		"response timeout in seconds (partial seconds allowed)")

	haCmd.PersistentFlags().IntVarP(&hautil.Tries, "tries", "r", dflt.Tries,
		"total number of tries in case of timeout")

	haCmd.PersistentFlags().StringVarP(&logLevelStr, "loglevel", "l", "info",
		"log level to use")

	haCmd.PersistentFlags().StringVar(&hautil.ConnType, "conntype", "",
		"Connection type to use instead of using the profile's type")

	haCmd.PersistentFlags().StringVar(&hautil.ConnString, "connstring", "",
		"Connection key-value pairs to use instead of using the profile's "+
			"connstring")

	haCmd.PersistentFlags().BoolVar(&hautil.Preflight, "preflight", false,
		"Check with BlueZ that the device is paired and connected before "+
			"connecting")

	versCmd := &cobra.Command{
		Use:     "version",
		Short:   "Display the " + hautil.ToolInfo.ShortName + " version number",
		Example: "  " + hautil.ToolInfo.ExeName + " version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n",
				hautil.ToolInfo.LongName,
				hautil.ToolInfo.VersionString)
		},
	}
	haCmd.AddCommand(versCmd)

	haCmd.AddCommand(connProfileCmd())
	haCmd.AddCommand(settingsCmd())
	haCmd.AddCommand(transparencyCmd())
	haCmd.AddCommand(lsrCmd())
	haCmd.AddCommand(watchCmd())
	haCmd.AddCommand(presetCmd())
	haCmd.AddCommand(checkCmd())
	haCmd.AddCommand(shellCmd())

	return haCmd
}
