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

	"librepods.dev/hamgr/hamgr/hautil"
	"librepods.dev/hamgr/haxact/hasettings"
	"librepods.dev/hamgr/haxact/sesn"
	"librepods.dev/hamgr/haxact/xact"
)

var transparencyJson bool

func readTransparency(s sesn.Sesn) (hasettings.Transparency, error) {
	c := xact.NewTransparencyReadCmd()
	c.SetTxOptions(hautil.TxOptions())

	res, err := c.Run(s)
	if err != nil {
		return hasettings.Transparency{}, util.ChildNewtError(err)
	}

	return res.(*xact.TransparencyReadResult).Transparency, nil
}

func showTransparency(w io.Writer, s sesn.Sesn, asJson bool) error {
	t, err := readTransparency(s)
	if err != nil {
		return err
	}

	if asJson {
		return printJson(w, &t)
	}

	fmt.Fprintf(w, "Transparency: enabled=%t\n", t.Enabled)
	if !t.HasOwnVoice {
		fmt.Fprintf(w, "    (record has no own voice field)\n")
	}
	printFields(w, "    ", t.Settings)
	return nil
}

// The device expects a whole record, so the current one is read and written
// back with only the enabled flag changed.
func setTransparency(w io.Writer, s sesn.Sesn, enabled bool) error {
	t, err := readTransparency(s)
	if err != nil {
		return err
	}

	t.Enabled = enabled

	c := xact.NewTransparencyWriteCmd()
	c.SetTxOptions(hautil.TxOptions())
	c.Transparency = t

	if _, err := c.Run(s); err != nil {
		return util.ChildNewtError(err)
	}

	fmt.Fprintf(w, "Transparency: enabled=%t\n", enabled)
	return nil
}

func transparencyShowCmd(cmd *cobra.Command, args []string) {
	s, err := GetSesn()
	if err != nil {
		haUsage(nil, err)
	}

	if err := showTransparency(os.Stdout, s, transparencyJson); err != nil {
		haUsage(nil, err)
	}
}

func transparencySetCmd(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		haUsage(cmd, util.NewNewtError("Need on or off"))
	}

	on, err := parseOnOff("transparency", args[0])
	if err != nil {
		haUsage(cmd, err)
	}

	s, err := GetSesn()
	if err != nil {
		haUsage(nil, err)
	}

	if err := setTransparency(os.Stdout, s, on); err != nil {
		haUsage(nil, err)
	}
}

func transparencyCmd() *cobra.Command {
	tpCmd := &cobra.Command{
		Use:   "transparency",
		Short: "Read or change the transparency mode record",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display the transparency mode settings",
		Run:   transparencyShowCmd,
	}
	showCmd.Flags().BoolVar(&transparencyJson, "json", false,
		"Print settings as JSON")
	tpCmd.AddCommand(showCmd)

	setCmd := &cobra.Command{
		Use:   "set <on|off>",
		Short: "Enable or disable transparency customization",
		Run:   transparencySetCmd,
	}
	tpCmd.AddCommand(setCmd)

	return tpCmd
}
