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
	"librepods.dev/hamgr/haxact/sesn"
	"librepods.dev/hamgr/haxact/xact"
)

func onOffString(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// Reads loud sound reduction, or sets it when val is non-empty.
func loudSoundReduction(w io.Writer, s sesn.Sesn, val string) error {
	if val == "" {
		c := xact.NewToggleReadCmd()
		c.SetTxOptions(hautil.TxOptions())

		res, err := c.Run(s)
		if err != nil {
			return util.ChildNewtError(err)
		}

		fmt.Fprintf(w, "Loud sound reduction: %s\n",
			onOffString(res.(*xact.ToggleResult).On))
		return nil
	}

	on, err := parseOnOff("lsr", val)
	if err != nil {
		return err
	}

	c := xact.NewToggleWriteCmd()
	c.SetTxOptions(hautil.TxOptions())
	c.On = on

	if _, err := c.Run(s); err != nil {
		return util.ChildNewtError(err)
	}

	fmt.Fprintf(w, "Loud sound reduction: %s\n", onOffString(on))
	return nil
}

func lsrRunCmd(cmd *cobra.Command, args []string) {
	if len(args) > 1 {
		haUsage(cmd, util.NewNewtError("Too many arguments"))
	}

	val := ""
	if len(args) == 1 {
		val = args[0]
		if _, err := parseOnOff("lsr", val); err != nil {
			haUsage(cmd, err)
		}
	}

	s, err := GetSesn()
	if err != nil {
		haUsage(nil, err)
	}

	if err := loudSoundReduction(os.Stdout, s, val); err != nil {
		haUsage(nil, err)
	}
}

func lsrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsr [on|off]",
		Short: "Read or set loud sound reduction",
		Run:   lsrRunCmd,
	}
}
