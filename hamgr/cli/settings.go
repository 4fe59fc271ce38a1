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
	"strings"

	"github.com/fatih/structs"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/ugorji/go/codec"
	"mynewt.apache.org/newt/util"

	"librepods.dev/hamgr/hamgr/hautil"
	"librepods.dev/hamgr/haxact/hasettings"
	"librepods.dev/hamgr/haxact/sesn"
	"librepods.dev/hamgr/haxact/xact"
)

var settingsJson bool
var settingsForce bool

func fmtEq(eq [hasettings.NUM_EQ_BANDS]float32) string {
	parts := make([]string, len(eq))
	for i, v := range eq {
		parts[i] = fmt.Sprintf("%s:%.2f", hasettings.EqBandLabels[i], v)
	}
	return strings.Join(parts, " ")
}

// Prints each tagged field of a settings-like struct on its own line.
func printFields(w io.Writer, indent string, v interface{}) {
	for _, f := range structs.New(v).Fields() {
		name := f.Tag("structs")
		if name == "" {
			continue
		}

		switch fv := f.Value().(type) {
		case [hasettings.NUM_EQ_BANDS]float32:
			fmt.Fprintf(w, "%s%-30s %s\n", indent, name, fmtEq(fv))
		case float32:
			fmt.Fprintf(w, "%s%-30s %.3f\n", indent, name, fv)
		default:
			fmt.Fprintf(w, "%s%-30s %v\n", indent, name, fv)
		}
	}
}

func printJson(w io.Writer, v interface{}) error {
	h := &codec.JsonHandle{}
	h.Indent = 4

	if err := codec.NewEncoder(w, h).Encode(v); err != nil {
		return util.ChildNewtError(err)
	}
	fmt.Fprintf(w, "\n")
	return nil
}

func parseFloatArg(k string, v string) (float32, error) {
	f, err := cast.ToFloat32E(v)
	if err != nil {
		return 0, util.FmtNewtError("Invalid %s value: %s", k, v)
	}
	return f, nil
}

func parseOnOff(k string, v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}

	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, util.FmtNewtError("Invalid %s value: %s", k, v)
	}
	return b, nil
}

func parseEqArg(k string, v string) ([hasettings.NUM_EQ_BANDS]float32, error) {
	var eq [hasettings.NUM_EQ_BANDS]float32

	toks := strings.Split(v, ",")
	if len(toks) != hasettings.NUM_EQ_BANDS {
		return eq, util.FmtNewtError("%s needs %d comma-separated values; "+
			"have %d", k, hasettings.NUM_EQ_BANDS, len(toks))
	}

	for i, t := range toks {
		f, err := parseFloatArg(k, strings.TrimSpace(t))
		if err != nil {
			return eq, err
		}
		eq[i] = f
	}

	return eq, nil
}

// Converts key=value arguments into a function that applies them to the
// current controls.  All arguments are parsed before anything is sent.
func parseAdjustments(args []string) (xact.AdjustFn, error) {
	if len(args) == 0 {
		return nil, util.NewNewtError("Need at least one key=value pair")
	}

	var setters []func(a *hasettings.Adjustment)

	for _, arg := range args {
		kv := strings.SplitN(arg, "=", 2)
		if len(kv) != 2 {
			return nil, util.FmtNewtError("Expected key=value; got: %s", arg)
		}

		k := kv[0]
		v := kv[1]

		switch k {
		case "amp", "balance", "tone", "anr", "own_voice":
			f, err := parseFloatArg(k, v)
			if err != nil {
				return nil, err
			}

			switch k {
			case "amp":
				setters = append(setters,
					func(a *hasettings.Adjustment) { a.Amplification = f })
			case "balance":
				setters = append(setters,
					func(a *hasettings.Adjustment) { a.Balance = f })
			case "tone":
				setters = append(setters,
					func(a *hasettings.Adjustment) { a.Tone = f })
			case "anr":
				setters = append(setters,
					func(a *hasettings.Adjustment) { a.AmbientNoiseReduction = f })
			case "own_voice":
				setters = append(setters,
					func(a *hasettings.Adjustment) { a.OwnVoiceAmplification = f })
			}

		case "boost":
			on, err := parseOnOff(k, v)
			if err != nil {
				return nil, err
			}
			setters = append(setters,
				func(a *hasettings.Adjustment) { a.ConversationBoost = on })

		case "left_eq", "right_eq":
			eq, err := parseEqArg(k, v)
			if err != nil {
				return nil, err
			}
			if k == "left_eq" {
				setters = append(setters,
					func(a *hasettings.Adjustment) { a.LeftEQ = eq })
			} else {
				setters = append(setters,
					func(a *hasettings.Adjustment) { a.RightEQ = eq })
			}

		default:
			return nil, util.FmtNewtError("Unknown setting: %s", k)
		}
	}

	return func(a hasettings.Adjustment) hasettings.Adjustment {
		for _, set := range setters {
			set(&a)
		}
		return a
	}, nil
}

func showSettings(w io.Writer, s sesn.Sesn, asJson bool) error {
	c := xact.NewSettingsReadCmd()
	c.SetTxOptions(hautil.TxOptions())

	res, err := c.Run(s)
	if err != nil {
		return util.ChildNewtError(err)
	}

	sres := res.(*xact.SettingsReadResult)
	if asJson {
		return printJson(w, &sres.Settings)
	}

	fmt.Fprintf(w, "Hearing aid settings:\n")
	printFields(w, "    ", sres.Settings)
	return nil
}

func runAdjust(w io.Writer, s sesn.Sesn, c *xact.SettingsAdjustCmd) error {
	c.SetTxOptions(hautil.TxOptions())

	res, err := c.Run(s)
	if err != nil {
		return util.ChildNewtError(err)
	}

	ares := res.(*xact.SettingsAdjustResult)
	fmt.Fprintf(w, "Wrote hearing aid settings:\n")
	printFields(w, "    ", ares.Adjustment)
	return nil
}

func adjustSettings(w io.Writer, s sesn.Sesn, args []string, force bool) error {
	fn, err := parseAdjustments(args)
	if err != nil {
		return err
	}

	c := xact.NewSettingsAdjustCmd()
	c.Fn = fn
	c.Force = force
	return runAdjust(w, s, c)
}

func resetSettings(w io.Writer, s sesn.Sesn) error {
	return runAdjust(w, s, xact.NewSettingsResetCmd())
}

func settingsShowCmd(cmd *cobra.Command, args []string) {
	s, err := GetSesn()
	if err != nil {
		haUsage(nil, err)
	}

	if err := showSettings(os.Stdout, s, settingsJson); err != nil {
		haUsage(nil, err)
	}
}

func settingsSetCmd(cmd *cobra.Command, args []string) {
	// Reject bad arguments before connecting.
	if _, err := parseAdjustments(args); err != nil {
		haUsage(cmd, err)
	}

	s, err := GetSesn()
	if err != nil {
		haUsage(nil, err)
	}

	if err := adjustSettings(os.Stdout, s, args, settingsForce); err != nil {
		haUsage(nil, err)
	}
}

func settingsResetCmd(cmd *cobra.Command, args []string) {
	s, err := GetSesn()
	if err != nil {
		haUsage(nil, err)
	}

	if err := resetSettings(os.Stdout, s); err != nil {
		haUsage(nil, err)
	}
}

func settingsCmd() *cobra.Command {
	stCmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change hearing aid settings",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display the current hearing aid settings",
		Run:   settingsShowCmd,
	}
	showCmd.Flags().BoolVar(&settingsJson, "json", false,
		"Print settings as JSON")
	stCmd.AddCommand(showCmd)

	setHelpText := "Change one or more hearing aid controls.  Keys:\n" +
		"  amp, balance, tone       -1.0 to 1.0\n" +
		"  anr, own_voice           0.0 to 1.0\n" +
		"  boost                    on|off\n" +
		"  left_eq, right_eq        8 comma-separated band gains\n" +
		"Controls not named keep their current value."

	setCmd := &cobra.Command{
		Use:     "set <key=value> [key=value...]",
		Short:   "Change hearing aid settings",
		Long:    setHelpText,
		Example: "  " + hautil.ToolInfo.ExeName + " -c pods settings set amp=0.3 boost=on",
		Run:     settingsSetCmd,
	}
	setCmd.Flags().BoolVar(&settingsForce, "force", false,
		"Write values outside the normal control ranges")
	stCmd.AddCommand(setCmd)

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore default control positions; EQ is kept",
		Run:   settingsResetCmd,
	}
	stCmd.AddCommand(resetCmd)

	return stCmd
}
