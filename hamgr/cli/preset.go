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
	"librepods.dev/hamgr/haxact/preset"
	"librepods.dev/hamgr/haxact/sesn"
	"librepods.dev/hamgr/haxact/xact"
)

func presetStore() (*preset.Store, error) {
	dir, err := hautil.HomePath(hautil.ToolInfo.PresetDir)
	if err != nil {
		return nil, err
	}

	return preset.NewStore(dir), nil
}

func savePreset(w io.Writer, st *preset.Store, s sesn.Sesn, name string) error {
	if err := preset.ValidateName(name); err != nil {
		return util.ChildNewtError(err)
	}

	c := xact.NewSettingsReadCmd()
	c.SetTxOptions(hautil.TxOptions())

	res, err := c.Run(s)
	if err != nil {
		return util.ChildNewtError(err)
	}
	sres := res.(*xact.SettingsReadResult)

	p := preset.NewPreset(name, sres.Settings, sres.Raw)
	if err := st.Save(p); err != nil {
		return util.ChildNewtError(err)
	}

	fmt.Fprintf(w, "Saved preset %s\n", name)
	return nil
}

func applyPreset(w io.Writer, st *preset.Store, s sesn.Sesn, name string) error {
	p, err := st.Load(name)
	if err != nil {
		return util.ChildNewtError(err)
	}

	c := xact.NewSettingsWriteCmd()
	c.SetTxOptions(hautil.TxOptions())
	c.Settings = p.Settings

	if _, err := c.Run(s); err != nil {
		return util.ChildNewtError(err)
	}

	fmt.Fprintf(w, "Applied preset %s: %s\n", name, p.Settings.String())
	return nil
}

func listPresets(w io.Writer, st *preset.Store) error {
	names, err := st.List()
	if err != nil {
		return util.ChildNewtError(err)
	}

	if len(names) == 0 {
		fmt.Fprintf(w, "No presets in %s\n", st.Dir())
		return nil
	}

	fmt.Fprintf(w, "Presets:\n")
	for _, name := range names {
		p, err := st.Load(name)
		if err != nil {
			fmt.Fprintf(w, "    %-20s (unreadable: %s)\n", name, err.Error())
			continue
		}
		fmt.Fprintf(w, "    %-20s %s  %s\n", name,
			p.CreatedTime().Format("2006-01-02 15:04"), p.Settings.String())
	}

	return nil
}

func presetNameArg(cmd *cobra.Command, args []string) string {
	if len(args) != 1 {
		haUsage(cmd, util.NewNewtError("Need preset name"))
	}
	return args[0]
}

func mustPresetStore() *preset.Store {
	st, err := presetStore()
	if err != nil {
		haUsage(nil, err)
	}
	return st
}

func presetSaveCmd(cmd *cobra.Command, args []string) {
	name := presetNameArg(cmd, args)
	st := mustPresetStore()

	s, err := GetSesn()
	if err != nil {
		haUsage(nil, err)
	}

	if err := savePreset(os.Stdout, st, s, name); err != nil {
		haUsage(nil, err)
	}
}

func presetApplyCmd(cmd *cobra.Command, args []string) {
	name := presetNameArg(cmd, args)
	st := mustPresetStore()

	// Fail on a missing or corrupt preset before connecting.
	if _, err := st.Load(name); err != nil {
		haUsage(nil, util.ChildNewtError(err))
	}

	s, err := GetSesn()
	if err != nil {
		haUsage(nil, err)
	}

	if err := applyPreset(os.Stdout, st, s, name); err != nil {
		haUsage(nil, err)
	}
}

func presetListCmd(cmd *cobra.Command, args []string) {
	if err := listPresets(os.Stdout, mustPresetStore()); err != nil {
		haUsage(nil, err)
	}
}

func presetDeleteCmd(cmd *cobra.Command, args []string) {
	name := presetNameArg(cmd, args)

	if err := mustPresetStore().Delete(name); err != nil {
		haUsage(nil, util.ChildNewtError(err))
	}

	fmt.Printf("Preset %s deleted\n", name)
}

func presetCmd() *cobra.Command {
	psCmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved hearing aid settings",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	psCmd.AddCommand(&cobra.Command{
		Use:   "save <name>",
		Short: "Save the device's current settings as a preset",
		Run:   presetSaveCmd,
	})

	psCmd.AddCommand(&cobra.Command{
		Use:   "apply <name>",
		Short: "Write a saved preset to the device",
		Run:   presetApplyCmd,
	})

	psCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Run:   presetListCmd,
	})

	psCmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved preset",
		Run:   presetDeleteCmd,
	})

	return psCmd
}
