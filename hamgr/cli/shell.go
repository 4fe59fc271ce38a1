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
	"github.com/spf13/cobra"
	"gopkg.in/abiosoft/ishell.v2"
	"mynewt.apache.org/newt/util"

	"librepods.dev/hamgr/hamgr/hautil"
	"librepods.dev/hamgr/haxact/preset"
	"librepods.dev/hamgr/haxact/sesn"
	"librepods.dev/hamgr/haxact/xact"
)

// Routes command output through the shell so that it does not corrupt the
// prompt line.
type shellWriter struct {
	a ishell.Actions
}

func (w shellWriter) Write(p []byte) (int, error) {
	w.a.Print(string(p))
	return len(p), nil
}

type hamgrShell struct {
	sh      *ishell.Shell
	s       sesn.Sesn
	store   *preset.Store
	watcher *xact.SettingsWatcher
}

func (hs *hamgrShell) report(c *ishell.Context, err error) {
	if err == nil {
		return
	}

	if ne, ok := err.(*util.NewtError); ok {
		c.Println("Error:", ne.Text)
	} else {
		c.Println("Error:", err.Error())
	}
}

func (hs *hamgrShell) showCmd(c *ishell.Context) {
	asJson := len(c.Args) > 0 && c.Args[0] == "json"
	hs.report(c, showSettings(shellWriter{c}, hs.s, asJson))
}

func (hs *hamgrShell) setCmd(c *ishell.Context) {
	hs.report(c, adjustSettings(shellWriter{c}, hs.s, c.Args, false))
}

func (hs *hamgrShell) resetCmd(c *ishell.Context) {
	hs.report(c, resetSettings(shellWriter{c}, hs.s))
}

func (hs *hamgrShell) transparencyCmd(c *ishell.Context) {
	if len(c.Args) == 0 {
		hs.report(c, showTransparency(shellWriter{c}, hs.s, false))
		return
	}

	on, err := parseOnOff("transparency", c.Args[0])
	if err != nil {
		hs.report(c, err)
		return
	}
	hs.report(c, setTransparency(shellWriter{c}, hs.s, on))
}

func (hs *hamgrShell) lsrCmd(c *ishell.Context) {
	val := ""
	if len(c.Args) > 0 {
		val = c.Args[0]
	}
	hs.report(c, loudSoundReduction(shellWriter{c}, hs.s, val))
}

func (hs *hamgrShell) watchCmd(c *ishell.Context) {
	on := true
	if len(c.Args) > 0 {
		var err error
		on, err = parseOnOff("watch", c.Args[0])
		if err != nil {
			hs.report(c, err)
			return
		}
	}

	if on {
		hs.watcher.Start()
		c.Println("Watching hearing aid settings")
	} else {
		hs.watcher.Stop()
		c.Println("Stopped watching")
	}
}

func (hs *hamgrShell) presetCmd(c *ishell.Context) {
	w := shellWriter{c}

	if len(c.Args) == 0 || c.Args[0] == "list" {
		hs.report(c, listPresets(w, hs.store))
		return
	}

	if len(c.Args) != 2 {
		c.Println("usage: preset [list] | save|apply|delete <name>")
		return
	}

	name := c.Args[1]
	switch c.Args[0] {
	case "save":
		hs.report(c, savePreset(w, hs.store, hs.s, name))
	case "apply":
		hs.report(c, applyPreset(w, hs.store, hs.s, name))
	case "delete":
		if err := hs.store.Delete(name); err != nil {
			hs.report(c, err)
		} else {
			c.Printf("Preset %s deleted\n", name)
		}
	default:
		c.Println("Unknown preset operation:", c.Args[0])
	}
}

func (hs *hamgrShell) statusCmd(c *ishell.Context) {
	c.Printf("%s: %s\n", hs.s.PeerSpec().Ble.String(), hs.s.State().String())
}

// Reports a lost connection while the shell is idle at its prompt.
func (hs *hamgrShell) monitor() {
	if err := waitClosed(hs.s); err != nil {
		hs.sh.Println()
		hs.sh.Println("Connection lost:", err.Error())
	}
}

func startShell(cmd *cobra.Command, args []string) {
	st, err := presetStore()
	if err != nil {
		haUsage(nil, err)
	}

	s, err := GetSesn()
	if err != nil {
		haUsage(nil, err)
	}

	sh := ishell.New()
	sh.SetPrompt("hamgr> ")

	hs := &hamgrShell{
		sh:    sh,
		s:     s,
		store: st,
	}
	hs.watcher = xact.NewSettingsWatcher(s, watchPrinter(shellWriter{sh}))

	sh.Println()
	sh.Println(" " + hautil.ToolInfo.LongName + " shell")
	sh.Println("	Connection profile: ", hautil.ConnProfile)
	sh.Println()

	cmds := []*ishell.Cmd{
		{Name: "show", Func: hs.showCmd,
			Help: "Display hearing aid settings: show [json]"},
		{Name: "set", Func: hs.setCmd,
			Help: "Change hearing aid settings: set key=value..."},
		{Name: "reset", Func: hs.resetCmd,
			Help: "Restore default control positions"},
		{Name: "transparency", Func: hs.transparencyCmd,
			Help: "Display or set transparency: transparency [on|off]"},
		{Name: "lsr", Func: hs.lsrCmd,
			Help: "Display or set loud sound reduction: lsr [on|off]"},
		{Name: "watch", Func: hs.watchCmd,
			Help: "Print settings changes as they happen: watch [on|off]"},
		{Name: "preset", Func: hs.presetCmd,
			Help: "Manage presets: preset [list] | save|apply|delete <name>"},
		{Name: "status", Func: hs.statusCmd,
			Help: "Display connection state"},
	}
	for _, c := range cmds {
		sh.AddCmd(c)
	}

	go hs.monitor()

	sh.Run()
	hs.watcher.Stop()
	sh.Close()
}

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run " + hautil.ToolInfo.ShortName + " interactively over one connection",
		Run:   startShell,
	}
}
