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
	"time"

	"github.com/spf13/cobra"
	"mynewt.apache.org/newt/util"

	"librepods.dev/hamgr/haxact/hasettings"
	"librepods.dev/hamgr/haxact/sesn"
	"librepods.dev/hamgr/haxact/xact"
)

func watchPrinter(w io.Writer) xact.SettingsFn {
	return func(st hasettings.Settings, err error) {
		ts := time.Now().Format("15:04:05.000")
		if err != nil {
			fmt.Fprintf(w, "%s undecodable update: %s\n", ts, err.Error())
			return
		}
		fmt.Fprintf(w, "%s %s\n", ts, st.String())
	}
}

func watchRunCmd(cmd *cobra.Command, args []string) {
	s, err := GetSesn()
	if err != nil {
		haUsage(nil, err)
	}

	// Subscribe before the first read so that no change is missed.
	w := xact.NewSettingsWatcher(s, watchPrinter(os.Stdout))
	if err := w.Start(); err != nil {
		haUsage(nil, util.ChildNewtError(err))
	}
	defer w.Stop()

	if err := showSettings(os.Stdout, s, false); err != nil {
		haUsage(nil, err)
	}
	fmt.Printf("Watching for changes; Ctrl-C to stop\n")

	if err := waitClosed(s); err != nil {
		haUsage(nil, util.ChildNewtError(err))
	}
}

// Blocks until the session disconnects.  Returns the reason if the session
// gave up rather than being closed.
func waitClosed(s sesn.Sesn) error {
	v := <-s.CloseChan()
	if err, ok := v.(error); ok && err != nil {
		return err
	}
	return nil
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print hearing aid settings each time the device reports a change",
		Run:   watchRunCmd,
	}
}
