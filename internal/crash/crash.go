/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a report file plus a recovery snapshot of
// the scene, instead of a bare stack trace.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "scenedraw/internal/log"
	"scenedraw/internal/scene"
	"scenedraw/internal/version"
)

// exitFn is swapped in tests so Recover does not terminate the test process.
var exitFn = os.Exit

// Recover captures a panic, logs it with the stack, writes a report file,
// and autosaves the scene's items so the session can be pasted back after a
// restart. A nil scene skips the autosave.
//
// Usage: defer func() { crash.Recover(s) }()
func Recover(s *scene.Scene) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(r, stack)
	if err != nil {
		l.Error("crash report write failed", slog.Any("err", err))
	}
	if s != nil {
		if path, err := autosaveScene(s); err != nil {
			l.Error("scene autosave failed", slog.Any("err", err))
		} else {
			l.Info("scene autosave written", slog.String("path", path))
		}
	}

	fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// reportDir is where crash artifacts land.
func reportDir() string {
	dir := filepath.Join(os.TempDir(), "scenedraw-crash")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

func writeReport(panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "SceneDraw Crash Report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}

// autosaveScene dumps the live items in the clipboard payload format, which
// Paste can restore wholesale.
func autosaveScene(s *scene.Scene) (string, error) {
	text, err := scene.EncodeClipboard(s.Items())
	if err != nil {
		return "", err
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(), fmt.Sprintf("recovery-%s.json", stamp))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return path, err
	}
	return path, nil
}
