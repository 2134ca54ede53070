/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"scenedraw/internal/config"
	"scenedraw/internal/eventlog"
	"scenedraw/internal/template"
)

// Options carries the wiring the editor shell needs. The CLI owns the
// event-log backend and the template store; the UI only consumes them.
type Options struct {
	Config    config.AppConfig
	Events    eventlog.Logger
	Templates *template.Store
}
