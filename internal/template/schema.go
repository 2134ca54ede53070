/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package template

import (
	"fmt"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// templateSchema is the JSON Schema every template file must satisfy before
// its records are decoded. Geometry details are left to the codec; the
// schema pins the envelope and the per-item required attributes.
const templateSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["meta", "items"],
  "properties": {
    "meta": {
      "type": "object",
      "required": ["category", "item_id"],
      "properties": {
        "category": {"type": "string", "minLength": 1},
        "item_id": {"type": "string", "minLength": 1}
      }
    },
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "pos", "stroke", "strokeWidth", "fill", "z"],
        "properties": {
          "type": {"type": "string"},
          "pos": {"type": "array", "minItems": 2, "maxItems": 2, "items": {"type": "number"}},
          "stroke": {"type": "string", "pattern": "^#[0-9a-fA-F]{6}$"},
          "strokeWidth": {"type": "number", "minimum": 0},
          "fill": {"type": "string"},
          "z": {"type": "number"},
          "tag": {"type": "string"}
        }
      }
    }
  }
}`

// Validate checks raw template bytes against the embedded schema.
func Validate(data []byte) error { return validate(data) }

// validate checks raw template bytes against the embedded schema.
func validate(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(templateSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("schema violation: %s", errs[0])
		}
		return fmt.Errorf("schema violation")
	}
	return nil
}
