package report

// Schema is the JSON Schema (Draft 2020-12) for the paranoid verify
// JSON output. It documents the structure returned by WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/paranoid/verify-report.schema.json",
  "title": "Paranoid Verify Report",
  "description": "Output schema for paranoid verify --format=json",
  "type": "object",
  "required": ["version", "results", "summary", "metadata"],
  "properties": {
    "version": {
      "type": "string",
      "description": "Schema version (semver)"
    },
    "results": {
      "type": "array",
      "items": { "$ref": "#/$defs/FunctionResult" }
    },
    "summary": { "$ref": "#/$defs/Summary" },
    "metadata": { "$ref": "#/$defs/Metadata" }
  },
  "$defs": {
    "FunctionResult": {
      "type": "object",
      "required": ["id", "target", "verdict", "cases", "executed", "skipped", "timed_out", "duration_ms"],
      "properties": {
        "id": {
          "type": "string",
          "description": "Stable identifier (fn-XXXXXXXX)",
          "pattern": "^fn-[0-9a-f]{8}$"
        },
        "target": { "$ref": "#/$defs/FunctionTarget" },
        "verdict": {
          "type": "string",
          "enum": ["passed", "untested", "failed"]
        },
        "cases": {
          "type": "integer",
          "minimum": 0,
          "description": "Generated argument combinations"
        },
        "executed": {
          "type": "integer",
          "minimum": 0,
          "description": "Combinations that ran to completion"
        },
        "skipped": {
          "type": "integer",
          "minimum": 0,
          "description": "Combinations rejected by a precondition"
        },
        "timed_out": {
          "type": "integer",
          "minimum": 0,
          "description": "Combinations aborted by max_runtime"
        },
        "failure": { "$ref": "#/$defs/Failure" },
        "complexity": {
          "type": "integer",
          "minimum": 0,
          "description": "Cyclomatic complexity, when known"
        },
        "warnings": {
          "type": "array",
          "items": { "type": "string" }
        },
        "duration_ms": { "type": "integer" }
      }
    },
    "FunctionTarget": {
      "type": "object",
      "required": ["function"],
      "properties": {
        "package": {
          "type": "string",
          "description": "Full import path"
        },
        "function": {
          "type": "string",
          "description": "Contract name (e.g., 'geom.Distance')"
        },
        "location": {
          "type": "string",
          "description": "Source position (file:line)"
        }
      }
    },
    "Failure": {
      "type": "object",
      "required": ["kind", "message"],
      "properties": {
        "kind": {
          "type": "string",
          "enum": [
            "ArgumentTypeError", "EntryConditionsError",
            "ReturnTypeError", "ExitConditionsError",
            "ObjectModifiedError", "InternalError",
            "Panic", "Error"
          ]
        },
        "message": { "type": "string" },
        "args": {
          "type": "object",
          "additionalProperties": { "type": "string" }
        }
      }
    },
    "Summary": {
      "type": "object",
      "required": ["functions", "passed", "untested", "failed", "executed", "untested_names"],
      "properties": {
        "functions": { "type": "integer", "minimum": 0 },
        "passed": { "type": "integer", "minimum": 0 },
        "untested": { "type": "integer", "minimum": 0 },
        "failed": { "type": "integer", "minimum": 0 },
        "executed": { "type": "integer", "minimum": 0 },
        "untested_names": {
          "type": "array",
          "items": { "type": "string" }
        }
      }
    },
    "Metadata": {
      "type": "object",
      "required": ["run_id", "paranoid_version", "go_version", "duration_ms"],
      "properties": {
        "run_id": { "type": "string" },
        "paranoid_version": { "type": "string" },
        "go_version": { "type": "string" },
        "target": { "type": "string" },
        "timestamp": { "type": "string", "format": "date-time" },
        "duration_ms": {
          "type": "integer",
          "description": "Verification duration in milliseconds"
        },
        "warnings": {
          "oneOf": [
            { "type": "array", "items": { "type": "string" } },
            { "type": "null" }
          ],
          "description": "Run warnings, if any"
        }
      }
    }
  }
}`
