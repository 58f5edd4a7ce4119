package config

// documentSchema is the JSON Schema every game document must satisfy
// before it is decoded.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "hostile_multiplier": {"type": "integer", "minimum": 0},
    "victory_music": {"type": "string"},
    "failure_music": {"type": "string"},
    "fleeing_message": {"type": "string"},
    "zones": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["zone", "waves"],
        "additionalProperties": false,
        "properties": {
          "zone": {"type": "string", "minLength": 1},
          "position": {"$ref": "#/definitions/vector"},
          "waves": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "additionalProperties": false,
              "properties": {
                "hostiles": {"$ref": "#/definitions/names"},
                "variable_hostiles": {"$ref": "#/definitions/names"},
                "structures": {"$ref": "#/definitions/names"},
                "reward": {"type": "integer", "minimum": 0},
                "start_voice_line": {"$ref": "#/definitions/voice_line"},
                "end_voice_line": {"$ref": "#/definitions/voice_line"}
              }
            }
          }
        }
      }
    },
    "characters": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["voice"],
        "additionalProperties": false,
        "properties": {
          "voice": {"type": "string", "minLength": 1},
          "infocard": {"type": "integer", "minimum": 0},
          "costume": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "head": {"type": "string"},
              "body": {"type": "string"},
              "left_hand": {"type": "string"},
              "right_hand": {"type": "string"},
              "accessories": {"type": "array", "maxItems": 8, "items": {"type": "string"}}
            }
          }
        }
      }
    },
    "bounty": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "ships": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["ship_name", "bounty"],
            "additionalProperties": false,
            "properties": {
              "ship_name": {"type": "string", "minLength": 1},
              "bounty": {"type": "integer", "minimum": 0}
            }
          }
        }
      }
    },
    "animation": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "test_structure": {"type": "string"}
      }
    }
  },
  "definitions": {
    "names": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "vector": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "x": {"type": "number"},
        "y": {"type": "number"},
        "z": {"type": "number"}
      }
    },
    "voice_line": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "line": {"type": "string"},
        "character": {"type": "string"}
      }
    }
  }
}`
