package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"gridbound.ai/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	estimateSchema := compile("estimate.schema.json")
	reportSchema := compile("report.schema.json")
	errorSchema := compile("error.schema.json")

	var estimate any
	_ = json.Unmarshal([]byte(`{
	  "type":"ESTIMATE",
	  "protocol_version":"1.0",
	  "run_tag":"sweep-3",
	  "config":{
	    "game":{"max_steps":1000},
	    "agent":{"max_inventory":10,"rewards":{"ore":0,"battery":0,"heart":1}},
	    "objects":{
	      "mine":{"cooldown":2,"max_output":5},
	      "generator":{"cooldown":1,"max_output":5,"input_ore":1},
	      "altar":{"cooldown":1,"max_output":1,"input_battery":2}
	    }
	  },
	  "map":[["wall","wall"],["mine","altar"]]
	}`), &estimate)
	validate(estimateSchema, estimate)

	var report any
	_ = json.Unmarshal([]byte(`{
	  "type":"REPORT",
	  "protocol_version":"1.0",
	  "run_id":"8e5f0a52-46a5-4e2e-9a09-2b2f6f9d5e01",
	  "run_tag":"sweep-3",
	  "total":10.0,
	  "report":{
	    "total":10.0,
	    "max_timesteps":1000,
	    "inventory_limit":10,
	    "mode":"uncolored",
	    "warnings":["agent.rewards.ore missing; falling back to agent.rewards.ore.red"],
	    "regions":[{
	      "index":0,"width":3,"height":3,
	      "mines":1,"generators":1,"altars":1,"agents":1,
	      "single_agent_bound":10.0,"flow_rate_bound":166.67,"bound":10.0,
	      "per_agent_bound":10.0
	    }]
	  }
	}`), &report)
	validate(reportSchema, report)

	var errMsg any
	_ = json.Unmarshal([]byte(`{
	  "type":"ERROR",
	  "protocol_version":"1.0",
	  "code":"E_BAD_MAP",
	  "message":"map: ragged row 1: len=1 want=2"
	}`), &errMsg)
	validate(errorSchema, errMsg)
}

func TestErrorCodes_SchemaAgreesWithKnownCodes(t *testing.T) {
	for _, code := range []string{
		protocol.ErrProtoBadRequest,
		protocol.ErrBadConfig,
		protocol.ErrBadMap,
		protocol.ErrInternal,
	} {
		if !protocol.IsKnownCode(code) {
			t.Fatalf("code %s not known", code)
		}
	}
	if protocol.IsKnownCode("E_NOPE") {
		t.Fatalf("unknown code accepted")
	}
}
