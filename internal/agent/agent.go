// Package agent holds the LLM-backed agents: interest detection on
// inbound chat messages, knowledge-base question answering, and QA pair
// review.
package agent

import (
	"github.com/veaiops/veaiops/pkg/utils/json"
)

// toRawData converts a typed payload into the generic raw-data map
// events carry.
func toRawData(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	raw := map[string]interface{}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string]interface{}{}
	}
	return raw
}
