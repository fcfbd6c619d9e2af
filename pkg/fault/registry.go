// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fault

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// builder decodes a rule's YAML parameters and constructs the rule.
type builder func(params *yaml.Node) (Rule, error)

// registry maps rule ids to builders. Construction goes through the typed
// constructors, so registry-built rules get the same validation as rules
// built in code.
var registry = map[string]builder{
	"fc1":  buildWith(NewFaultConditionOne),
	"fc2":  buildWith(NewFaultConditionTwo),
	"fc3":  buildWith(NewFaultConditionThree),
	"fc4":  buildWith(NewFaultConditionFour),
	"fc5":  buildWith(NewFaultConditionFive),
	"fc6":  buildWith(NewFaultConditionSix),
	"fc7":  buildWith(NewFaultConditionSeven),
	"fc8":  buildWith(NewFaultConditionEight),
	"fc9":  buildWith(NewFaultConditionNine),
	"fc10": buildWith(NewFaultConditionTen),
	"fc11": buildWith(NewFaultConditionEleven),
	"fc12": buildWith(NewFaultConditionTwelve),
	"fc13": buildWith(NewFaultConditionThirteen),
}

// buildWith adapts a typed constructor into a builder.
func buildWith[C any](construct func(C) (Rule, error)) builder {
	return func(params *yaml.Node) (Rule, error) {
		var cfg C
		if params != nil {
			if err := params.Decode(&cfg); err != nil {
				return nil, fmt.Errorf("decode params: %w", err)
			}
		}
		return construct(cfg)
	}
}

// New constructs the rule with the given id from its YAML parameters. A nil
// params node builds from the zero configuration, which fails validation for
// every catalog rule since column names are required.
func New(id string, params *yaml.Node) (Rule, error) {
	b, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, id)
	}
	return b(params)
}

// IDs returns the registered rule ids in catalog order, fc1 through fc13.
func IDs() []string {
	out := make([]string, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return ruleNumber(out[i]) < ruleNumber(out[j])
	})
	return out
}

func ruleNumber(id string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(id, "fc"))
	return n
}
