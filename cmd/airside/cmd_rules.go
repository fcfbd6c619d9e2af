// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AirsideFDD/pkg/fault"
	"github.com/AleutianAI/AirsideFDD/pkg/ux"
)

// ruleDescriptions gives each catalog rule its one-line, Guideline 36
// flavored summary for the listing.
var ruleDescriptions = map[string]string{
	"fc1":  "Duct static pressure too low with the supply fan at full speed",
	"fc2":  "Mix temperature too low; should sit between outside and return",
	"fc3":  "Mix temperature too high; should sit between outside and return",
	"fc4":  "Hunting: excessive operating state changes per hour",
	"fc5":  "Supply temperature too low against mix plus fan heat (heating mode)",
	"fc6":  "Outside air fraction off the design minimum (heating or mech cooling)",
	"fc7":  "Supply temperature below setpoint with the heating valve wide open",
	"fc8":  "Supply and mix temperature diverge in economizer mode",
	"fc9":  "Outside air too warm for free cooling without mechanical help",
	"fc10": "Outside and mix temperature diverge at 100% outside air",
	"fc11": "Outside air too cold for 100% outside air cooling",
	"fc12": "Supply warmer than mix in economizer plus mechanical cooling",
	"fc13": "Supply temperature above setpoint with the cooling valve wide open",
}

func runListRules(cmd *cobra.Command, _ []string) {
	ids := fault.IDs()
	ux.Title(fmt.Sprintf("Fault rule catalog (%d rules)", len(ids)))
	for _, id := range ids {
		desc, ok := ruleDescriptions[id]
		if !ok {
			desc = "(no description)"
		}
		ux.RuleStatus(id, ux.IconBullet, desc)
	}
}
