// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package timeseries

import "time"

// Hours maps a non-decreasing time index onto contiguous wall-clock hour
// buckets. It returns the hour starts from the first observation's hour
// through the last observation's hour inclusive (hours with no observations
// are still present), and for each row the position of its hour within
// starts.
//
// An empty index yields (nil, nil).
func Hours(index []time.Time) (starts []time.Time, rowHour []int) {
	if len(index) == 0 {
		return nil, nil
	}
	first := index[0].Truncate(time.Hour)
	last := index[len(index)-1].Truncate(time.Hour)

	n := int(last.Sub(first)/time.Hour) + 1
	starts = make([]time.Time, n)
	for i := range starts {
		starts[i] = first.Add(time.Duration(i) * time.Hour)
	}

	rowHour = make([]int, len(index))
	for i, ts := range index {
		rowHour[i] = int(ts.Truncate(time.Hour).Sub(first) / time.Hour)
	}
	return starts, rowHour
}
