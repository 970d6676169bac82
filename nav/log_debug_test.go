//go:build navlog

// nav/log_debug_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import "testing"

func TestNavLogCategories(t *testing.T) {
	defer InitNavLog(false, "", "")

	InitNavLog(true, "index, path", "AAL123")
	for _, cat := range navLogCategories {
		expected := cat == NavLogIndex || cat == NavLogPath
		if NavLogEnabled(cat) != expected {
			t.Errorf("%s: expected enabled %v", cat, expected)
		}
	}

	InitNavLog(true, "all", "")
	for _, cat := range navLogCategories {
		if !NavLogEnabled(cat) {
			t.Errorf("%s: expected all categories enabled", cat)
		}
	}

	InitNavLog(false, "all", "")
	if NavLogEnabled(NavLogIndex) {
		t.Errorf("expected nav log to be disabled")
	}
}
