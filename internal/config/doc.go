// Package config loads tenpair settings.
//
// Process settings come from TENPAIR_* environment variables. A game
// file is a CUE document unified with the embedded #Game schema:
//
//	name:    "warmup"
//	width:   3
//	tick_ms: 50
//	layout:  [1, 9, 5, 5]
//
// Width, tick and layout are optional and default to 9, 100ms and the
// classic opening. Unknown fields are rejected.
package config
