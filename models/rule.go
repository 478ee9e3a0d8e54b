package models

// Rule is an advisory per-category spending limit. Nothing in this app
// enforces it against expenses; it is only listed and created.
type Rule struct {
	ID       int     `json:"id"`
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
}

type NewRule struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
}
