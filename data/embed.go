// Package data bundles the built-in ingredient and category tables
package data

import _ "embed"

// Ingredients is the built-in ingredient table
//
//go:embed ingredients.json
var Ingredients []byte

// Categories is the built-in category table
//
//go:embed categories.json
var Categories []byte
