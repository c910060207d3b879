// Package model declares the Tour and User records: their stored shape,
// field rules, messages, defaults, setters and derived values.
//
// Each record kind exposes a Schema for new documents and one for partial
// patches. Schemas run inside the service layer, before anything is written.
package model
