// Package dto defines request and response shapes for HTTP API v1.
package dto

// IDResponse returns the identifier of a created resource.
type IDResponse struct {
	ID string `json:"id"`
}

// CountResponse reports how many rows an operation touched.
type CountResponse struct {
	Count int `json:"count"`
}
