package model

type ErrorResponse struct {
	Error string `json:"detail"`
}

type OkResponse struct {
	Ok bool `json:"ok"`
}
