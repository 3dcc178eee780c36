package dto

// Res is the error body of the JSON API
type Res struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}
